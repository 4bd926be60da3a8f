// internal/session/session.go

// Package session implements the per-connection protocol state machine: the
// unauthenticated menu, the registration and login subflows, and the
// authenticated menu with its friend, post and message actions. A session is
// transport-agnostic; it speaks the line protocol over any io.ReadWriter.
package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Riad-Zz/chipichipi/internal/directory"
	"github.com/Riad-Zz/chipichipi/internal/models"
)

// Store is the slice of the record store sessions use directly: the post log
// and the per-pair message logs. Directory mutations go through the
// directory, never here.
type Store interface {
	AppendPost(author, body string) (string, error)
	ReadAllPosts() ([]models.PostRecord, error)
	AppendMessage(msg models.MessageRecord) error
	ReadConversation(viewer, other string) ([]string, error)
}

// Session drives one client connection from the welcome banner to
// disconnect. It owns the connection's read/write loop; all shared state
// lives behind the directory, store and registry it is handed.
type Session struct {
	ID uuid.UUID

	dir      *directory.Directory
	store    Store
	registry *Registry
	log      *logrus.Entry

	in  *bufio.Scanner
	out io.Writer

	username string // empty until login succeeds
}

// New builds a session over rw. remote is used only for log context.
func New(rw io.ReadWriter, dir *directory.Directory, store Store, registry *Registry, logger *logrus.Logger, remote string) *Session {
	id := uuid.New()
	return &Session{
		ID:       id,
		dir:      dir,
		store:    store,
		registry: registry,
		log: logger.WithFields(logrus.Fields{
			"session": id,
			"remote":  remote,
		}),
		in:  bufio.NewScanner(rw),
		out: rw,
	}
}

// Run executes the session until the client exits or the connection drops.
// The registry entry, if any, is removed on the way out.
func (s *Session) Run() {
	defer s.teardown()
	s.println("Welcome to ChipiChipi!")
	s.mainMenu()
}

func (s *Session) teardown() {
	if s.username != "" {
		s.registry.Remove(s.username, s.ID)
		s.log.Info("session ended while authenticated; registry entry removed")
		s.username = ""
	}
}

// mainMenu is the unauthenticated loop. Only "1", "2" and "3" advance;
// anything else re-prompts.
func (s *Session) mainMenu() {
	for {
		s.println("1. Register\n2. Login\n3. Exit\nChoose option (1-3):")
		choice, ok := s.readLine()
		if !ok {
			return
		}
		switch choice {
		case "1":
			if !s.register() {
				return
			}
		case "2":
			if !s.login() {
				return
			}
		case "3":
			s.println("Goodbye!")
			return
		default:
			s.println("Invalid option.")
		}
	}
}

// register walks the five fixed prompts. Validation failures abort the
// subflow with a message but keep the session alive; a malformed age is an
// input error, not a session-fatal one. Returns false only on disconnect.
func (s *Session) register() bool {
	s.println("Enter username:")
	username, ok := s.readLine()
	if !ok {
		return false
	}
	if username == "" || strings.ContainsAny(username, ";,") {
		// ';' and ',' are the snapshot field and CSV separators.
		s.println("Invalid username.")
		return true
	}
	if s.dir.Exists(username) {
		s.println("Username already exists.")
		return true
	}

	s.println("Enter password:")
	password, ok := s.readLine()
	if !ok {
		return false
	}
	s.println("Enter age:")
	ageLine, ok := s.readLine()
	if !ok {
		return false
	}
	age, err := strconv.Atoi(strings.TrimSpace(ageLine))
	if err != nil {
		s.println("Invalid age.")
		return true
	}
	s.println("Enter gender:")
	gender, ok := s.readLine()
	if !ok {
		return false
	}
	s.println("Enter country:")
	country, ok := s.readLine()
	if !ok {
		return false
	}

	if strings.Contains(password, ";") || strings.Contains(gender, ";") || strings.Contains(country, ";") {
		s.println("Invalid input.")
		return true
	}

	if _, err := s.dir.Register(username, password, age, gender, country); err != nil {
		// Lost a race with a concurrent registration of the same name.
		s.println("Username already exists.")
		return true
	}
	s.log.WithField("user", username).Info("user registered")
	s.println("Registration successful!")
	return true
}

// login authenticates and, on success, runs the authenticated menu until
// logout or disconnect. Returns false on disconnect.
func (s *Session) login() bool {
	s.println("Enter username:")
	username, ok := s.readLine()
	if !ok {
		return false
	}
	s.println("Enter password:")
	password, ok := s.readLine()
	if !ok {
		return false
	}

	if _, err := s.dir.Authenticate(username, password); err != nil {
		s.println("Invalid username or password.")
		return true
	}

	s.username = username
	s.registry.Add(username, s.ID)
	s.log = s.log.WithField("user", username)
	s.log.Info("login")
	s.printf("Login successful. Welcome, %s!", username)
	return s.userMenu()
}

// userMenu is the authenticated loop. Returns false on disconnect, true
// after an explicit logout.
func (s *Session) userMenu() bool {
	for {
		s.println("\n1. Send Friend Request\n2. Manage Requests\n3. View Friends\n4. Post\n5. View Posts\n6. Send Message\n7. View Messages\n8. Logout\nChoose option:")
		opt, ok := s.readLine()
		if !ok {
			return false
		}
		switch opt {
		case "1":
			if !s.sendFriendRequest() {
				return false
			}
		case "2":
			if !s.manageRequests() {
				return false
			}
		case "3":
			s.showFriends()
		case "4":
			if !s.post() {
				return false
			}
		case "5":
			s.viewPosts()
		case "6":
			if !s.sendMessage() {
				return false
			}
		case "7":
			if !s.viewMessages() {
				return false
			}
		case "8":
			s.logout()
			return true
		default:
			s.println("Invalid.")
		}
	}
}

func (s *Session) logout() {
	s.registry.Remove(s.username, s.ID)
	s.log.Info("logout")
	s.username = ""
}

func (s *Session) sendFriendRequest() bool {
	s.println("Username to request:")
	target, ok := s.readLine()
	if !ok {
		return false
	}

	err := s.dir.SendFriendRequest(s.username, target)
	switch {
	case errors.Is(err, directory.ErrNoSuchUser):
		s.println("User not found.")
	case errors.Is(err, directory.ErrSelfRequest):
		s.println("Cannot friend yourself.")
	case errors.Is(err, directory.ErrAlreadyFriends):
		s.println("Already friends.")
	case errors.Is(err, directory.ErrAlreadyRequested):
		s.println("Request already sent.")
	case err != nil:
		s.log.WithError(err).Error("friend request failed")
		s.println("Invalid.")
	default:
		s.println("Request sent.")
	}
	return true
}

// manageRequests walks a snapshot of the pending set one entry at a time.
// Anything other than A or R leaves the entry pending with no persisted
// change. One final flush happens after the batch, even an empty one.
func (s *Session) manageRequests() bool {
	for _, requester := range s.dir.ListRequests(s.username) {
		s.printf("Request from: %s (A)ccept / (R)eject?", requester)
		res, ok := s.readLine()
		if !ok {
			return false
		}
		switch strings.ToUpper(strings.TrimSpace(res)) {
		case "A":
			if err := s.dir.RespondToRequest(s.username, requester, true); err == nil {
				s.println("Accepted.")
			}
		case "R":
			if err := s.dir.RespondToRequest(s.username, requester, false); err == nil {
				s.println("Rejected.")
			}
		}
	}
	s.dir.Flush()
	return true
}

func (s *Session) showFriends() {
	friends := s.dir.ListFriends(s.username)
	if len(friends) == 0 {
		s.println("No friends.")
		return
	}
	s.println("Your friends:")
	for _, f := range friends {
		s.printf("- %s", f)
	}
}

func (s *Session) post() bool {
	s.println("Enter post:")
	body, ok := s.readLine()
	if !ok {
		return false
	}
	if _, err := s.store.AppendPost(s.username, body); err != nil {
		// Best-effort durability: the client still sees success.
		s.log.WithError(err).Error("failed to persist post")
	}
	s.println("Posted.")
	return true
}

func (s *Session) viewPosts() {
	posts, err := s.store.ReadAllPosts()
	if err != nil {
		s.log.WithError(err).Error("failed to read post log")
		s.println("Error reading posts.")
		return
	}
	if posts == nil {
		s.println("No posts found.")
		return
	}
	if len(posts) == 0 {
		s.println("No posts available.")
		return
	}
	s.println("All Posts:")
	for _, p := range posts {
		s.printf("[%s] -> %s (%s)", p.Author, p.Body, p.Timestamp)
	}
}

func (s *Session) sendMessage() bool {
	s.println("Send message to:")
	target, ok := s.readLine()
	if !ok {
		return false
	}
	if !s.dir.IsFriend(s.username, target) {
		s.println("Not your friend.")
		return true
	}
	s.println("Enter message:")
	body, ok := s.readLine()
	if !ok {
		return false
	}
	msg := models.MessageRecord{Sender: s.username, Recipient: target, Body: body}
	if err := s.store.AppendMessage(msg); err != nil {
		s.log.WithError(err).Error("failed to persist message")
	}
	s.println("Sent.")
	return true
}

// viewMessages shows the conversation with any user, friend or not, in
// fixed file order: own sent log first, then the other side's.
func (s *Session) viewMessages() bool {
	s.println("With whom:")
	target, ok := s.readLine()
	if !ok {
		return false
	}
	lines, err := s.store.ReadConversation(s.username, target)
	if err != nil {
		s.log.WithError(err).Error("failed to read conversation")
		s.println("No messages.")
		return true
	}
	if len(lines) == 0 {
		s.println("No messages.")
		return true
	}
	for _, l := range lines {
		s.println(l)
	}
	return true
}

// readLine blocks for the next client line. The second return is false once
// the stream is closed; the trailing \r from telnet-style clients is
// stripped.
func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			s.log.WithError(err).Debug("read failed")
		}
		return "", false
	}
	return strings.TrimSuffix(s.in.Text(), "\r"), true
}

// Write errors are ignored here like everywhere in the protocol: a dead
// client surfaces as a read failure on the next prompt.
func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+"\n", args...)
}
