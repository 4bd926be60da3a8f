// internal/store/store.go

// Package store is the durable-storage boundary of the server. It translates
// the in-memory user directory, the public post log and the per-pair message
// logs to and from flat files under a single data directory.
//
// Persistence is deliberately simple: the user snapshot is rewritten in full
// on every save (serialized by a mutex), posts and messages are append-only.
// File handles are opened and closed per operation; nothing is kept open.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Riad-Zz/chipichipi/internal/models"
)

const (
	userFile = "users.txt"
	postFile = "posts.txt"

	// defaultAge is substituted when a snapshot line carries an unparseable age.
	defaultAge = 18

	// fieldSentinel fills gender/country when a snapshot line is missing them.
	fieldSentinel = "N/A"
)

// FileStore reads and writes the flat-file record formats. Safe for use from
// many sessions at once: snapshot rewrites are serialized by mu, appends rely
// on O_APPEND.
type FileStore struct {
	dir string

	mu sync.Mutex // single-writer discipline for the user snapshot
}

// New returns a FileStore rooted at dir. The directory must already exist.
func New(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) userPath() string {
	return filepath.Join(s.dir, userFile)
}

func (s *FileStore) postPath() string {
	return filepath.Join(s.dir, postFile)
}

// messagePath names the append log holding messages sent by sender to
// recipient. Each direction of a conversation has its own file.
func (s *FileStore) messagePath(sender, recipient string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_msg.txt", sender, recipient))
}

// LoadDirectory parses the user snapshot. A missing file yields an empty
// directory. Lines with fewer than three fields are skipped; an unparseable
// age defaults to 18; missing gender/country default to "N/A". The returned
// slice preserves file order.
func (s *FileStore) LoadDirectory() ([]*models.UserRecord, error) {
	f, err := os.Open(s.userPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open user snapshot: %w", err)
	}
	defer f.Close()

	var records []*models.UserRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ";")
		if len(parts) < 3 {
			continue
		}

		u := &models.UserRecord{
			Username: parts[0],
			Password: parts[1],
			Gender:   fieldSentinel,
			Country:  fieldSentinel,
		}
		age, err := strconv.Atoi(parts[2])
		if err != nil {
			age = defaultAge
		}
		u.Age = age
		if len(parts) > 3 {
			u.Gender = parts[3]
		}
		if len(parts) > 4 {
			u.Country = parts[4]
		}
		if len(parts) > 5 && parts[5] != "" {
			u.Friends = strings.Split(parts[5], ",")
		}
		if len(parts) > 6 && parts[6] != "" {
			u.Requests = strings.Split(parts[6], ",")
		}
		records = append(records, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read user snapshot: %w", err)
	}
	return records, nil
}

// SaveDirectory rewrites the full user snapshot. Saves are serialized so
// concurrent callers can never interleave partial writes; the caller decides
// the record order and should keep it stable across saves.
func (s *FileStore) SaveDirectory(records []*models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, u := range records {
		fmt.Fprintf(&b, "%s;%s;%d;%s;%s;%s;%s\n",
			u.Username, u.Password, u.Age, u.Gender, u.Country,
			strings.Join(u.Friends, ","), strings.Join(u.Requests, ","))
	}
	if err := os.WriteFile(s.userPath(), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write user snapshot: %w", err)
	}
	return nil
}

// AppendPost appends one line to the post log and returns the wall-clock
// timestamp recorded for it.
func (s *FileStore) AppendPost(author, body string) (string, error) {
	ts := time.Now().Format(time.UnixDate)
	line := author + ";" + ts + ";" + body + "\n"
	if err := appendLine(s.postPath(), line); err != nil {
		return "", fmt.Errorf("append post: %w", err)
	}
	return ts, nil
}

// ReadAllPosts scans the post log in append order. Lines that do not split
// into author, timestamp and body are skipped. A nil slice with nil error
// means the log does not exist yet, as opposed to existing but holding no
// valid entries.
func (s *FileStore) ReadAllPosts() ([]models.PostRecord, error) {
	f, err := os.Open(s.postPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open post log: %w", err)
	}
	defer f.Close()

	posts := []models.PostRecord{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ";", 3)
		if len(parts) != 3 {
			continue
		}
		posts = append(posts, models.PostRecord{
			Author:    parts[0],
			Timestamp: parts[1],
			Body:      parts[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read post log: %w", err)
	}
	return posts, nil
}

// AppendMessage appends one line to the sender-side log for the pair.
func (s *FileStore) AppendMessage(msg models.MessageRecord) error {
	line := msg.Sender + ": " + msg.Body + "\n"
	if err := appendLine(s.messagePath(msg.Sender, msg.Recipient), line); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ReadConversation returns the raw lines of the conversation between viewer
// and other: the viewer-sent log first, then the other-sent log. The two logs
// are concatenated in that fixed order, not merged by timestamp.
func (s *FileStore) ReadConversation(viewer, other string) ([]string, error) {
	var lines []string
	for _, path := range []string{
		s.messagePath(viewer, other),
		s.messagePath(other, viewer),
	} {
		chunk, err := readLines(path)
		if err != nil {
			return nil, err
		}
		lines = append(lines, chunk...)
	}
	return lines, nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open message log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read message log: %w", err)
	}
	return lines, nil
}
