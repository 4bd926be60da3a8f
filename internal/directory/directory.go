// internal/directory/directory.go

// Package directory holds the in-memory authoritative set of user records
// for the running server. Every mutation is applied under one coarse lock and
// flushed to the record store before the call returns, so the on-disk
// snapshot reflects a mutation by the time its client sees a response.
package directory

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Riad-Zz/chipichipi/internal/models"
)

var (
	// ErrUsernameTaken is returned on registration of an existing username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrNoSuchUser       = errors.New("user not found")
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrAlreadyRequested = errors.New("friend request already pending")
	ErrNoSuchRequest    = errors.New("no pending request from that user")
)

// Saver is the slice of the record store the directory needs: a full-snapshot
// writer. Keeping it narrow lets the persistence strategy change without
// touching directory or session code.
type Saver interface {
	SaveDirectory([]*models.UserRecord) error
}

// Directory owns all user records for the process lifetime.
type Directory struct {
	mu     sync.Mutex
	users  map[string]*models.UserRecord
	order  []string // registration order; keeps snapshots byte-stable
	saver  Saver
	logger *logrus.Logger
}

// New builds a directory from the records loaded out of the store. Duplicate
// usernames in the input are dropped after the first occurrence.
func New(records []*models.UserRecord, saver Saver, logger *logrus.Logger) *Directory {
	d := &Directory{
		users:  make(map[string]*models.UserRecord, len(records)),
		saver:  saver,
		logger: logger,
	}
	for _, r := range records {
		if _, ok := d.users[r.Username]; ok {
			continue
		}
		d.users[r.Username] = r
		d.order = append(d.order, r.Username)
	}
	return d
}

// Register inserts a new user record and flushes. Fails with ErrUsernameTaken
// if the name is already present.
func (d *Directory) Register(username, password string, age int, gender, country string) (*models.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[username]; ok {
		return nil, ErrUsernameTaken
	}
	u := &models.UserRecord{
		Username: username,
		Password: password,
		Age:      age,
		Gender:   gender,
		Country:  country,
	}
	d.users[username] = u
	d.order = append(d.order, username)
	d.flushLocked()
	return u.Clone(), nil
}

// Exists reports whether username is registered. Used by the registration
// subflow's early duplicate check; Register re-checks under the lock.
func (d *Directory) Exists(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.users[username]
	return ok
}

// Authenticate compares the password as an opaque string. The error does not
// reveal whether the username exists.
func (d *Directory) Authenticate(username, password string) (*models.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[username]
	if !ok || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return u.Clone(), nil
}

// SendFriendRequest records a pending request from one user to another and
// flushes. Friendship symmetry means checking the sender's friend set is
// enough to detect an existing friendship.
func (d *Directory) SendFriendRequest(from, to string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if from == to {
		return ErrSelfRequest
	}
	sender, ok := d.users[from]
	if !ok {
		return ErrNoSuchUser
	}
	target, ok := d.users[to]
	if !ok {
		return ErrNoSuchUser
	}
	if sender.HasFriend(to) {
		return ErrAlreadyFriends
	}
	if target.HasRequest(from) {
		return ErrAlreadyRequested
	}
	target.AddRequest(from)
	d.flushLocked()
	return nil
}

// RespondToRequest resolves a pending request. Accepting adds the mutual
// friendship entries; rejecting only drops the pending entry. The snapshot is
// flushed on every call, including when no such request exists, matching the
// original's unconditional save.
func (d *Directory) RespondToRequest(user, requester string, accept bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.flushLocked()

	u, ok := d.users[user]
	if !ok || !u.HasRequest(requester) {
		return ErrNoSuchRequest
	}
	u.RemoveRequest(requester)
	if !accept {
		return nil
	}
	u.AddFriend(requester)
	if r, ok := d.users[requester]; ok {
		r.AddFriend(user)
		// Crossed requests: if the requester also had a pending request from
		// this user, the new friendship resolves it. A friend must never sit
		// in the pending set.
		r.RemoveRequest(user)
	}
	return nil
}

// ListFriends returns the user's friends in insertion order. Unknown users
// have no friends.
func (d *Directory) ListFriends(user string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[user]
	if !ok {
		return nil
	}
	return append([]string(nil), u.Friends...)
}

// ListRequests returns the user's pending requests in insertion order.
func (d *Directory) ListRequests(user string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[user]
	if !ok {
		return nil
	}
	return append([]string(nil), u.Requests...)
}

// IsFriend reports whether other is in user's friend set.
func (d *Directory) IsFriend(user, other string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[user]
	return ok && u.HasFriend(other)
}

// Len returns the number of registered users.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users)
}

// Flush writes the current snapshot. Sessions call this once after a
// manage-requests batch even when no entry was decided.
func (d *Directory) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

// flushLocked serializes the directory in registration order and hands it to
// the saver. A persistence failure is logged and the in-memory state kept;
// durability here is best effort.
func (d *Directory) flushLocked() {
	records := make([]*models.UserRecord, 0, len(d.order))
	for _, name := range d.order {
		records = append(records, d.users[name])
	}
	if err := d.saver.SaveDirectory(records); err != nil {
		d.logger.WithError(err).Error("failed to persist user snapshot; keeping in-memory state")
	}
}
