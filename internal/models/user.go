// internal/models/user.go

package models

// UserRecord is the authoritative record for one registered user. The
// username is the unique key and never changes after registration. Friends
// and Requests behave as sets but keep insertion order, so the persisted
// snapshot is stable across save/load cycles.
type UserRecord struct {
	Username string
	Password string
	Age      int
	Gender   string
	Country  string

	// Friends holds usernames this user is friends with. Friendship is
	// symmetric: the directory maintains the reverse entry on the other record.
	Friends []string

	// Requests holds usernames that sent this user a friend request which has
	// not been accepted or rejected yet.
	Requests []string
}

// Clone returns a deep copy that callers may inspect without holding the
// directory lock.
func (u *UserRecord) Clone() *UserRecord {
	cp := *u
	cp.Friends = append([]string(nil), u.Friends...)
	cp.Requests = append([]string(nil), u.Requests...)
	return &cp
}

// HasFriend reports whether name is in the friend set.
func (u *UserRecord) HasFriend(name string) bool {
	return contains(u.Friends, name)
}

// AddFriend appends name to the friend set. Returns false if it was already
// present.
func (u *UserRecord) AddFriend(name string) bool {
	if contains(u.Friends, name) {
		return false
	}
	u.Friends = append(u.Friends, name)
	return true
}

// HasRequest reports whether a pending request from name exists.
func (u *UserRecord) HasRequest(name string) bool {
	return contains(u.Requests, name)
}

// AddRequest appends name to the pending request set. Returns false if a
// request from name was already pending.
func (u *UserRecord) AddRequest(name string) bool {
	if contains(u.Requests, name) {
		return false
	}
	u.Requests = append(u.Requests, name)
	return true
}

// RemoveRequest drops the pending request from name, if any.
func (u *UserRecord) RemoveRequest(name string) bool {
	for i, r := range u.Requests {
		if r == name {
			u.Requests = append(u.Requests[:i], u.Requests[i+1:]...)
			return true
		}
	}
	return false
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
