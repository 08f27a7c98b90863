package users

import (
	"sync"
	"time"

	"gopkg.in/mgo.v2/bson"
)

// Memory store used by the "memory" database driver and tests.
type Memory struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemory() *Memory {
	return &Memory{users: map[string]User{}}
}

func (m *Memory) Insert(u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.UserName]; exists {
		return ErrTaken
	}
	if u.Id.Valid() == false {
		u.Id = bson.NewObjectId()
	}
	if u.Created.IsZero() {
		u.Created = time.Now()
	}
	if u.Activity == nil {
		u.Activity = []Activity{}
	}
	m.users[u.UserName] = clone(*u)
	return nil
}

func (m *Memory) FindName(username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(u), nil
}

func (m *Memory) FindNames(usernames []string) (Users, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := Users{}
	for _, name := range usernames {
		if u, ok := m.users[name]; ok {
			list = append(list, clone(u))
		}
	}
	return list, nil
}

func (m *Memory) Banned(username string) (bool, error) {
	u, err := m.FindName(username)
	return u.Banned, err
}

func (m *Memory) SetBanned(username string, banned bool, at time.Time) error {
	return m.mutate(username, func(u *User) {
		u.Banned = banned
		u.BannedAt = nil
		if banned {
			u.BannedAt = &at
		}
	})
}

func (m *Memory) SetShadowBanned(username string, shadow bool) error {
	return m.mutate(username, func(u *User) {
		u.ShadowBanned = shadow
	})
}

func (m *Memory) PushActivity(username string, a Activity) error {
	return m.mutate(username, func(u *User) {
		u.Activity = append(u.Activity, a)
	})
}

func (m *Memory) PullActivity(postID bson.ObjectId) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for name, u := range m.users {
		kept := make([]Activity, 0, len(u.Activity))
		for _, a := range u.Activity {
			if a.PostID != postID {
				kept = append(kept, a)
			}
		}
		if len(kept) != len(u.Activity) {
			u.Activity = kept
			m.users[name] = u
			n++
		}
	}
	return n, nil
}

func (m *Memory) mutate(username string, fn func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	u = clone(u)
	fn(&u)
	m.users[username] = u
	return nil
}

func clone(u User) User {
	u.Activity = append([]Activity{}, u.Activity...)
	return u
}
