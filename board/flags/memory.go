package flags

import (
	"sort"
	"sync"
	"time"

	"gopkg.in/mgo.v2/bson"
)

// Memory ledger used by the "memory" database driver and tests.
type Memory struct {
	mu    sync.Mutex
	flags map[bson.ObjectId]Flag
}

func NewMemory() *Memory {
	return &Memory{flags: map[bson.ObjectId]Flag{}}
}

func (m *Memory) Insert(f *Flag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prepare(f)
	m.flags[f.ID] = *f
	return nil
}

func (m *Memory) FindId(id bson.ObjectId) (Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return Flag{}, ErrNotFound
	}
	return f, nil
}

func (m *Memory) FindPendingBy(postID bson.ObjectId, flaggedBy string) (Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.flags {
		if f.PostID == postID && f.FlaggedBy == flaggedBy && f.Status == PENDING {
			return f, nil
		}
	}
	return Flag{}, ErrNotFound
}

func (m *Memory) Pending() ([]Flag, error) {
	m.mu.Lock()
	list := []Flag{}
	for _, f := range m.flags {
		if f.Status == PENDING {
			list = append(list, f)
		}
	}
	m.mu.Unlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Created.Equal(list[j].Created) {
			return list[i].ID < list[j].ID
		}
		return list[i].Created.Before(list[j].Created)
	})
	return list, nil
}

func (m *Memory) CountSince(flaggedBy string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range m.flags {
		if f.FlaggedBy == flaggedBy && !f.Created.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Transition(id bson.ObjectId, status Status, r Resolution) (Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return Flag{}, ErrNotFound
	}
	if f.Status != PENDING {
		return Flag{}, ErrResolved
	}
	m.flags[id] = resolve(f, status, r)
	return m.flags[id], nil
}

func (m *Memory) ResolvePending(postID bson.ObjectId, r Resolution) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, f := range m.flags {
		if f.PostID == postID && f.Status == PENDING {
			m.flags[id] = resolve(f, REJECTED, r)
			n++
		}
	}
	return n, nil
}

func resolve(f Flag, status Status, r Resolution) Flag {
	at := r.At
	f.Status = status
	f.ReviewedBy = r.By
	f.ReviewedAt = &at
	if r.Action != "" {
		f.Action = r.Action
	}
	return f
}
