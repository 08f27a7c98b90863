package collections

import (
	"sort"
	"sync"
	"time"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

// Memory store used by the "memory" database driver and tests.
type Memory struct {
	mu   sync.Mutex
	list map[bson.ObjectId]Collection
}

func NewMemory() *Memory {
	return &Memory{list: map[bson.ObjectId]Collection{}}
}

func (m *Memory) Insert(c *Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prepare(c)
	m.list[c.Id] = clone(*c)
	return nil
}

func (m *Memory) FindId(id bson.ObjectId) (Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.list[id]
	if !ok {
		return Collection{}, ErrNotFound
	}
	return clone(c), nil
}

func (m *Memory) FindByOwner(username string) ([]Collection, error) {
	m.mu.Lock()
	list := []Collection{}
	for _, c := range m.list {
		if c.Owner == username {
			list = append(list, clone(c))
		}
	}
	m.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Created.Before(list[j].Created) })
	return list, nil
}

func (m *Memory) Save(id bson.ObjectId, ref content.Ref, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.list[id]
	if !ok {
		return ErrNotFound
	}
	if c.Has(ref.ID) {
		return nil
	}
	c = clone(c)
	c.Saved = append(c.Saved, Saved{PostID: ref.ID, Kind: ref.Kind, At: at})
	m.list[id] = c
	return nil
}

func (m *Memory) Follow(id bson.ObjectId, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.list[id]
	if !ok {
		return ErrNotFound
	}
	for _, f := range c.Followers {
		if f == username {
			return nil
		}
	}
	c = clone(c)
	c.Followers = append(c.Followers, username)
	m.list[id] = c
	return nil
}

func (m *Memory) RemovePost(postID bson.ObjectId) ([]Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	affected := []Collection{}
	for id, c := range m.list {
		if !c.Has(postID) {
			continue
		}
		affected = append(affected, clone(c))
		kept := make([]Saved, 0, len(c.Saved))
		for _, s := range c.Saved {
			if s.PostID != postID {
				kept = append(kept, s)
			}
		}
		c.Saved = kept
		m.list[id] = c
	}
	return affected, nil
}

func clone(c Collection) Collection {
	c.Followers = append([]string{}, c.Followers...)
	c.Saved = append([]Saved{}, c.Saved...)
	return c
}
