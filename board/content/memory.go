package content

import (
	"sort"
	"sync"
	"time"

	"gopkg.in/mgo.v2/bson"
)

// Memory store used by the "memory" database driver and tests.
type Memory struct {
	mu    sync.Mutex
	posts map[Kind]map[bson.ObjectId]Post
}

func NewMemory() *Memory {
	return &Memory{posts: map[Kind]map[bson.ObjectId]Post{
		QUESTION: {},
		ANSWER:   {},
		COMMENT:  {},
	}}
}

func (m *Memory) Insert(p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.Kind]; !ok {
		return ErrNotFound
	}
	if p.Id.Valid() == false {
		p.Id = bson.NewObjectId()
	}
	if p.Flags == nil {
		p.Flags = []FlagRef{}
	}
	if p.Active.IsZero() {
		p.Active = p.Created
	}
	m.posts[p.Kind][p.Id] = clone(*p)
	return nil
}

func (m *Memory) FindId(kind Kind, id bson.ObjectId) (Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[kind][id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return clone(p), nil
}

func (m *Memory) FindTree(questionID bson.ObjectId) (Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.posts[QUESTION][questionID]
	if !ok {
		return Tree{}, ErrNotFound
	}
	var answers, comments Posts
	for _, a := range m.posts[ANSWER] {
		if a.QuestionID == questionID {
			answers = append(answers, clone(a))
		}
	}
	for _, c := range m.posts[COMMENT] {
		if c.QuestionID == questionID {
			comments = append(comments, clone(c))
		}
	}
	byCreation(answers)
	byCreation(comments)
	return assemble(clone(q), answers, comments), nil
}

func (m *Memory) FindQuestions(order Order, offset, limit int) (Posts, error) {
	m.mu.Lock()
	list := Posts{}
	for _, q := range m.posts[QUESTION] {
		if order == UNANSWERED && len(q.Answers) > 0 {
			continue
		}
		list = append(list, clone(q))
	}
	m.mu.Unlock()

	key := func(p Post) time.Time { return p.Created }
	if order == ACTIVE {
		key = func(p Post) time.Time { return p.Active }
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := key(list[i]), key(list[j])
		if a.Equal(b) {
			return list[i].Id > list[j].Id
		}
		return a.After(b)
	})
	if offset >= len(list) {
		return Posts{}, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (m *Memory) AddChild(parent Ref, child Ref, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[parent.Kind][parent.ID]
	if !ok {
		return ErrNotFound
	}
	if child.Kind == ANSWER {
		p.Answers = addToSet(p.Answers, child.ID)
	} else {
		p.Comments = addToSet(p.Comments, child.ID)
	}
	p.Active = at
	m.posts[parent.Kind][parent.ID] = p
	return nil
}

func (m *Memory) DetachChild(parent Ref, child Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[parent.Kind][parent.ID]
	if !ok {
		return nil
	}
	p.Answers = pull(p.Answers, child.ID)
	p.Comments = pull(p.Comments, child.ID)
	m.posts[parent.Kind][parent.ID] = p
	return nil
}

func (m *Memory) PushFlag(ref Ref, f FlagRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[ref.Kind][ref.ID]
	if !ok {
		return ErrNotFound
	}
	p.Flags = append(append([]FlagRef{}, p.Flags...), f)
	m.posts[ref.Kind][ref.ID] = p
	return nil
}

func (m *Memory) MarkRemoved(ref Ref, by string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[ref.Kind][ref.ID]
	if !ok || p.Removed {
		return ErrNotFound
	}
	p.Removed = true
	p.RemovedBy = by
	p.RemovedAt = &at
	m.posts[ref.Kind][ref.ID] = p
	return nil
}

func clone(p Post) Post {
	p.Answers = append([]bson.ObjectId(nil), p.Answers...)
	p.Comments = append([]bson.ObjectId(nil), p.Comments...)
	p.Flags = append([]FlagRef{}, p.Flags...)
	return p
}

func byCreation(list Posts) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Created.Equal(list[j].Created) {
			return list[i].Id < list[j].Id
		}
		return list[i].Created.Before(list[j].Created)
	})
}

func addToSet(list []bson.ObjectId, id bson.ObjectId) []bson.ObjectId {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

func pull(list []bson.ObjectId, id bson.ObjectId) []bson.ObjectId {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
