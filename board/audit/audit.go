package audit

import (
	"sync"
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// Entry of the moderator action log.
type Entry struct {
	ID        bson.ObjectId `bson:"_id,omitempty" json:"id,omitempty"`
	Moderator string        `bson:"moderator" json:"moderator"`
	Action    string        `bson:"action" json:"action"`
	Related   string        `bson:"related" json:"related"`
	RelatedID string        `bson:"related_id" json:"related_id"`
	Created   time.Time     `bson:"created_at" json:"created_at"`
}

type Log interface {
	Record(e Entry) error
}

type deps interface {
	Mgo() *mgo.Database
}

// Mongo log over the "audits" collection.
type Mongo struct {
	d deps
}

func NewMongo(d deps) *Mongo {
	return &Mongo{d: d}
}

func (m *Mongo) Record(e Entry) error {
	stamp(&e)
	return m.d.Mgo().C("audits").Insert(&e)
}

// Memory log.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&e)
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry{}, m.entries...)
}

func stamp(e *Entry) {
	if e.ID.Valid() == false {
		e.ID = bson.NewObjectId()
	}
	if e.Created.IsZero() {
		e.Created = time.Now()
	}
}
