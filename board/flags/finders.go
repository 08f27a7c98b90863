package flags

import (
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type deps interface {
	Mgo() *mgo.Database
}

// Mongo ledger over the "flags" collection.
type Mongo struct {
	d deps
}

func NewMongo(d deps) *Mongo {
	return &Mongo{d: d}
}

func (m *Mongo) c() *mgo.Collection {
	return m.d.Mgo().C("flags")
}

func (m *Mongo) EnsureIndexes() error {
	indexes := []mgo.Index{
		{Key: []string{"status", "date_flagged"}, Background: true},
		{Key: []string{"post_id", "flagged_by", "status"}, Background: true},
		{Key: []string{"flagged_by", "date_flagged"}, Background: true},
	}
	for _, idx := range indexes {
		if err := m.c().EnsureIndex(idx); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mongo) FindId(id bson.ObjectId) (f Flag, err error) {
	err = m.c().FindId(id).One(&f)
	if err == mgo.ErrNotFound {
		err = ErrNotFound
	}
	return
}

func (m *Mongo) FindPendingBy(postID bson.ObjectId, flaggedBy string) (f Flag, err error) {
	err = m.c().Find(bson.M{
		"post_id":    postID,
		"flagged_by": flaggedBy,
		"status":     PENDING,
	}).One(&f)
	if err == mgo.ErrNotFound {
		err = ErrNotFound
	}
	return
}

func (m *Mongo) Pending() (list []Flag, err error) {
	list = []Flag{}
	err = m.c().Find(bson.M{"status": PENDING}).Sort("date_flagged", "_id").All(&list)
	return
}

// CountSince counts flags submitted by a user from since onwards.
func (m *Mongo) CountSince(flaggedBy string, since time.Time) (int, error) {
	return m.c().Find(bson.M{
		"flagged_by":   flaggedBy,
		"date_flagged": bson.M{"$gte": since},
	}).Count()
}
