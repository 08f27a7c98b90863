package users

import (
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type deps interface {
	Mgo() *mgo.Database
}

// Mongo store over the "users" collection.
type Mongo struct {
	d deps
}

func NewMongo(d deps) *Mongo {
	return &Mongo{d: d}
}

func (m *Mongo) c() *mgo.Collection {
	return m.d.Mgo().C("users")
}

func (m *Mongo) EnsureIndexes() error {
	err := m.c().EnsureIndex(mgo.Index{
		Key:        []string{"username"},
		Unique:     true,
		Background: true,
	})
	if err != nil {
		return err
	}
	return m.c().EnsureIndex(mgo.Index{
		Key:        []string{"activity.post_id"},
		Background: true,
	})
}

func (m *Mongo) FindName(username string) (u User, err error) {
	err = m.c().Find(bson.M{"username": username}).One(&u)
	if err == mgo.ErrNotFound {
		err = ErrNotFound
	}
	return
}

func (m *Mongo) FindNames(usernames []string) (list Users, err error) {
	list = Users{}
	if len(usernames) == 0 {
		return
	}
	err = m.c().Find(bson.M{"username": bson.M{"$in": usernames}}).Select(bson.M{"activity": 0}).All(&list)
	return
}

func (m *Mongo) Banned(username string) (bool, error) {
	var u struct {
		Banned bool `bson:"banned"`
	}
	err := m.c().Find(bson.M{"username": username}).Select(bson.M{"banned": 1}).One(&u)
	if err == mgo.ErrNotFound {
		return false, ErrNotFound
	}
	return u.Banned, err
}
