package collections

import (
	"time"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

type deps interface {
	Mgo() *mgo.Database
}

// Mongo store over the "collections" collection.
type Mongo struct {
	d deps
}

func NewMongo(d deps) *Mongo {
	return &Mongo{d: d}
}

func (m *Mongo) c() *mgo.Collection {
	return m.d.Mgo().C("collections")
}

func (m *Mongo) EnsureIndexes() error {
	for _, key := range [][]string{{"saved_posts.post_id"}, {"owner"}} {
		if err := m.c().EnsureIndex(mgo.Index{Key: key, Background: true}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mongo) Insert(c *Collection) error {
	prepare(c)
	return m.c().Insert(c)
}

func (m *Mongo) FindId(id bson.ObjectId) (c Collection, err error) {
	err = m.c().FindId(id).One(&c)
	if err == mgo.ErrNotFound {
		err = ErrNotFound
	}
	return
}

func (m *Mongo) FindByOwner(username string) (list []Collection, err error) {
	list = []Collection{}
	err = m.c().Find(bson.M{"owner": username}).Sort("created_at").All(&list)
	return
}

func (m *Mongo) Save(id bson.ObjectId, ref content.Ref, at time.Time) error {
	err := m.c().Update(bson.M{
		"_id":                 id,
		"saved_posts.post_id": bson.M{"$ne": ref.ID},
	}, bson.M{"$push": bson.M{"saved_posts": Saved{PostID: ref.ID, Kind: ref.Kind, At: at}}})
	if err == mgo.ErrNotFound {
		// Either missing or already saved.
		_, err = m.FindId(id)
	}
	return err
}

func (m *Mongo) Follow(id bson.ObjectId, username string) error {
	err := m.c().UpdateId(id, bson.M{"$addToSet": bson.M{"followers": username}})
	if err == mgo.ErrNotFound {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) RemovePost(postID bson.ObjectId) (list []Collection, err error) {
	q := bson.M{"saved_posts.post_id": postID}
	list = []Collection{}
	if err = m.c().Find(q).All(&list); err != nil {
		return
	}
	if len(list) == 0 {
		return
	}
	_, err = m.c().UpdateAll(q, bson.M{"$pull": bson.M{"saved_posts": bson.M{"post_id": postID}}})
	return
}
