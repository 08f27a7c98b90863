package collections

import (
	"errors"
	"time"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

var ErrNotFound = errors.New("collection has not been found by given criteria")

type Store interface {
	Insert(c *Collection) error
	FindId(id bson.ObjectId) (Collection, error)
	FindByOwner(username string) ([]Collection, error)

	// Save appends the post once; saving it again is a no-op.
	Save(id bson.ObjectId, ref content.Ref, at time.Time) error
	Follow(id bson.ObjectId, username string) error

	// RemovePost excises the post from every collection, returning the
	// collections that held it. Idempotent.
	RemovePost(postID bson.ObjectId) ([]Collection, error)
}

func prepare(c *Collection) {
	if c.Id.Valid() == false {
		c.Id = bson.NewObjectId()
	}
	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	if c.Followers == nil {
		c.Followers = []string{}
	}
	if c.Saved == nil {
		c.Saved = []Saved{}
	}
}
