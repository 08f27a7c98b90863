package collections

import (
	"time"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

// Collection of bookmarked posts.
type Collection struct {
	Id        bson.ObjectId `bson:"_id,omitempty" json:"id"`
	Owner     string        `bson:"owner" json:"owner"`
	Name      string        `bson:"name" json:"name"`
	Public    bool          `bson:"public" json:"isPublic"`
	Followers []string      `bson:"followers" json:"followers"`
	Saved     []Saved       `bson:"saved_posts" json:"savedPosts"`
	Created   time.Time     `bson:"created_at" json:"createdAt"`
}

// Saved post reference, ordered by save time.
type Saved struct {
	PostID bson.ObjectId `bson:"post_id" json:"postId"`
	Kind   content.Kind  `bson:"kind" json:"type"`
	At     time.Time     `bson:"saved_at" json:"savedAt"`
}

func (c Collection) Has(postID bson.ObjectId) bool {
	for _, s := range c.Saved {
		if s.PostID == postID {
			return true
		}
	}
	return false
}

// ReadableBy owner, followers of public collections and moderators.
func (c Collection) ReadableBy(username string, moderator bool) bool {
	return c.Public || moderator || c.Owner == username
}
