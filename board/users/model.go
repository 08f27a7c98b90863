package users

import (
	"time"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

// User account as seen by moderation.
type User struct {
	Id           bson.ObjectId `bson:"_id,omitempty" json:"id"`
	UserName     string        `bson:"username" json:"username"`
	Banned       bool          `bson:"banned" json:"isBanned"`
	BannedAt     *time.Time    `bson:"banned_at,omitempty" json:"-"`
	ShadowBanned bool          `bson:"shadow_banned" json:"-"`
	Activity     []Activity    `bson:"activity" json:"activity"`
	Created      time.Time     `bson:"created_at" json:"createdAt"`
}

// Activity history entry pointing at a post the user created.
type Activity struct {
	PostID  bson.ObjectId `bson:"post_id" json:"postId"`
	Kind    content.Kind  `bson:"kind" json:"type"`
	Created time.Time     `bson:"created_at" json:"createdAt"`
}

type Users []User

// Shadowed returns the set of shadow-banned usernames in the list.
func (list Users) Shadowed() map[string]bool {
	m := map[string]bool{}
	for _, u := range list {
		if u.ShadowBanned {
			m[u.UserName] = true
		}
	}
	return m
}
