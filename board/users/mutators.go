package users

import (
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

func (m *Mongo) Insert(u *User) error {
	if u.Id.Valid() == false {
		u.Id = bson.NewObjectId()
	}
	if u.Created.IsZero() {
		u.Created = time.Now()
	}
	if u.Activity == nil {
		u.Activity = []Activity{}
	}
	err := m.c().Insert(u)
	if mgo.IsDup(err) {
		return ErrTaken
	}
	return err
}

func (m *Mongo) SetBanned(username string, banned bool, at time.Time) error {
	update := bson.M{"$set": bson.M{"banned": banned, "banned_at": at}}
	if !banned {
		update = bson.M{
			"$set":   bson.M{"banned": false},
			"$unset": bson.M{"banned_at": ""},
		}
	}
	return m.update(username, update)
}

func (m *Mongo) SetShadowBanned(username string, shadow bool) error {
	return m.update(username, bson.M{"$set": bson.M{"shadow_banned": shadow}})
}

func (m *Mongo) PushActivity(username string, a Activity) error {
	return m.update(username, bson.M{"$push": bson.M{"activity": a}})
}

func (m *Mongo) PullActivity(postID bson.ObjectId) (int, error) {
	info, err := m.c().UpdateAll(
		bson.M{"activity.post_id": postID},
		bson.M{"$pull": bson.M{"activity": bson.M{"post_id": postID}}},
	)
	if err != nil {
		return 0, err
	}
	return info.Updated, nil
}

func (m *Mongo) update(username string, update bson.M) error {
	err := m.c().Update(bson.M{"username": username}, update)
	if err == mgo.ErrNotFound {
		return ErrNotFound
	}
	return err
}
