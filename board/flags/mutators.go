package flags

import (
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

// Insert a new pending flag.
func (m *Mongo) Insert(f *Flag) error {
	prepare(f)
	return m.c().Insert(f)
}

func (m *Mongo) Transition(id bson.ObjectId, status Status, r Resolution) (f Flag, err error) {
	_, err = m.c().Find(bson.M{"_id": id, "status": PENDING}).Apply(mgo.Change{
		Update:    bson.M{"$set": resolution(status, r)},
		ReturnNew: true,
	}, &f)
	if err == mgo.ErrNotFound {
		if _, ferr := m.FindId(id); ferr != nil {
			return f, ferr
		}
		return f, ErrResolved
	}
	return
}

func (m *Mongo) ResolvePending(postID bson.ObjectId, r Resolution) (int, error) {
	info, err := m.c().UpdateAll(bson.M{
		"post_id": postID,
		"status":  PENDING,
	}, bson.M{"$set": resolution(REJECTED, r)})
	if err != nil {
		return 0, err
	}
	return info.Updated, nil
}

func resolution(status Status, r Resolution) bson.M {
	set := bson.M{
		"status":      status,
		"reviewed_by": r.By,
		"reviewed_at": r.At,
	}
	if r.Action != "" {
		set["action"] = r.Action
	}
	return set
}
