package flags

import (
	"errors"
	"time"

	"gopkg.in/mgo.v2/bson"
)

var (
	// ErrNotFound when no flag has the given id.
	ErrNotFound = errors.New("flag has not been found by given criteria")
	// ErrResolved when the flag exists but already left the pending state.
	ErrResolved = errors.New("flag has already been resolved")
)

// Ledger keeps every flag ever submitted.
type Ledger interface {
	Insert(f *Flag) error
	FindId(id bson.ObjectId) (Flag, error)
	FindPendingBy(postID bson.ObjectId, flaggedBy string) (Flag, error)
	// Pending flags ordered by creation time then id.
	Pending() ([]Flag, error)
	CountSince(flaggedBy string, since time.Time) (int, error)

	// Transition moves a pending flag to status. Only one caller can win for
	// a given id; the rest get ErrResolved.
	Transition(id bson.ObjectId, status Status, r Resolution) (Flag, error)
	// ResolvePending rejects every pending flag on a post.
	ResolvePending(postID bson.ObjectId, r Resolution) (int, error)
}

func prepare(f *Flag) {
	if f.ID.Valid() == false {
		f.ID = bson.NewObjectId()
	}
	if f.Created.IsZero() {
		f.Created = time.Now()
	}
	f.Status = PENDING
	f.ReviewedBy = ""
	f.ReviewedAt = nil
	f.Action = ""
}

// StartOfDay for the daily flag quota.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
