package content

import (
	"errors"
	"time"

	"gopkg.in/mgo.v2/bson"
)

// ErrNotFound when a post does not exist or is not in the expected state.
var ErrNotFound = errors.New("post has not been found by given criteria")

// Store persists posts. Every mutator touches a single document.
type Store interface {
	Insert(p *Post) error
	FindId(kind Kind, id bson.ObjectId) (Post, error)
	FindTree(questionID bson.ObjectId) (Tree, error)
	FindQuestions(order Order, offset, limit int) (Posts, error)

	// AddChild appends child to the parent's answers or comments list and bumps its activity.
	AddChild(parent Ref, child Ref, at time.Time) error
	// DetachChild pulls child from the parent's list. Idempotent.
	DetachChild(parent Ref, child Ref) error

	PushFlag(ref Ref, f FlagRef) error

	// MarkRemoved sets is_removed only when the post exists and is not removed yet.
	// Returns ErrNotFound otherwise, leaving the document untouched.
	MarkRemoved(ref Ref, by string, at time.Time) error
}
