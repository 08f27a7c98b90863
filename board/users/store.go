package users

import (
	"errors"
	"time"

	"gopkg.in/mgo.v2/bson"
)

var (
	// ErrNotFound user has not been found by given criteria.
	ErrNotFound = errors.New("user has not been found by given criteria")
	// ErrTaken username already registered.
	ErrTaken = errors.New("username already taken")
)

type Store interface {
	Insert(u *User) error
	FindName(username string) (User, error)
	FindNames(usernames []string) (Users, error)
	// Banned is the hot path of the content-creation gate.
	Banned(username string) (bool, error)

	SetBanned(username string, banned bool, at time.Time) error
	SetShadowBanned(username string, shadow bool) error

	PushActivity(username string, a Activity) error
	// PullActivity removes the post from every user's history. Idempotent.
	PullActivity(postID bson.ObjectId) (int, error)
}
