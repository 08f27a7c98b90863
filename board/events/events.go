// Package events holds the closed set of server to client real-time events.
// Each event name has exactly one payload type; Decode rejects anything else.
package events

import (
	"encoding/json"
	"errors"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

// ErrUnknownEvent for names outside the closed set.
var ErrUnknownEvent = errors.New("unknown event name")

const (
	CONTENT_REMOVED   = "contentRemoved"
	USER_BANNED       = "userBanned"
	FLAG_NOTICE       = "flagNotification"
	DELETE_POST       = "deletePostNotification"
	COLLECTION_UPDATE = "collectionUpdate"
	COMMENT_UPDATE    = "commentUpdate"
)

// Event is implemented only by the payload types of this package.
type Event interface {
	Name() string
	event()
}

type ContentRemoved struct {
	ContentID   bson.ObjectId `json:"contentId"`
	ContentType content.Kind  `json:"contentType"`
}

type UserBanned struct {
	Username string `json:"username"`
}

type FlagNotification struct {
	FlagID   bson.ObjectId `json:"flagId"`
	PostID   bson.ObjectId `json:"postId"`
	PostType content.Kind  `json:"postType"`
	Reason   string        `json:"reason"`
}

type DeletePostNotification struct {
	PostID       bson.ObjectId `json:"postId"`
	PostType     content.Kind  `json:"postType"`
	CollectionID bson.ObjectId `json:"collectionId"`
}

type CollectionUpdate struct {
	CollectionID bson.ObjectId `json:"collectionId"`
	Removed      bson.ObjectId `json:"removed"`
}

type CommentUpdate struct {
	CommentID  bson.ObjectId `json:"commentId"`
	ParentID   bson.ObjectId `json:"parentId"`
	ParentType content.Kind  `json:"parentType"`
	QuestionID bson.ObjectId `json:"questionId"`
	Author     string        `json:"author"`
	Body       string        `json:"body"`
}

func (ContentRemoved) Name() string         { return CONTENT_REMOVED }
func (UserBanned) Name() string             { return USER_BANNED }
func (FlagNotification) Name() string       { return FLAG_NOTICE }
func (DeletePostNotification) Name() string { return DELETE_POST }
func (CollectionUpdate) Name() string       { return COLLECTION_UPDATE }
func (CommentUpdate) Name() string          { return COMMENT_UPDATE }

func (ContentRemoved) event()         {}
func (UserBanned) event()             {}
func (FlagNotification) event()       {}
func (DeletePostNotification) event() {}
func (CollectionUpdate) event()       {}
func (CommentUpdate) event()          {}

type envelope struct {
	Event  string          `json:"event"`
	Params json.RawMessage `json:"params"`
}

// Encode into the socket wire shape {"event": name, "params": payload}.
func Encode(e Event) (string, error) {
	params, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	bytes, err := json.Marshal(envelope{Event: e.Name(), Params: params})
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Decode a wire message back into its payload type.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	var e Event
	switch env.Event {
	case CONTENT_REMOVED:
		e = &ContentRemoved{}
	case USER_BANNED:
		e = &UserBanned{}
	case FLAG_NOTICE:
		e = &FlagNotification{}
	case DELETE_POST:
		e = &DeletePostNotification{}
	case COLLECTION_UPDATE:
		e = &CollectionUpdate{}
	case COMMENT_UPDATE:
		e = &CommentUpdate{}
	default:
		return nil, ErrUnknownEvent
	}
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, e); err != nil {
			return nil, err
		}
	}
	return deref(e), nil
}

func deref(e Event) Event {
	switch v := e.(type) {
	case *ContentRemoved:
		return *v
	case *UserBanned:
		return *v
	case *FlagNotification:
		return *v
	case *DeletePostNotification:
		return *v
	case *CollectionUpdate:
		return *v
	case *CommentUpdate:
		return *v
	}
	return e
}
