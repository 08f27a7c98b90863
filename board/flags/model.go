package flags

import (
	"time"

	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

type Status string

const (
	PENDING  Status = "pending"
	REVIEWED Status = "reviewed"
	REJECTED Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case PENDING, REVIEWED, REJECTED:
		return st, true
	}
	return "", false
}

type Reason string

const (
	SPAM       Reason = "spam"
	OFFENSIVE  Reason = "offensive-language"
	IRRELEVANT Reason = "irrelevant-content"
	OTHER      Reason = "other"
)

// Reasons accepted at the input boundary.
var Reasons = []Reason{SPAM, OFFENSIVE, IRRELEVANT, OTHER}

func ParseReason(s string) (Reason, bool) {
	for _, r := range Reasons {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Action a moderator took when resolving a flag.
type Action string

const (
	NONE       Action = "none"
	DELETE     Action = "delete-post"
	BAN        Action = "ban-user"
	SHADOW_BAN Action = "shadow-ban-user"
)

// ParseAction accepts only the actions that resolve a flag as a violation.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case DELETE, BAN, SHADOW_BAN:
		return a, true
	}
	return "", false
}

// Flag represents a report sent by a user flagging a post. Flags are never
// deleted; once resolved they stay as an audit trail.
type Flag struct {
	ID         bson.ObjectId `bson:"_id,omitempty" json:"id"`
	PostID     bson.ObjectId `bson:"post_id" json:"postId"`
	PostType   content.Kind  `bson:"post_type" json:"postType"`
	FlaggedBy  string        `bson:"flagged_by" json:"flaggedBy"`
	Reason     Reason        `bson:"reason" json:"reason"`
	Details    string        `bson:"details,omitempty" json:"details,omitempty"`
	Status     Status        `bson:"status" json:"status"`
	Created    time.Time     `bson:"date_flagged" json:"dateFlagged"`
	ReviewedBy string        `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time    `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	Action     Action        `bson:"action,omitempty" json:"action,omitempty"`
}

func (f Flag) Post() content.Ref {
	return content.Ref{ID: f.PostID, Kind: f.PostType}
}

func (f Flag) Embedded() content.FlagRef {
	return content.FlagRef{
		ID:        f.ID,
		FlaggedBy: f.FlaggedBy,
		Reason:    string(f.Reason),
		Created:   f.Created,
	}
}

// Resolution recorded when a flag leaves the pending state.
type Resolution struct {
	By     string
	At     time.Time
	Action Action
}
