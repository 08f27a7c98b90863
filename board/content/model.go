package content

import (
	"time"

	"gopkg.in/mgo.v2/bson"
)

// Kind of post. Closed set.
type Kind string

const (
	QUESTION Kind = "question"
	ANSWER   Kind = "answer"
	COMMENT  Kind = "comment"
)

// ParseKind rejects anything outside the closed set.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case QUESTION, ANSWER, COMMENT:
		return k, true
	}
	return "", false
}

// Collection name backing each kind.
func (k Kind) Collection() string {
	switch k {
	case QUESTION:
		return "questions"
	case ANSWER:
		return "answers"
	case COMMENT:
		return "comments"
	}
	panic("content: unknown kind " + string(k))
}

// FlagRef is the copy of a flag embedded in the flagged post.
type FlagRef struct {
	ID        bson.ObjectId `bson:"_id" json:"id"`
	FlaggedBy string        `bson:"flagged_by" json:"flaggedBy"`
	Reason    string        `bson:"reason" json:"reason"`
	Created   time.Time     `bson:"created_at" json:"dateFlagged"`
}

// Post is a question, an answer or a comment.
type Post struct {
	Id     bson.ObjectId `bson:"_id,omitempty" json:"id"`
	Kind   Kind          `bson:"kind" json:"type"`
	Author string        `bson:"author" json:"author"`
	Title  string        `bson:"title,omitempty" json:"title,omitempty"`
	Body   string        `bson:"body" json:"body"`

	// Root question for answers and comments.
	QuestionID bson.ObjectId `bson:"question_id,omitempty" json:"questionId,omitempty"`
	// Direct parent for answers (the question) and comments (question or answer).
	ParentID   bson.ObjectId `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	ParentKind Kind          `bson:"parent_kind,omitempty" json:"parentType,omitempty"`

	Answers  []bson.ObjectId `bson:"answers,omitempty" json:"answers,omitempty"`
	Comments []bson.ObjectId `bson:"comments,omitempty" json:"comments,omitempty"`
	Flags    []FlagRef       `bson:"flags" json:"flags"`

	Removed   bool       `bson:"is_removed" json:"isRemoved"`
	RemovedBy string     `bson:"removed_by,omitempty" json:"-"`
	RemovedAt *time.Time `bson:"removed_at,omitempty" json:"-"`

	Created time.Time `bson:"created_at" json:"createdAt"`
	Active  time.Time `bson:"active_at" json:"activeAt"`
}

// FlaggedBy reports whether username has a flag on the post.
func (p Post) FlaggedBy(username string) bool {
	for _, f := range p.Flags {
		if f.FlaggedBy == username {
			return true
		}
	}
	return false
}

// Ref identifies a post by kind and id.
type Ref struct {
	ID   bson.ObjectId `bson:"id" json:"id"`
	Kind Kind          `bson:"kind" json:"type"`
}

func (p Post) Ref() Ref {
	return Ref{ID: p.Id, Kind: p.Kind}
}

// Posts list.
type Posts []Post

func (list Posts) Authors() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range list {
		if _, ok := seen[p.Author]; ok {
			continue
		}
		seen[p.Author] = struct{}{}
		out = append(out, p.Author)
	}
	return out
}

// AnswerNode is an answer with its comments.
type AnswerNode struct {
	Answer   Post  `json:"answer"`
	Comments Posts `json:"comments"`
}

// Tree is a question with nested answers and comments.
type Tree struct {
	Question Post         `json:"question"`
	Comments Posts        `json:"comments"`
	Answers  []AnswerNode `json:"answers"`
}

// Flatten every post in the tree.
func (t Tree) Flatten() Posts {
	list := Posts{t.Question}
	list = append(list, t.Comments...)
	for _, a := range t.Answers {
		list = append(list, a.Answer)
		list = append(list, a.Comments...)
	}
	return list
}

// Order of question listings.
type Order string

const (
	NEWEST     Order = "newest"
	UNANSWERED Order = "unanswered"
	ACTIVE     Order = "active"
)

func ParseOrder(s string) (Order, bool) {
	switch o := Order(s); o {
	case NEWEST, UNANSWERED, ACTIVE:
		return o, true
	case "":
		return NEWEST, true
	}
	return "", false
}
