// Package posting is the content-creation gate and the filtered read path.
package posting

import (
	"context"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"
	"github.com/op/go-logging"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/moderation"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/core/profanity"
	"gopkg.in/mgo.v2/bson"
)

var log = logging.MustGetLogger("posting")

type checker interface {
	Check(text string) profanity.Result
}

type commentNotifier interface {
	CommentCreated(ctx context.Context, c content.Post, parents content.Posts, shadowed map[string]bool)
}

type Publisher struct {
	posts     content.Store
	users     users.Store
	profanity checker
	notify    commentNotifier
	now       func() time.Time
}

func NewPublisher(posts content.Store, u users.Store, p checker, n commentNotifier) *Publisher {
	if n == nil {
		n = quiet{}
	}
	return &Publisher{posts: posts, users: u, profanity: p, notify: n, now: time.Now}
}

type quiet struct{}

func (quiet) CommentCreated(context.Context, content.Post, content.Posts, map[string]bool) {}

// Ask publishes a new question.
func (p *Publisher) Ask(ctx context.Context, author, title, body string) (content.Post, error) {
	usr, err := p.gate(author, body)
	if err != nil {
		return content.Post{}, err
	}
	if strings.TrimSpace(title) == "" {
		return content.Post{}, &moderation.ValidationError{Field: "title", Message: "is required"}
	}
	q := content.Post{
		Kind:   content.QUESTION,
		Author: usr.UserName,
		Title:  p.clean(title),
		Body:   p.clean(body),
	}
	if err := p.publish(&q, nil); err != nil {
		return content.Post{}, err
	}
	return q, nil
}

// Answer a question that is still addressable.
func (p *Publisher) Answer(ctx context.Context, author, questionID, body string) (content.Post, error) {
	usr, err := p.gate(author, body)
	if err != nil {
		return content.Post{}, err
	}
	q, err := p.parent(questionID, string(content.QUESTION))
	if err != nil {
		return content.Post{}, err
	}
	a := content.Post{
		Kind:       content.ANSWER,
		Author:     usr.UserName,
		Body:       p.clean(body),
		QuestionID: q.Id,
		ParentID:   q.Id,
		ParentKind: content.QUESTION,
	}
	ref := q.Ref()
	if err := p.publish(&a, &ref); err != nil {
		return content.Post{}, err
	}
	return a, nil
}

// Comment on a question or an answer. Live viewers of the question get a
// commentUpdate filtered with the same rules as a fetch.
func (p *Publisher) Comment(ctx context.Context, author, parentID, parentType, body string) (content.Post, error) {
	usr, err := p.gate(author, body)
	if err != nil {
		return content.Post{}, err
	}
	if parentType == string(content.COMMENT) {
		return content.Post{}, &moderation.ValidationError{Field: "parentType", Message: "must be question or answer"}
	}
	parent, err := p.parent(parentID, parentType)
	if err != nil {
		return content.Post{}, err
	}
	questionID := parent.Id
	thread := content.Posts{parent}
	if parent.Kind == content.ANSWER {
		questionID = parent.QuestionID
		q, err := p.parent(questionID.Hex(), string(content.QUESTION))
		if err != nil {
			return content.Post{}, err
		}
		thread = content.Posts{q, parent}
	}
	c := content.Post{
		Kind:       content.COMMENT,
		Author:     usr.UserName,
		Body:       p.clean(body),
		QuestionID: questionID,
		ParentID:   parent.Id,
		ParentKind: parent.Kind,
	}
	ref := parent.Ref()
	if err := p.publish(&c, &ref); err != nil {
		return content.Post{}, err
	}
	p.announce(ctx, c, usr, thread)
	return c, nil
}

func (p *Publisher) announce(ctx context.Context, c content.Post, author users.User, thread content.Posts) {
	found, err := p.users.FindNames(thread.Authors())
	if err != nil {
		// Delivering without knowing the parents' authors could leak hidden posts.
		log.Warningf("comment %s not announced, could not find thread authors: %v", c.Id.Hex(), err)
		return
	}
	shadowed := found.Shadowed()
	shadowed[author.UserName] = author.ShadowBanned
	p.notify.CommentCreated(ctx, c, thread, shadowed)
}

// gate runs before anything is stored. Banned accounts are refused whatever
// they send; shadow-banned ones pass and are hidden at read time.
func (p *Publisher) gate(author, body string) (users.User, error) {
	if author == "" {
		return users.User{}, &moderation.ValidationError{Field: "author", Message: "is required"}
	}
	banned, err := p.users.Banned(author)
	if err == users.ErrNotFound {
		return users.User{}, &moderation.NotFoundError{Kind: "user", ID: author}
	} else if err != nil {
		return users.User{}, &moderation.PersistenceError{Op: "check ban", Err: err}
	}
	if banned {
		log.Infof("refused content from banned user %s", author)
		return users.User{}, &moderation.AccountError{Username: author}
	}
	if strings.TrimSpace(body) == "" {
		return users.User{}, &moderation.ValidationError{Field: "body", Message: "is required"}
	}
	usr, err := p.users.FindName(author)
	if err != nil {
		return users.User{}, &moderation.PersistenceError{Op: "find user", Err: err}
	}
	return usr, nil
}

func (p *Publisher) parent(id, kind string) (content.Post, error) {
	if id == "" {
		return content.Post{}, &moderation.ValidationError{Field: "parentId", Message: "is required"}
	}
	if !bson.IsObjectIdHex(id) {
		return content.Post{}, &moderation.ValidationError{Field: "parentId", Message: "is not a valid id"}
	}
	k, ok := content.ParseKind(kind)
	if !ok {
		return content.Post{}, &moderation.ValidationError{Field: "parentType", Message: "must be question or answer"}
	}
	post, err := p.posts.FindId(k, bson.ObjectIdHex(id))
	if err == content.ErrNotFound || (err == nil && post.Removed) {
		return content.Post{}, &moderation.NotFoundError{Kind: string(k), ID: id}
	} else if err != nil {
		return content.Post{}, &moderation.PersistenceError{Op: "find parent", Err: err}
	}
	return post, nil
}

func (p *Publisher) clean(text string) string {
	text = strings.TrimSpace(sanitize.HTML(text))
	if p.profanity == nil {
		return text
	}
	return p.profanity.Check(text).CensoredText
}

func (p *Publisher) publish(post *content.Post, parent *content.Ref) error {
	now := p.now()
	post.Created = now
	post.Active = now
	if err := p.posts.Insert(post); err != nil {
		return &moderation.PersistenceError{Op: "insert " + string(post.Kind), Err: err}
	}
	if parent != nil {
		if err := p.posts.AddChild(*parent, post.Ref(), now); err != nil {
			return &moderation.PersistenceError{Op: "attach " + string(post.Kind), Err: err}
		}
	}
	err := p.users.PushActivity(post.Author, users.Activity{PostID: post.Id, Kind: post.Kind, Created: now})
	if err != nil {
		return &moderation.PersistenceError{Op: "append activity", Err: err}
	}
	log.Debugf("%s %s published by %s", post.Kind, post.Id.Hex(), post.Author)
	return nil
}
