// Package notifications turns committed moderation outcomes into real-time
// events. Callers invoke it only after the mutation is persisted; delivery
// failures are logged and counted, never returned.
package notifications

import (
	"context"

	"github.com/op/go-logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/events"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/realtime"
)

var log = logging.MustGetLogger("notifications")

var failures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "overflow",
	Subsystem: "notifications",
	Name:      "enqueue_failures_total",
	Help:      "Events that could not be handed to the real-time hub.",
}, []string{"event"})

type publisher interface {
	Publish(ctx context.Context, channel string, e events.Event, restrict *realtime.Restriction) error
}

type Notifier struct {
	hub publisher
}

func New(hub publisher) *Notifier {
	return &Notifier{hub: hub}
}

// ContentRemoved broadcasts the removal and tells every collection that
// held the post, plus each collection owner.
func (n *Notifier) ContentRemoved(ctx context.Context, post content.Post, affected []collections.Collection) {
	n.emit(ctx, "", events.ContentRemoved{ContentID: post.Id, ContentType: post.Kind}, nil)
	for _, c := range affected {
		n.emit(ctx, CollectionChannel(c.Id.Hex()), events.DeletePostNotification{
			PostID:       post.Id,
			PostType:     post.Kind,
			CollectionID: c.Id,
		}, nil)
		n.emit(ctx, UserChannel(c.Owner), events.CollectionUpdate{
			CollectionID: c.Id,
			Removed:      post.Id,
		}, nil)
	}
}

func (n *Notifier) UserBanned(ctx context.Context, username string) {
	n.emit(ctx, "", events.UserBanned{Username: username}, nil)
}

// Flagged reaches the moderators queue and the flagger's own sessions, so
// the flagged post disappears from their view right away.
func (n *Notifier) Flagged(ctx context.Context, f flags.Flag) {
	e := events.FlagNotification{
		FlagID:   f.ID,
		PostID:   f.PostID,
		PostType: f.PostType,
		Reason:   string(f.Reason),
	}
	n.emit(ctx, realtime.MODERATORS, e, nil)
	n.emit(ctx, UserChannel(f.FlaggedBy), e, nil)
}

// CommentCreated goes to the question channel; each client filters it with
// the same visibility rules used on fetch. parents run from the question down
// to the direct parent, shadowed names the shadow-banned authors among them.
func (n *Notifier) CommentCreated(ctx context.Context, c content.Post, parents content.Posts, shadowed map[string]bool) {
	r := restriction(c, shadowed)
	for _, p := range parents {
		r.Parents = append(r.Parents, restriction(p, shadowed))
	}
	n.emit(ctx, PostChannel(c.QuestionID.Hex()), events.CommentUpdate{
		CommentID:  c.Id,
		ParentID:   c.ParentID,
		ParentType: c.ParentKind,
		QuestionID: c.QuestionID,
		Author:     c.Author,
		Body:       c.Body,
	}, &r)
}

// Questions flagged by the viewer stay visible on fetch, answers and
// comments do not.
func restriction(p content.Post, shadowed map[string]bool) realtime.Restriction {
	r := realtime.Restriction{Author: p.Author, AuthorShadowed: shadowed[p.Author], Removed: p.Removed}
	if p.Kind == content.QUESTION {
		return r
	}
	for _, f := range p.Flags {
		r.FlaggedBy = append(r.FlaggedBy, f.FlaggedBy)
	}
	return r
}

func (n *Notifier) emit(ctx context.Context, channel string, e events.Event, r *realtime.Restriction) {
	if err := n.hub.Publish(ctx, channel, e, r); err != nil {
		failures.WithLabelValues(e.Name()).Inc()
		log.Warningf("could not enqueue %s for channel %q: %v", e.Name(), channel, err)
	}
}

func PostChannel(questionID string) string {
	return "post:" + questionID
}

func CollectionChannel(id string) string {
	return "collection:" + id
}

func UserChannel(username string) string {
	return realtime.USER_PREFIX + username
}
