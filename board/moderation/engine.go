// Package moderation is the only writer of flag state. It validates and
// authorizes every request before touching a store, then runs the cascade
// and the notifications once the primary mutation is committed.
package moderation

import (
	"context"
	"time"

	"github.com/op/go-logging"
	"github.com/tryanzu/overflow/board/audit"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/propagation"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/core/config"
	"gopkg.in/mgo.v2/bson"
)

var log = logging.MustGetLogger("moderation")

// DefaultDailyFlagLimit applies when none is configured.
const DefaultDailyFlagLimit = 10

// Notifier receives committed outcomes.
type Notifier interface {
	ContentRemoved(ctx context.Context, post content.Post, affected []collections.Collection)
	UserBanned(ctx context.Context, username string)
	Flagged(ctx context.Context, f flags.Flag)
}

type cascade interface {
	Run(post content.Post) (propagation.Result, error)
}

// Options to build an Engine. Moderators, stores and Propagator are required.
type Options struct {
	Moderators     config.Allowlist
	Posts          content.Store
	Flags          flags.Ledger
	Users          users.Store
	Propagator     cascade
	Notifier       Notifier
	Audit          audit.Log
	DailyFlagLimit int
	// Report receives errors operators must be alerted about.
	Report func(error)
	Now    func() time.Time
}

type Engine struct {
	moderators config.Allowlist
	posts      content.Store
	ledger     flags.Ledger
	users      users.Store
	propagator cascade
	notify     Notifier
	audit      audit.Log
	limit      int
	report     func(error)
	now        func() time.Time
}

func New(o Options) *Engine {
	e := &Engine{
		moderators: o.Moderators,
		posts:      o.Posts,
		ledger:     o.Flags,
		users:      o.Users,
		propagator: o.Propagator,
		notify:     o.Notifier,
		audit:      o.Audit,
		limit:      o.DailyFlagLimit,
		report:     o.Report,
		now:        o.Now,
	}
	if e.limit <= 0 {
		e.limit = DefaultDailyFlagLimit
	}
	if e.notify == nil {
		e.notify = silent{}
	}
	if e.audit == nil {
		e.audit = audit.NewMemory()
	}
	if e.report == nil {
		e.report = func(error) {}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// IsModerator checks the allow-list.
func (e *Engine) IsModerator(username string) bool {
	return e.moderators.Has(username)
}

func (e *Engine) authorize(moderator string) error {
	if moderator == "" {
		return missing("moderatorUsername")
	}
	if !e.moderators.Has(moderator) {
		log.Warningf("rejected moderation request from %s", moderator)
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) record(moderator, action, related, id string) {
	err := e.audit.Record(audit.Entry{
		Moderator: moderator,
		Action:    action,
		Related:   related,
		RelatedID: id,
		Created:   e.now(),
	})
	if err != nil {
		log.Errorf("could not record audit entry %s on %s %s: %v", action, related, id, err)
	}
}

func objectId(field, hex string) (bson.ObjectId, error) {
	if hex == "" {
		return "", missing(field)
	}
	if !bson.IsObjectIdHex(hex) {
		return "", invalid(field, "is not a valid id")
	}
	return bson.ObjectIdHex(hex), nil
}

func postRef(id, kind string) (content.Ref, error) {
	oid, err := objectId("id", id)
	if err != nil {
		return content.Ref{}, err
	}
	if kind == "" {
		return content.Ref{}, missing("type")
	}
	k, ok := content.ParseKind(kind)
	if !ok {
		return content.Ref{}, invalid("type", "must be one of question, answer, comment")
	}
	return content.Ref{ID: oid, Kind: k}, nil
}

type silent struct{}

func (silent) ContentRemoved(context.Context, content.Post, []collections.Collection) {}
func (silent) UserBanned(context.Context, string)                                   {}
func (silent) Flagged(context.Context, flags.Flag)                                   {}
