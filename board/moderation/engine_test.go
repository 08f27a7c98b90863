package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tryanzu/overflow/board/audit"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/propagation"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/board/visibility"
	"github.com/tryanzu/overflow/core/config"
	"gopkg.in/mgo.v2/bson"
)

type notified struct {
	mu       sync.Mutex
	removed  []content.Post
	affected [][]collections.Collection
	banned   []string
	flagged  []flags.Flag
}

func (n *notified) ContentRemoved(ctx context.Context, post content.Post, affected []collections.Collection) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removed = append(n.removed, post)
	n.affected = append(n.affected, affected)
}

func (n *notified) UserBanned(ctx context.Context, username string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.banned = append(n.banned, username)
}

func (n *notified) Flagged(ctx context.Context, f flags.Flag) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.flagged = append(n.flagged, f)
}

type brokenHistory struct{ users.Store }

func (brokenHistory) PullActivity(bson.ObjectId) (int, error) {
	return 0, errors.New("connection reset")
}

type fixture struct {
	engine   *Engine
	posts    *content.Memory
	ledger   *flags.Memory
	people   *users.Memory
	cols     *collections.Memory
	audit    *audit.Memory
	notified *notified
	reported []error

	question content.Post
	answer   content.Post
	saved    collections.Collection
}

func setup(opts ...func(*Options)) *fixture {
	fx := &fixture{
		posts:    content.NewMemory(),
		ledger:   flags.NewMemory(),
		people:   users.NewMemory(),
		cols:     collections.NewMemory(),
		audit:    audit.NewMemory(),
		notified: &notified{},
	}
	for _, name := range []string{"user123", "user456", "mod1", "alice", "bob"} {
		So(fx.people.Insert(&users.User{UserName: name}), ShouldBeNil)
	}
	now := time.Now()
	fx.question = content.Post{Kind: content.QUESTION, Author: "alice", Title: "How?", Body: "body"}
	So(fx.posts.Insert(&fx.question), ShouldBeNil)
	fx.answer = content.Post{Kind: content.ANSWER, Author: "bob", Body: "like this", QuestionID: fx.question.Id, ParentID: fx.question.Id, ParentKind: content.QUESTION}
	So(fx.posts.Insert(&fx.answer), ShouldBeNil)
	So(fx.posts.AddChild(fx.question.Ref(), fx.answer.Ref(), now), ShouldBeNil)
	So(fx.people.PushActivity("alice", users.Activity{PostID: fx.question.Id, Kind: content.QUESTION, Created: now}), ShouldBeNil)

	fx.saved = collections.Collection{Owner: "user456", Name: "c1", Public: true}
	So(fx.cols.Insert(&fx.saved), ShouldBeNil)
	So(fx.cols.Save(fx.saved.Id, fx.question.Ref(), now), ShouldBeNil)

	o := Options{
		Moderators: config.NewAllowlist("mod1"),
		Posts:      fx.posts,
		Flags:      fx.ledger,
		Users:      fx.people,
		Propagator: propagation.New(fx.cols, fx.people, fx.posts),
		Notifier:   fx.notified,
		Audit:      fx.audit,
		Report: func(err error) {
			fx.reported = append(fx.reported, err)
		},
	}
	for _, fn := range opts {
		fn(&o)
	}
	fx.engine = New(o)
	return fx
}

func (fx *fixture) flag(post content.Post, by string) flags.Flag {
	s, err := fx.engine.SubmitFlag(context.Background(), FlagRequest{
		PostID:    post.Id.Hex(),
		PostType:  string(post.Kind),
		Reason:    "spam",
		FlaggedBy: by,
	})
	So(err, ShouldBeNil)
	return s.Flag
}

func TestSubmitFlag(t *testing.T) {
	ctx := context.Background()

	Convey("Given a question", t, func() {
		fx := setup()

		Convey("a valid flag is pending and queued for moderators", func() {
			f := fx.flag(fx.question, "user456")
			So(f.Status, ShouldEqual, flags.PENDING)

			pending, err := fx.engine.PendingFlags("mod1")
			So(err, ShouldBeNil)
			So(pending, ShouldHaveLength, 1)
			So(pending[0].ID, ShouldEqual, f.ID)
			So(pending[0].Status, ShouldEqual, flags.PENDING)

			post, _ := fx.posts.FindId(content.QUESTION, fx.question.Id)
			So(post.Flags, ShouldHaveLength, 1)
			So(post.FlaggedBy("user456"), ShouldBeTrue)
			So(fx.notified.flagged, ShouldHaveLength, 1)

			Convey("the queue is stable across calls", func() {
				again, _ := fx.engine.PendingFlags("mod1")
				So(again, ShouldResemble, pending)
			})
		})

		Convey("a second flag by the same user is merged", func() {
			first := fx.flag(fx.question, "user456")
			s, err := fx.engine.SubmitFlag(ctx, FlagRequest{PostID: fx.question.Id.Hex(), PostType: "question", Reason: "other", FlaggedBy: "user456"})
			So(err, ShouldBeNil)
			So(s.Duplicate, ShouldBeTrue)
			So(s.Flag.ID, ShouldEqual, first.ID)

			pending, _ := fx.engine.PendingFlags("mod1")
			So(pending, ShouldHaveLength, 1)
			So(fx.notified.flagged, ShouldHaveLength, 1)
		})

		Convey("invalid requests are rejected without side effects", func() {
			cases := []FlagRequest{
				{PostType: "question", Reason: "spam", FlaggedBy: "user456"},
				{PostID: fx.question.Id.Hex(), Reason: "spam", FlaggedBy: "user456"},
				{PostID: fx.question.Id.Hex(), PostType: "question", FlaggedBy: "user456"},
				{PostID: fx.question.Id.Hex(), PostType: "question", Reason: "spam"},
				{PostID: fx.question.Id.Hex(), PostType: "question", Reason: "rude", FlaggedBy: "user456"},
				{PostID: fx.question.Id.Hex(), PostType: "poll", Reason: "spam", FlaggedBy: "user456"},
				{PostID: "nope", PostType: "question", Reason: "spam", FlaggedBy: "user456"},
			}
			for _, r := range cases {
				_, err := fx.engine.SubmitFlag(ctx, r)
				var verr *ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
			}
			pending, _ := fx.engine.PendingFlags("mod1")
			So(pending, ShouldBeEmpty)
		})

		Convey("unknown posts are not found", func() {
			_, err := fx.engine.SubmitFlag(ctx, FlagRequest{PostID: bson.NewObjectId().Hex(), PostType: "answer", Reason: "spam", FlaggedBy: "user456"})
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Resolved, ShouldBeFalse)
		})

		Convey("banned users cannot flag", func() {
			_, err := fx.engine.BanUser(ctx, "user456", "mod1")
			So(err, ShouldBeNil)
			_, err = fx.engine.SubmitFlag(ctx, FlagRequest{PostID: fx.question.Id.Hex(), PostType: "question", Reason: "spam", FlaggedBy: "user456"})
			var aerr *AccountError
			So(errors.As(err, &aerr), ShouldBeTrue)
			So(aerr.Shadow, ShouldBeFalse)
		})

		Convey("the daily limit is enforced", func() {
			fx := setup(func(o *Options) { o.DailyFlagLimit = 2 })
			for i := 0; i < 2; i++ {
				p := content.Post{Kind: content.QUESTION, Author: "alice", Title: "q", Body: "b"}
				So(fx.posts.Insert(&p), ShouldBeNil)
				fx.flag(p, "user456")
			}
			_, err := fx.engine.SubmitFlag(ctx, FlagRequest{PostID: fx.question.Id.Hex(), PostType: "question", Reason: "spam", FlaggedBy: "user456"})
			So(err, ShouldEqual, ErrFlagLimit)
		})
	})
}

func TestReviewFlag(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pending flag", t, func() {
		fx := setup()
		f := fx.flag(fx.answer, "user456")

		Convey("non moderators are refused and nothing changes", func() {
			_, err := fx.engine.ReviewFlag(ctx, f.ID.Hex(), "user456")
			So(err, ShouldEqual, ErrNotAuthorized)
			stored, _ := fx.ledger.FindId(f.ID)
			So(stored.Status, ShouldEqual, flags.PENDING)
			So(fx.audit.Entries(), ShouldBeEmpty)

			_, err = fx.engine.PendingFlags("user456")
			So(err, ShouldEqual, ErrNotAuthorized)
			_, err = fx.engine.GetFlag(f.ID.Hex(), "user456")
			So(err, ShouldEqual, ErrNotAuthorized)
		})

		Convey("a moderator reviews it exactly once", func() {
			msg, err := fx.engine.ReviewFlag(ctx, f.ID.Hex(), "mod1")
			So(err, ShouldBeNil)
			So(msg, ShouldEqual, "Flag "+f.ID.Hex()+" has been reviewed")

			stored, err := fx.engine.GetFlag(f.ID.Hex(), "mod1")
			So(err, ShouldBeNil)
			So(stored.Status, ShouldEqual, flags.REVIEWED)
			So(stored.ReviewedBy, ShouldEqual, "mod1")
			So(stored.ReviewedAt, ShouldNotBeNil)

			_, err = fx.engine.ReviewFlag(ctx, f.ID.Hex(), "mod1")
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Resolved, ShouldBeTrue)

			pending, _ := fx.engine.PendingFlags("mod1")
			So(pending, ShouldBeEmpty)
		})

		Convey("concurrent reviews have a single winner", func() {
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := fx.engine.ReviewFlag(ctx, f.ID.Hex(), "mod1"); err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			So(wins, ShouldEqual, 1)
		})

		Convey("unknown flags are not found", func() {
			_, err := fx.engine.ReviewFlag(ctx, bson.NewObjectId().Hex(), "mod1")
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Resolved, ShouldBeFalse)
		})
	})
}

func TestResolveFlag(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pending flag on an answer", t, func() {
		fx := setup()
		f := fx.flag(fx.answer, "user456")

		Convey("resolving with ban bans the author once", func() {
			_, err := fx.engine.ResolveFlag(ctx, f.ID.Hex(), "mod1", "ban-user")
			So(err, ShouldBeNil)
			banned, _ := fx.engine.IsUserBanned("bob")
			So(banned, ShouldBeTrue)

			stored, _ := fx.ledger.FindId(f.ID)
			So(stored.Status, ShouldEqual, flags.REJECTED)
			So(stored.Action, ShouldEqual, flags.BAN)

			_, err = fx.engine.ResolveFlag(ctx, f.ID.Hex(), "mod1", "ban-user")
			So(err, ShouldNotBeNil)
			So(fx.notified.banned, ShouldResemble, []string{"bob"})
		})

		Convey("resolving with delete removes the answer", func() {
			_, err := fx.engine.ResolveFlag(ctx, f.ID.Hex(), "mod1", "delete-post")
			So(err, ShouldBeNil)
			answer, _ := fx.posts.FindId(content.ANSWER, fx.answer.Id)
			So(answer.Removed, ShouldBeTrue)
			question, _ := fx.posts.FindId(content.QUESTION, fx.question.Id)
			So(question.Answers, ShouldBeEmpty)
		})

		Convey("shadow banning emits nothing public", func() {
			_, err := fx.engine.ResolveFlag(ctx, f.ID.Hex(), "mod1", "shadow-ban-user")
			So(err, ShouldBeNil)
			bob, _ := fx.people.FindName("bob")
			So(bob.ShadowBanned, ShouldBeTrue)
			So(fx.notified.banned, ShouldBeEmpty)
			So(fx.notified.removed, ShouldBeEmpty)
		})

		Convey("account actions whose author cannot be found leave the flag pending", func() {
			orphan := content.Post{Kind: content.ANSWER, Author: "ghost", Body: "spam", QuestionID: fx.question.Id, ParentID: fx.question.Id, ParentKind: content.QUESTION}
			So(fx.posts.Insert(&orphan), ShouldBeNil)
			g := fx.flag(orphan, "user123")

			_, err := fx.engine.ResolveFlag(ctx, g.ID.Hex(), "mod1", "ban-user")
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Kind, ShouldEqual, "user")

			stored, _ := fx.ledger.FindId(g.ID)
			So(stored.Status, ShouldEqual, flags.PENDING)
			So(stored.Action, ShouldNotEqual, flags.BAN)
			So(fx.notified.banned, ShouldBeEmpty)

			for _, entry := range fx.audit.Entries() {
				So(entry.RelatedID, ShouldNotEqual, g.ID.Hex())
			}
		})

		Convey("unknown actions are rejected", func() {
			_, err := fx.engine.ResolveFlag(ctx, f.ID.Hex(), "mod1", "none")
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			stored, _ := fx.ledger.FindId(f.ID)
			So(stored.Status, ShouldEqual, flags.PENDING)
		})
	})
}

func TestUserActions(t *testing.T) {
	ctx := context.Background()

	Convey("Given moderator mod1", t, func() {
		fx := setup()

		Convey("banning user123", func() {
			msg, err := fx.engine.BanUser(ctx, "user123", "mod1")
			So(err, ShouldBeNil)
			So(msg, ShouldEqual, "User user123 has been banned")

			banned, err := fx.engine.IsUserBanned("user123")
			So(err, ShouldBeNil)
			So(banned, ShouldBeTrue)
			So(fx.notified.banned, ShouldResemble, []string{"user123"})
			So(fx.audit.Entries()[0].Action, ShouldEqual, "ban")

			Convey("and unbanning again", func() {
				msg, err := fx.engine.UnbanUser(ctx, "user123", "mod1")
				So(err, ShouldBeNil)
				So(msg, ShouldEqual, "User user123 has been unbanned")
				banned, _ := fx.engine.IsUserBanned("user123")
				So(banned, ShouldBeFalse)
			})
		})

		Convey("shadow ban toggles", func() {
			_, err := fx.engine.ShadowBanUser(ctx, "user123", "mod1")
			So(err, ShouldBeNil)
			u, _ := fx.people.FindName("user123")
			So(u.ShadowBanned, ShouldBeTrue)
			_, err = fx.engine.UnshadowBanUser(ctx, "user123", "mod1")
			So(err, ShouldBeNil)
			u, _ = fx.people.FindName("user123")
			So(u.ShadowBanned, ShouldBeFalse)
		})

		Convey("non moderators cannot touch accounts", func() {
			_, err := fx.engine.BanUser(ctx, "user123", "user456")
			So(err, ShouldEqual, ErrNotAuthorized)
			banned, _ := fx.engine.IsUserBanned("user123")
			So(banned, ShouldBeFalse)
			So(fx.notified.banned, ShouldBeEmpty)
		})

		Convey("unknown users are not found", func() {
			_, err := fx.engine.BanUser(ctx, "ghost", "mod1")
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			_, err = fx.engine.IsUserBanned("ghost")
			So(errors.As(err, &nf), ShouldBeTrue)
		})
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	Convey("Given a question saved in collection c1", t, func() {
		fx := setup()

		Convey("user456 is not authorized and the post stays", func() {
			_, err := fx.engine.DeletePost(ctx, fx.question.Id.Hex(), "question", "user456")
			So(err, ShouldEqual, ErrNotAuthorized)
			So(err.Error(), ShouldEqual, "User is not authorized to perform this action")
			q, _ := fx.posts.FindId(content.QUESTION, fx.question.Id)
			So(q.Removed, ShouldBeFalse)
			c1, _ := fx.cols.FindId(fx.saved.Id)
			So(c1.Has(fx.question.Id), ShouldBeTrue)
		})

		Convey("mod1 deletes it", func() {
			pending := fx.flag(fx.question, "user456")
			msg, err := fx.engine.DeletePost(ctx, fx.question.Id.Hex(), "question", "mod1")
			So(err, ShouldBeNil)
			So(msg, ShouldEqual, "Post "+fx.question.Id.Hex()+" has been deleted")

			Convey("the collection no longer holds it", func() {
				c1, _ := fx.cols.FindId(fx.saved.Id)
				So(c1.Has(fx.question.Id), ShouldBeFalse)
			})

			Convey("the author's history no longer holds it", func() {
				alice, _ := fx.people.FindName("alice")
				So(alice.Activity, ShouldBeEmpty)
			})

			Convey("non moderators no longer see it", func() {
				list, _ := fx.posts.FindQuestions(content.NEWEST, 0, 10)
				viewer := visibility.New(visibility.Viewer{Username: "user456"}, nil)
				So(viewer.Posts(list), ShouldBeEmpty)
				mod := visibility.New(visibility.Viewer{Username: "mod1", Moderator: true}, nil)
				So(mod.Posts(list), ShouldHaveLength, 1)
			})

			Convey("its pending flags are closed", func() {
				f, _ := fx.ledger.FindId(pending.ID)
				So(f.Status, ShouldEqual, flags.REJECTED)
				So(f.Action, ShouldEqual, flags.DELETE)
			})

			Convey("followers are told once, after the commit", func() {
				So(fx.notified.removed, ShouldHaveLength, 1)
				So(fx.notified.removed[0].Removed, ShouldBeTrue)
				So(fx.notified.affected[0], ShouldHaveLength, 1)
				So(fx.notified.affected[0][0].Id, ShouldEqual, fx.saved.Id)
			})

			Convey("deleting again reports it as already handled", func() {
				_, err := fx.engine.DeletePost(ctx, fx.question.Id.Hex(), "question", "mod1")
				var nf *NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Resolved, ShouldBeTrue)
				So(fx.notified.removed, ShouldHaveLength, 1)
			})
		})

		Convey("an unknown post is not found", func() {
			_, err := fx.engine.DeletePost(ctx, bson.NewObjectId().Hex(), "answer", "mod1")
			var nf *NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
		})
	})

	Convey("Given a history store that fails", t, func() {
		fx := setup()
		fx.engine.propagator = propagation.New(fx.cols, brokenHistory{fx.people}, fx.posts)
		fx.flag(fx.question, "user456")

		msg, err := fx.engine.DeletePost(ctx, fx.question.Id.Hex(), "question", "mod1")

		Convey("the removal stays committed and the failure is surfaced", func() {
			So(msg, ShouldNotBeEmpty)
			var perr *propagation.Error
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Steps(), ShouldResemble, []string{propagation.StepActivity})
			So(err.Error(), ShouldContainSubstring, "propagation incomplete")
			So(fx.reported, ShouldHaveLength, 1)

			q, _ := fx.posts.FindId(content.QUESTION, fx.question.Id)
			So(q.Removed, ShouldBeTrue)
			c1, _ := fx.cols.FindId(fx.saved.Id)
			So(c1.Has(fx.question.Id), ShouldBeFalse)
			So(fx.notified.removed, ShouldHaveLength, 1)
		})

		Convey("repropagating once the store is back repairs the histories", func() {
			fx.engine.propagator = propagation.New(fx.cols, fx.people, fx.posts)
			res, err := fx.engine.Repropagate(ctx, fx.question.Id.Hex(), "question", "mod1")
			So(err, ShouldBeNil)
			So(res.Histories, ShouldEqual, 1)
			alice, _ := fx.people.FindName("alice")
			So(alice.Activity, ShouldBeEmpty)
		})
	})
}
