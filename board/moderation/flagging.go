package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kennygrant/sanitize"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/users"
	"gopkg.in/mgo.v2/bson"
)

// MaxDetails is the longest accepted flag details text.
const MaxDetails = 255

// FlagRequest as received from a client.
type FlagRequest struct {
	PostID    string
	PostType  string
	Reason    string
	FlaggedBy string
	Details   string
}

// Submission is the recorded flag. Duplicate is set when the user already
// had a pending flag on the post, in which case that flag is returned.
type Submission struct {
	Flag      flags.Flag `json:"flag"`
	Duplicate bool       `json:"duplicate"`
}

// SubmitFlag records a new pending flag on a post.
func (e *Engine) SubmitFlag(ctx context.Context, r FlagRequest) (Submission, error) {
	if r.FlaggedBy == "" {
		return Submission{}, missing("flaggedBy")
	}
	ref, err := postRef(r.PostID, r.PostType)
	if err != nil {
		return Submission{}, err
	}
	if r.Reason == "" {
		return Submission{}, missing("reason")
	}
	reason, ok := flags.ParseReason(r.Reason)
	if !ok {
		return Submission{}, invalid("reason", "is not a recognized reason")
	}
	details := strings.TrimSpace(sanitize.HTML(r.Details))
	if utf8.RuneCountInString(details) > MaxDetails {
		return Submission{}, invalid("details", fmt.Sprintf("must be at most %d characters", MaxDetails))
	}

	usr, err := e.users.FindName(r.FlaggedBy)
	if err == users.ErrNotFound {
		return Submission{}, &NotFoundError{Kind: "user", ID: r.FlaggedBy}
	} else if err != nil {
		return Submission{}, persistence("find user", err)
	}
	if usr.Banned || usr.ShadowBanned {
		return Submission{}, &AccountError{Username: usr.UserName, Shadow: !usr.Banned}
	}

	post, err := e.posts.FindId(ref.Kind, ref.ID)
	if err == content.ErrNotFound {
		return Submission{}, &NotFoundError{Kind: string(ref.Kind), ID: ref.ID.Hex()}
	} else if err != nil {
		return Submission{}, persistence("find post", err)
	}
	if post.Removed {
		return Submission{}, &NotFoundError{Kind: string(ref.Kind), ID: ref.ID.Hex(), Resolved: true}
	}

	existing, err := e.ledger.FindPendingBy(ref.ID, r.FlaggedBy)
	if err == nil {
		return Submission{Flag: existing, Duplicate: true}, nil
	} else if err != flags.ErrNotFound {
		return Submission{}, persistence("find pending flag", err)
	}

	today, err := e.ledger.CountSince(r.FlaggedBy, flags.StartOfDay(e.now()))
	if err != nil {
		return Submission{}, persistence("count flags", err)
	}
	if today >= e.limit {
		return Submission{}, ErrFlagLimit
	}

	f := flags.Flag{
		PostID:    ref.ID,
		PostType:  ref.Kind,
		FlaggedBy: r.FlaggedBy,
		Reason:    reason,
		Details:   details,
		Created:   e.now(),
	}
	if err := e.ledger.Insert(&f); err != nil {
		return Submission{}, persistence("insert flag", err)
	}
	if err := e.posts.PushFlag(ref, f.Embedded()); err != nil {
		return Submission{}, persistence("append flag to post", err)
	}
	flagsSubmitted.WithLabelValues(string(reason)).Inc()
	log.Infof("flag %s submitted by %s on %s %s reason=%s", f.ID.Hex(), f.FlaggedBy, ref.Kind, ref.ID.Hex(), reason)

	e.notify.Flagged(ctx, f)
	return Submission{Flag: f}, nil
}

// PendingFlags is the moderators queue, oldest first.
func (e *Engine) PendingFlags(moderator string) ([]flags.Flag, error) {
	if err := e.authorize(moderator); err != nil {
		return nil, err
	}
	list, err := e.ledger.Pending()
	if err != nil {
		return nil, persistence("list pending flags", err)
	}
	return list, nil
}

func (e *Engine) GetFlag(id, moderator string) (flags.Flag, error) {
	if err := e.authorize(moderator); err != nil {
		return flags.Flag{}, err
	}
	fid, err := objectId("flagId", id)
	if err != nil {
		return flags.Flag{}, err
	}
	f, err := e.ledger.FindId(fid)
	if err == flags.ErrNotFound {
		return flags.Flag{}, &NotFoundError{Kind: "flag", ID: id}
	} else if err != nil {
		return flags.Flag{}, persistence("find flag", err)
	}
	return f, nil
}

// ReviewFlag closes a flag with no violation found.
func (e *Engine) ReviewFlag(ctx context.Context, id, moderator string) (msg string, err error) {
	defer func() { observe("review", err) }()
	fid, err := objectId("flagId", id)
	if err != nil {
		return "", err
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	f, err := e.transition(fid, flags.REVIEWED, flags.NONE, moderator)
	if err != nil {
		return "", err
	}
	e.record(moderator, "review-flag", "flag", f.ID.Hex())
	log.Infof("flag %s reviewed by %s", f.ID.Hex(), moderator)
	return fmt.Sprintf("Flag %s has been reviewed", f.ID.Hex()), nil
}

// ResolveFlag rejects a flag as a violation and applies action. Account
// actions look up the author before anything changes; the flag transition
// then happens first, so a second resolution can never apply the action
// again.
func (e *Engine) ResolveFlag(ctx context.Context, id, moderator, action string) (msg string, err error) {
	defer func() { observe("resolve", err) }()
	fid, err := objectId("flagId", id)
	if err != nil {
		return "", err
	}
	if action == "" {
		return "", missing("action")
	}
	act, ok := flags.ParseAction(action)
	if !ok {
		return "", invalid("action", "must be one of delete-post, ban-user, shadow-ban-user")
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	var author string
	if act == flags.BAN || act == flags.SHADOW_BAN {
		if author, err = e.flaggedAuthor(fid); err != nil {
			return "", err
		}
	}
	f, err := e.transition(fid, flags.REJECTED, act, moderator)
	if err != nil {
		return "", err
	}
	e.record(moderator, "resolve-flag:"+string(act), "flag", f.ID.Hex())
	log.Infof("flag %s resolved by %s with %s", f.ID.Hex(), moderator, act)

	switch act {
	case flags.DELETE:
		_, err = e.remove(ctx, f.Post(), moderator)
		var nf *NotFoundError
		if errors.As(err, &nf) && nf.Resolved {
			return fmt.Sprintf("Flag %s has been resolved, post was already removed", f.ID.Hex()), nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Flag %s has been resolved, post deleted", f.ID.Hex()), nil
	case flags.BAN, flags.SHADOW_BAN:
		if act == flags.BAN {
			err = e.ban(ctx, author, moderator)
		} else {
			err = e.shadow(author, moderator, true)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Flag %s has been resolved, user %s restricted", f.ID.Hex(), author), nil
	}
	panic("moderation: unhandled action " + string(act))
}

// flaggedAuthor finds the existing author of a still pending flag's post.
func (e *Engine) flaggedAuthor(fid bson.ObjectId) (string, error) {
	f, err := e.ledger.FindId(fid)
	if err == flags.ErrNotFound {
		return "", &NotFoundError{Kind: "flag", ID: fid.Hex()}
	} else if err != nil {
		return "", persistence("find flag", err)
	}
	if f.Status != flags.PENDING {
		return "", &NotFoundError{Kind: "flag", ID: fid.Hex(), Resolved: true}
	}
	post, err := e.posts.FindId(f.PostType, f.PostID)
	if err == content.ErrNotFound {
		return "", &NotFoundError{Kind: string(f.PostType), ID: f.PostID.Hex()}
	} else if err != nil {
		return "", persistence("find post", err)
	}
	if _, err := e.users.FindName(post.Author); err == users.ErrNotFound {
		return "", &NotFoundError{Kind: "user", ID: post.Author}
	} else if err != nil {
		return "", persistence("find user", err)
	}
	return post.Author, nil
}

func (e *Engine) transition(id bson.ObjectId, status flags.Status, act flags.Action, moderator string) (flags.Flag, error) {
	f, err := e.ledger.Transition(id, status, flags.Resolution{By: moderator, At: e.now(), Action: act})
	switch err {
	case nil:
		return f, nil
	case flags.ErrResolved:
		return flags.Flag{}, &NotFoundError{Kind: "flag", ID: id.Hex(), Resolved: true}
	case flags.ErrNotFound:
		return flags.Flag{}, &NotFoundError{Kind: "flag", ID: id.Hex()}
	}
	return flags.Flag{}, persistence("update flag", err)
}
