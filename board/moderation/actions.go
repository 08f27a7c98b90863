package moderation

import (
	"context"
	"fmt"

	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/propagation"
	"github.com/tryanzu/overflow/board/users"
)

// StepFlags is the cascade step closing pending flags of a removed post.
const StepFlags = "flags"

// BanUser forbids the user from publishing anything.
func (e *Engine) BanUser(ctx context.Context, username, moderator string) (msg string, err error) {
	defer func() { observe("ban", err) }()
	if username == "" {
		return "", missing("username")
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	if err = e.ban(ctx, username, moderator); err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s has been banned", username), nil
}

func (e *Engine) UnbanUser(ctx context.Context, username, moderator string) (msg string, err error) {
	defer func() { observe("unban", err) }()
	if username == "" {
		return "", missing("username")
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	if err = e.setBanned(username, false); err != nil {
		return "", err
	}
	e.record(moderator, "unban", "user", username)
	log.Infof("user %s unbanned by %s", username, moderator)
	return fmt.Sprintf("User %s has been unbanned", username), nil
}

// ShadowBanUser hides the user's content from everybody else. Nothing is
// broadcast, the user is never told.
func (e *Engine) ShadowBanUser(ctx context.Context, username, moderator string) (msg string, err error) {
	defer func() { observe("shadow-ban", err) }()
	if username == "" {
		return "", missing("username")
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	if err = e.shadow(username, moderator, true); err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s has been shadow banned", username), nil
}

func (e *Engine) UnshadowBanUser(ctx context.Context, username, moderator string) (msg string, err error) {
	defer func() { observe("unshadow-ban", err) }()
	if username == "" {
		return "", missing("username")
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	if err = e.shadow(username, moderator, false); err != nil {
		return "", err
	}
	return fmt.Sprintf("User %s is no longer shadow banned", username), nil
}

// IsUserBanned answers the content-creation gate question.
func (e *Engine) IsUserBanned(username string) (bool, error) {
	if username == "" {
		return false, missing("username")
	}
	banned, err := e.users.Banned(username)
	if err == users.ErrNotFound {
		return false, &NotFoundError{Kind: "user", ID: username}
	} else if err != nil {
		return false, persistence("find user", err)
	}
	return banned, nil
}

// DeletePost removes a post and cascades the removal. A *propagation.Error
// means the post is removed but some references may survive; running
// Repropagate repairs them.
func (e *Engine) DeletePost(ctx context.Context, id, kind, moderator string) (msg string, err error) {
	defer func() { observe("delete", err) }()
	ref, err := postRef(id, kind)
	if err != nil {
		return "", err
	}
	if err = e.authorize(moderator); err != nil {
		return "", err
	}
	msg = fmt.Sprintf("Post %s has been deleted", ref.ID.Hex())
	if _, err = e.remove(ctx, ref, moderator); err != nil {
		if _, partial := err.(*propagation.Error); partial {
			return msg, err
		}
		return "", err
	}
	return msg, nil
}

// Repropagate runs the cascade again for an already removed post.
func (e *Engine) Repropagate(ctx context.Context, id, kind, moderator string) (propagation.Result, error) {
	ref, err := postRef(id, kind)
	if err != nil {
		return propagation.Result{}, err
	}
	if err := e.authorize(moderator); err != nil {
		return propagation.Result{}, err
	}
	post, err := e.posts.FindId(ref.Kind, ref.ID)
	if err == content.ErrNotFound {
		return propagation.Result{}, &NotFoundError{Kind: string(ref.Kind), ID: ref.ID.Hex()}
	} else if err != nil {
		return propagation.Result{}, persistence("find post", err)
	}
	if !post.Removed {
		return propagation.Result{}, invalid("id", "post has not been removed")
	}
	e.record(moderator, "repropagate", string(ref.Kind), ref.ID.Hex())
	return e.cascade(post, moderator)
}

func (e *Engine) remove(ctx context.Context, ref content.Ref, moderator string) (content.Post, error) {
	post, err := e.posts.FindId(ref.Kind, ref.ID)
	if err == content.ErrNotFound {
		return content.Post{}, &NotFoundError{Kind: string(ref.Kind), ID: ref.ID.Hex()}
	} else if err != nil {
		return content.Post{}, persistence("find post", err)
	}
	at := e.now()
	err = e.posts.MarkRemoved(ref, moderator, at)
	if err == content.ErrNotFound {
		// Removed concurrently, the other request owns the cascade.
		return content.Post{}, &NotFoundError{Kind: string(ref.Kind), ID: ref.ID.Hex(), Resolved: true}
	} else if err != nil {
		return content.Post{}, persistence("remove post", err)
	}
	post.Removed = true
	post.RemovedBy = moderator
	post.RemovedAt = &at
	e.record(moderator, "delete", string(ref.Kind), ref.ID.Hex())
	log.Infof("%s %s removed by %s", ref.Kind, ref.ID.Hex(), moderator)

	res, err := e.cascade(post, moderator)
	e.notify.ContentRemoved(ctx, post, res.Collections)
	return post, err
}

// cascade closes pending flags and propagates the removal. Every step runs;
// failures come back together.
func (e *Engine) cascade(post content.Post, moderator string) (propagation.Result, error) {
	var failed []propagation.StepError
	closed, err := e.ledger.ResolvePending(post.Id, flags.Resolution{By: moderator, At: e.now(), Action: flags.DELETE})
	if err != nil {
		log.Errorf("propagation step %s failed for %s %s: %v", StepFlags, post.Kind, post.Id.Hex(), err)
		failed = append(failed, propagation.StepError{Step: StepFlags, Err: err})
	} else if closed > 0 {
		log.Infof("%d pending flags on %s %s closed", closed, post.Kind, post.Id.Hex())
	}

	res, err := e.propagator.Run(post)
	if perr, ok := err.(*propagation.Error); ok {
		failed = append(failed, perr.Failures...)
	} else if err != nil {
		failed = append(failed, propagation.StepError{Step: "cascade", Err: err})
	}
	if len(failed) == 0 {
		return res, nil
	}
	for _, f := range failed {
		propagationFailures.WithLabelValues(f.Step).Inc()
	}
	perr := &propagation.Error{PostID: post.Id, Failures: failed}
	e.report(perr)
	return res, perr
}

func (e *Engine) ban(ctx context.Context, username, moderator string) error {
	if err := e.setBanned(username, true); err != nil {
		return err
	}
	e.record(moderator, "ban", "user", username)
	log.Infof("user %s banned by %s", username, moderator)
	e.notify.UserBanned(ctx, username)
	return nil
}

func (e *Engine) setBanned(username string, banned bool) error {
	err := e.users.SetBanned(username, banned, e.now())
	if err == users.ErrNotFound {
		return &NotFoundError{Kind: "user", ID: username}
	} else if err != nil {
		return persistence("update user", err)
	}
	return nil
}

func (e *Engine) shadow(username, moderator string, on bool) error {
	err := e.users.SetShadowBanned(username, on)
	if err == users.ErrNotFound {
		return &NotFoundError{Kind: "user", ID: username}
	} else if err != nil {
		return persistence("update user", err)
	}
	action := "shadow-ban"
	if !on {
		action = "unshadow-ban"
	}
	e.record(moderator, action, "user", username)
	log.Infof("user %s %s by %s", username, action, moderator)
	return nil
}
