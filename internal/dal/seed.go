package dal

import (
	"context"
	"time"

	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/posting"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/deps"
)

// Demo users created besides the moderators.
var Demo = []string{"alice", "bob", "carol"}

// Seed bootstraps a board with moderator accounts, demo users, a question
// with an answer and comment, and a public collection saving the question.
// Running it twice only adds a second question.
func Seed(ctx context.Context, s deps.Stores, moderators []string) error {
	for _, name := range append(append([]string{}, moderators...), Demo...) {
		err := s.Users.Insert(&users.User{UserName: name})
		if err != nil && err != users.ErrTaken {
			return err
		}
	}

	pub := posting.NewPublisher(s.Posts, s.Users, nil, nil)
	q, err := pub.Ask(ctx, "alice", "How do I revert a pushed commit?", "I pushed a commit to main by mistake, how do I undo it?")
	if err != nil {
		return err
	}
	a, err := pub.Answer(ctx, "bob", q.Id.Hex(), "Use git revert <sha>, it creates a new commit undoing the change.")
	if err != nil {
		return err
	}
	if _, err := pub.Comment(ctx, "alice", a.Id.Hex(), "answer", "Thanks, that worked."); err != nil {
		return err
	}

	c := collections.Collection{Owner: "carol", Name: "Git", Public: true, Followers: []string{"alice"}}
	if err := s.Collections.Insert(&c); err != nil {
		return err
	}
	return s.Collections.Save(c.Id, q.Ref(), time.Now())
}
