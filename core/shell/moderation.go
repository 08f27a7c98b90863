package shell

import (
	"context"
	"errors"

	"github.com/tryanzu/overflow/board/propagation"
)

func (con Console) pending(ctx context.Context, args []string, out printer) error {
	list, err := con.Engine.PendingFlags(con.Moderator)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		out.Println("No pending flags.")
		return nil
	}
	for _, f := range list {
		out.Printf("%s\t%s\t%s %s\t%s\tby %s\n", f.ID.Hex(), f.Created.Format("2006-01-02 15:04"), f.PostType, f.PostID.Hex(), f.Reason, f.FlaggedBy)
	}
	return nil
}

func (con Console) review(ctx context.Context, args []string, out printer) error {
	msg, err := con.Engine.ReviewFlag(ctx, args[0], con.Moderator)
	if err != nil {
		return err
	}
	out.Println(msg)
	return nil
}

func (con Console) resolve(ctx context.Context, args []string, out printer) error {
	msg, err := con.Engine.ResolveFlag(ctx, args[0], con.Moderator, args[1])
	if err != nil {
		return err
	}
	out.Println(msg)
	return nil
}

func (con Console) delete(ctx context.Context, args []string, out printer) error {
	msg, err := con.Engine.DeletePost(ctx, args[1], args[0], con.Moderator)
	var partial *propagation.Error
	if errors.As(err, &partial) {
		out.Println(msg)
		out.Printf("cascade incomplete, failed steps: %v. Run repropagate %s %s\n", partial.Steps(), args[0], args[1])
		return nil
	}
	if err != nil {
		return err
	}
	out.Println(msg)
	return nil
}

func (con Console) repropagate(ctx context.Context, args []string, out printer) error {
	res, err := con.Engine.Repropagate(ctx, args[1], args[0], con.Moderator)
	if err != nil {
		return err
	}
	out.Printf("%d collections and %d histories updated, detached from parent: %v\n", len(res.Collections), res.Histories, res.Detached)
	return nil
}

func (con Console) account(action func(ctx context.Context, username, moderator string) (string, error)) func(context.Context, []string, printer) error {
	return func(ctx context.Context, args []string, out printer) error {
		msg, err := action(ctx, args[0], con.Moderator)
		if err != nil {
			return err
		}
		out.Println(msg)
		return nil
	}
}
