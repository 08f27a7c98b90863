package shell

import (
	"context"
	"fmt"

	"github.com/abiosoft/ishell"
	"github.com/tryanzu/overflow/board/moderation"
)

type printer interface {
	Println(val ...interface{})
	Printf(format string, val ...interface{})
}

// Console runs moderation commands on behalf of a moderator.
type Console struct {
	Engine    *moderation.Engine
	Moderator string
}

type command struct {
	name string
	help string
	args int
	fn   func(ctx context.Context, args []string, out printer) error
}

func (con Console) commands() []command {
	return []command{
		{"pending", "List pending flags, oldest first.", 0, con.pending},
		{"review", "review <flagId>: close a flag with no violation found.", 1, con.review},
		{"resolve", "resolve <flagId> <delete-post|ban-user|shadow-ban-user>", 2, con.resolve},
		{"delete", "delete <question|answer|comment> <id>", 2, con.delete},
		{"repropagate", "repropagate <question|answer|comment> <id>: repair an incomplete removal.", 2, con.repropagate},
		{"ban", "ban <username>", 1, con.account(con.Engine.BanUser)},
		{"unban", "unban <username>", 1, con.account(con.Engine.UnbanUser)},
		{"shadowban", "shadowban <username>", 1, con.account(con.Engine.ShadowBanUser)},
		{"unshadowban", "unshadowban <username>", 1, con.account(con.Engine.UnshadowBanUser)},
	}
}

// Exec runs a single command line already split in words.
func (con Console) Exec(ctx context.Context, name string, args []string, out printer) error {
	for _, cmd := range con.commands() {
		if cmd.name != name {
			continue
		}
		if len(args) != cmd.args {
			return fmt.Errorf("usage: %s", cmd.help)
		}
		return cmd.fn(ctx, args, out)
	}
	return fmt.Errorf("unknown command %q", name)
}

// RunShell starts the interactive console.
func (con Console) RunShell() {
	shell := ishell.New()
	shell.Println("Overflow moderation shell, acting as", con.Moderator)

	for _, cmd := range con.commands() {
		cmd := cmd
		shell.AddCmd(&ishell.Cmd{
			Name: cmd.name,
			Help: cmd.help,
			Func: func(c *ishell.Context) {
				c.ShowPrompt(false)
				defer c.ShowPrompt(true)
				if err := con.Exec(context.Background(), cmd.name, c.Args, c); err != nil {
					c.Println("error:", err)
				}
			},
		})
	}

	shell.Run()
}
