package shell

import (
	"context"
	"fmt"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/flags"
	"github.com/tryanzu/overflow/board/moderation"
	"github.com/tryanzu/overflow/board/propagation"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/core/config"
)

type buffer struct {
	strings.Builder
}

func (b *buffer) Println(val ...interface{}) {
	b.WriteString(fmt.Sprintln(val...))
}

func (b *buffer) Printf(format string, val ...interface{}) {
	b.WriteString(fmt.Sprintf(format, val...))
}

func TestConsole(t *testing.T) {
	ctx := context.Background()

	Convey("Given a console for mod1", t, func() {
		posts := content.NewMemory()
		people := users.NewMemory()
		cols := collections.NewMemory()
		So(people.Insert(&users.User{UserName: "bob"}), ShouldBeNil)
		engine := moderation.New(moderation.Options{
			Moderators: config.NewAllowlist("mod1"),
			Posts:      posts,
			Flags:      flags.NewMemory(),
			Users:      people,
			Propagator: propagation.New(cols, people, posts),
		})
		con := Console{Engine: engine, Moderator: "mod1"}
		out := &buffer{}

		Convey("an empty queue says so", func() {
			So(con.Exec(ctx, "pending", nil, out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "No pending flags.")
		})

		Convey("ban prints the engine message", func() {
			So(con.Exec(ctx, "ban", []string{"bob"}, out), ShouldBeNil)
			So(out.String(), ShouldEqual, "User bob has been banned\n")
		})

		Convey("pending lists submitted flags", func() {
			p := content.Post{Kind: content.ANSWER, Author: "bob", Body: "b"}
			So(posts.Insert(&p), ShouldBeNil)
			s, err := engine.SubmitFlag(ctx, moderation.FlagRequest{PostID: p.Id.Hex(), PostType: "answer", Reason: "spam", FlaggedBy: "bob"})
			So(err, ShouldBeNil)
			So(con.Exec(ctx, "pending", nil, out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, s.Flag.ID.Hex())
		})

		Convey("wrong arity prints usage", func() {
			err := con.Exec(ctx, "resolve", []string{"only-one"}, out)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "usage:")
		})

		Convey("a console for a non moderator is refused", func() {
			other := Console{Engine: engine, Moderator: "bob"}
			So(other.Exec(ctx, "ban", []string{"bob"}, out), ShouldEqual, moderation.ErrNotAuthorized)
		})
	})
}
