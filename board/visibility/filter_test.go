package visibility

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

func post(kind content.Kind, author string) content.Post {
	return content.Post{Id: bson.NewObjectId(), Kind: kind, Author: author, Flags: []content.FlagRef{}}
}

func TestTreeFilter(t *testing.T) {
	Convey("Given a question tree", t, func() {
		q := post(content.QUESTION, "alice")
		flagged := post(content.ANSWER, "bob")
		flagged.Flags = []content.FlagRef{{ID: bson.NewObjectId(), FlaggedBy: "carol", Reason: "spam"}}
		removed := post(content.ANSWER, "bob")
		removed.Removed = true
		shadow := post(content.COMMENT, "sam")
		plain := post(content.COMMENT, "dave")

		tree := content.Tree{
			Question: q,
			Comments: content.Posts{shadow, plain},
			Answers: []content.AnswerNode{
				{Answer: flagged, Comments: content.Posts{}},
				{Answer: removed, Comments: content.Posts{plain}},
			},
		}
		shadowed := map[string]bool{"sam": true}

		Convey("a regular viewer", func() {
			out, ok := New(Viewer{Username: "erin"}, shadowed).Tree(tree)
			So(ok, ShouldBeTrue)
			So(out.Comments, ShouldHaveLength, 1)
			So(out.Comments[0].Id, ShouldEqual, plain.Id)
			So(out.Answers, ShouldHaveLength, 1)
			So(out.Answers[0].Answer.Id, ShouldEqual, flagged.Id)
		})

		Convey("the flagger no longer sees what they flagged", func() {
			out, _ := New(Viewer{Username: "carol"}, shadowed).Tree(tree)
			So(out.Answers, ShouldBeEmpty)
		})

		Convey("a shadow-banned author still sees their own content", func() {
			out, _ := New(Viewer{Username: "sam"}, shadowed).Tree(tree)
			So(out.Comments, ShouldHaveLength, 2)
		})

		Convey("moderators see removed and shadowed content", func() {
			out, _ := New(Viewer{Username: "mod1", Moderator: true}, shadowed).Tree(tree)
			So(out.Comments, ShouldHaveLength, 2)
			So(out.Answers, ShouldHaveLength, 2)
		})

		Convey("a removed question hides the whole tree", func() {
			tree.Question.Removed = true
			_, ok := New(Viewer{Username: "erin"}, shadowed).Tree(tree)
			So(ok, ShouldBeFalse)
		})

		Convey("filtering is pure", func() {
			New(Viewer{Username: "erin"}, shadowed).Tree(tree)
			So(tree.Comments, ShouldHaveLength, 2)
			So(tree.Answers, ShouldHaveLength, 2)
		})
	})
}

func TestSees(t *testing.T) {
	Convey("Sees applies removal before authorship", t, func() {
		v := Viewer{Username: "sam"}
		So(v.Sees("sam", true, false), ShouldBeTrue)
		So(v.Sees("sam", true, true), ShouldBeFalse)
		So(Viewer{}.Sees("sam", true, false), ShouldBeFalse)
		So(Viewer{}.Sees("sam", false, false), ShouldBeTrue)
	})
}
