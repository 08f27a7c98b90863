package content

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/mgo.v2/bson"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given a question with an answer and comments", t, func() {
		s := NewMemory()
		now := time.Now()
		q := Post{Kind: QUESTION, Author: "alice", Title: "t", Body: "b", Created: now}
		So(s.Insert(&q), ShouldBeNil)

		a := Post{Kind: ANSWER, Author: "bob", QuestionID: q.Id, ParentID: q.Id, ParentKind: QUESTION, Created: now.Add(time.Second)}
		So(s.Insert(&a), ShouldBeNil)
		So(s.AddChild(q.Ref(), a.Ref(), a.Created), ShouldBeNil)

		c1 := Post{Kind: COMMENT, Author: "carol", QuestionID: q.Id, ParentID: q.Id, ParentKind: QUESTION, Created: now.Add(2 * time.Second)}
		c2 := Post{Kind: COMMENT, Author: "dave", QuestionID: q.Id, ParentID: a.Id, ParentKind: ANSWER, Created: now.Add(3 * time.Second)}
		So(s.Insert(&c1), ShouldBeNil)
		So(s.Insert(&c2), ShouldBeNil)
		So(s.AddChild(q.Ref(), c1.Ref(), c1.Created), ShouldBeNil)
		So(s.AddChild(a.Ref(), c2.Ref(), c2.Created), ShouldBeNil)

		Convey("the tree nests comments under their parent", func() {
			tree, err := s.FindTree(q.Id)
			So(err, ShouldBeNil)
			So(tree.Comments, ShouldHaveLength, 1)
			So(tree.Comments[0].Id, ShouldEqual, c1.Id)
			So(tree.Answers, ShouldHaveLength, 1)
			So(tree.Answers[0].Comments[0].Id, ShouldEqual, c2.Id)
			So(tree.Flatten(), ShouldHaveLength, 4)
		})

		Convey("removal is conditional", func() {
			So(s.MarkRemoved(a.Ref(), "mod1", now), ShouldBeNil)
			So(s.MarkRemoved(a.Ref(), "mod1", now), ShouldEqual, ErrNotFound)
			So(s.MarkRemoved(Ref{ID: bson.NewObjectId(), Kind: ANSWER}, "mod1", now), ShouldEqual, ErrNotFound)

			got, _ := s.FindId(ANSWER, a.Id)
			So(got.Removed, ShouldBeTrue)
			So(got.RemovedBy, ShouldEqual, "mod1")
		})

		Convey("detaching a child is idempotent", func() {
			So(s.DetachChild(a.Ref(), c2.Ref()), ShouldBeNil)
			So(s.DetachChild(a.Ref(), c2.Ref()), ShouldBeNil)
			got, _ := s.FindId(ANSWER, a.Id)
			So(got.Comments, ShouldBeEmpty)
		})

		Convey("unanswered listing skips answered questions", func() {
			q2 := Post{Kind: QUESTION, Author: "erin", Created: now.Add(time.Minute)}
			So(s.Insert(&q2), ShouldBeNil)
			list, err := s.FindQuestions(UNANSWERED, 0, 10)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 1)
			So(list[0].Id, ShouldEqual, q2.Id)

			list, _ = s.FindQuestions(NEWEST, 0, 10)
			So(list[0].Id, ShouldEqual, q2.Id)

			list, _ = s.FindQuestions(ACTIVE, 0, 1)
			So(list, ShouldHaveLength, 1)
			So(list[0].Id, ShouldEqual, q2.Id)
		})

		Convey("embedded flags are appended", func() {
			So(s.PushFlag(a.Ref(), FlagRef{ID: bson.NewObjectId(), FlaggedBy: "carol", Reason: "spam"}), ShouldBeNil)
			got, _ := s.FindId(ANSWER, a.Id)
			So(got.FlaggedBy("carol"), ShouldBeTrue)
			So(got.FlaggedBy("dave"), ShouldBeFalse)
		})
	})
}

func TestParseKind(t *testing.T) {
	Convey("Kinds form a closed set", t, func() {
		k, ok := ParseKind("answer")
		So(ok, ShouldBeTrue)
		So(k, ShouldEqual, ANSWER)
		_, ok = ParseKind("poll")
		So(ok, ShouldBeFalse)
	})
}
