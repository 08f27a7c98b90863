package propagation

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tryanzu/overflow/board/collections"
	"github.com/tryanzu/overflow/board/content"
	"github.com/tryanzu/overflow/board/users"
	"gopkg.in/mgo.v2/bson"
)

var errDown = errors.New("store unavailable")

type brokenCollections struct{}

func (brokenCollections) RemovePost(bson.ObjectId) ([]collections.Collection, error) {
	return nil, errDown
}

func TestPropagator(t *testing.T) {
	Convey("Given an answer saved in a collection and present in a history", t, func() {
		posts := content.NewMemory()
		cols := collections.NewMemory()
		people := users.NewMemory()
		now := time.Now()

		q := content.Post{Kind: content.QUESTION, Author: "alice", Title: "t", Body: "b"}
		So(posts.Insert(&q), ShouldBeNil)
		a := content.Post{Kind: content.ANSWER, Author: "bob", Body: "a", QuestionID: q.Id, ParentID: q.Id, ParentKind: content.QUESTION}
		So(posts.Insert(&a), ShouldBeNil)
		So(posts.AddChild(q.Ref(), a.Ref(), now), ShouldBeNil)

		So(people.Insert(&users.User{UserName: "bob"}), ShouldBeNil)
		So(people.PushActivity("bob", users.Activity{PostID: a.Id, Kind: content.ANSWER, Created: now}), ShouldBeNil)

		c := collections.Collection{Owner: "carol", Name: "keep"}
		So(cols.Insert(&c), ShouldBeNil)
		So(cols.Save(c.Id, a.Ref(), now), ShouldBeNil)

		Convey("every step runs", func() {
			res, err := New(cols, people, posts).Run(a)
			So(err, ShouldBeNil)
			So(res.Collections, ShouldHaveLength, 1)
			So(res.Histories, ShouldEqual, 1)
			So(res.Detached, ShouldBeTrue)

			saved, _ := cols.FindId(c.Id)
			So(saved.Has(a.Id), ShouldBeFalse)
			bob, _ := people.FindName("bob")
			So(bob.Activity, ShouldBeEmpty)
			parent, _ := posts.FindId(content.QUESTION, q.Id)
			So(parent.Answers, ShouldBeEmpty)

			Convey("and running again is harmless", func() {
				res, err := New(cols, people, posts).Run(a)
				So(err, ShouldBeNil)
				So(res.Collections, ShouldBeEmpty)
				So(res.Histories, ShouldEqual, 0)
			})
		})

		Convey("a failing step does not stop the others", func() {
			res, err := New(brokenCollections{}, people, posts).Run(a)
			So(err, ShouldNotBeNil)

			var perr *Error
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Steps(), ShouldResemble, []string{StepCollections})
			So(err.Error(), ShouldContainSubstring, "propagation incomplete")
			So(errors.Is(err, errDown), ShouldBeTrue)

			So(res.Histories, ShouldEqual, 1)
			So(res.Detached, ShouldBeTrue)
		})
	})
}
