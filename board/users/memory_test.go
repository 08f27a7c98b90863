package users

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tryanzu/overflow/board/content"
	"gopkg.in/mgo.v2/bson"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given two users with activity on a shared post", t, func() {
		s := NewMemory()
		So(s.Insert(&User{UserName: "user123"}), ShouldBeNil)
		So(s.Insert(&User{UserName: "user456"}), ShouldBeNil)
		So(s.Insert(&User{UserName: "user123"}), ShouldEqual, ErrTaken)

		post := bson.NewObjectId()
		keep := bson.NewObjectId()
		So(s.PushActivity("user123", Activity{PostID: post, Kind: content.QUESTION, Created: time.Now()}), ShouldBeNil)
		So(s.PushActivity("user123", Activity{PostID: keep, Kind: content.ANSWER, Created: time.Now()}), ShouldBeNil)
		So(s.PushActivity("user456", Activity{PostID: post, Kind: content.QUESTION, Created: time.Now()}), ShouldBeNil)

		Convey("pulling the post cleans every history", func() {
			n, err := s.PullActivity(post)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			u, _ := s.FindName("user123")
			So(u.Activity, ShouldHaveLength, 1)
			So(u.Activity[0].PostID, ShouldEqual, keep)

			n, _ = s.PullActivity(post)
			So(n, ShouldEqual, 0)
		})

		Convey("ban flags toggle", func() {
			So(s.SetBanned("user123", true, time.Now()), ShouldBeNil)
			banned, err := s.Banned("user123")
			So(err, ShouldBeNil)
			So(banned, ShouldBeTrue)

			So(s.SetBanned("user123", false, time.Now()), ShouldBeNil)
			banned, _ = s.Banned("user123")
			So(banned, ShouldBeFalse)

			So(s.SetShadowBanned("user456", true), ShouldBeNil)
			list, _ := s.FindNames([]string{"user123", "user456", "ghost"})
			So(list, ShouldHaveLength, 2)
			So(list.Shadowed(), ShouldResemble, map[string]bool{"user456": true})
		})

		Convey("unknown users are reported", func() {
			So(s.SetBanned("ghost", true, time.Now()), ShouldEqual, ErrNotFound)
			_, err := s.Banned("ghost")
			So(err, ShouldEqual, ErrNotFound)
		})
	})
}
