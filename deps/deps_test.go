package deps

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tryanzu/overflow/board/users"
	"github.com/tryanzu/overflow/core/config"
)

func withConfig(doc string) Ignitor {
	return func(d Deps) (Deps, error) {
		c, err := config.Parse(doc)
		if err != nil {
			return d, err
		}
		d.ConfigProvider = &c
		return d, nil
	}
}

func TestBootstrap(t *testing.T) {
	Convey("The memory driver needs no external service", t, func() {
		d, err := Bootstrap(withConfig("database:\n  driver: memory\n"), IgniteLogger, IgniteSentry, IgniteStores)
		So(err, ShouldBeNil)
		defer d.Close()
		So(d.Stores().Posts, ShouldNotBeNil)
		_, cached := d.Stores().Users.(*users.Cached)
		So(cached, ShouldBeFalse)
	})

	Convey("A ledis path wraps users with the ban cache", t, func() {
		doc := "database:\n  driver: memory\nledis:\n  path: " + t.TempDir() + "\n"
		d, err := Bootstrap(withConfig(doc), IgniteLedisDB, IgniteStores)
		So(err, ShouldBeNil)
		defer d.Close()
		_, cached := d.Stores().Users.(*users.Cached)
		So(cached, ShouldBeTrue)
	})

	Convey("Unknown drivers are refused", t, func() {
		_, err := Bootstrap(withConfig("database:\n  driver: cassandra\n"), IgniteStores)
		So(err, ShouldNotBeNil)
	})
}
