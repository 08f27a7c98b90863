package deps

import (
	"gopkg.in/mgo.v2"
)

// IgniteMongoDB dials mongo unless the memory driver is selected.
func IgniteMongoDB(container Deps) (Deps, error) {
	c := container.Config().Database
	if c.Driver != "mongo" {
		return container, nil
	}
	session, err := mgo.Dial(c.URL)
	if err != nil {
		log.Errorf("could not dial mongo at %s: %v", c.URL, err)
		return container, err
	}
	// See https://godoc.org/gopkg.in/mgo.v2#Session.SetMode
	session.SetMode(mgo.Monotonic, true)

	container.DatabaseSessionProvider = session
	container.DatabaseProvider = session.DB(c.Name)
	return container, nil
}
