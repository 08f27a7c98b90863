package deps

import (
	lediscfg "github.com/siddontang/ledisdb/config"
	"github.com/siddontang/ledisdb/ledis"
)

// IgniteLedisDB opens the embedded ban cache when ledis.path is set.
func IgniteLedisDB(container Deps) (Deps, error) {
	path := container.Config().Ledis.Path
	if path == "" {
		return container, nil
	}
	conf := lediscfg.NewConfigDefault()
	conf.DataDir = path
	conn, err := ledis.Open(conf)
	if err != nil {
		return container, err
	}
	db, err := conn.Select(0)
	if err != nil {
		conn.Close()
		return container, err
	}
	container.ledisConn = conn
	container.LedisProvider = db
	return container, nil
}
