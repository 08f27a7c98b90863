package deps

import (
	"github.com/getsentry/raven-go"
)

// IgniteSentry builds the error reporting client. An empty DSN yields a
// client that drops every packet.
func IgniteSentry(container Deps) (Deps, error) {
	c := container.Config()
	client, err := raven.New(c.Sentry)
	if err != nil {
		return container, err
	}
	client.SetEnvironment(c.Environment)
	container.ErrorsProvider = client
	return container, nil
}
