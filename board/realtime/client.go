package realtime

import (
	"strings"
	"sync"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/tryanzu/overflow/board/visibility"
)

type conn interface {
	ID() string
	Write(data string)
}

// Client is a connected socket and the channels it listens to.
type Client struct {
	hub  *Hub
	conn conn

	mu       sync.RWMutex
	user     string
	channels map[string]struct{}
}

func newClient(h *Hub, c conn) *Client {
	return &Client{hub: h, conn: c, channels: map[string]struct{}{}}
}

func (c *Client) handle(e socketEvent) {
	switch e.Event {
	case "auth":
		token, exists := e.Params["token"].(string)
		if !exists {
			log.Warning("could not authenticate socket client: missing token")
			return
		}
		username, err := c.hub.verify(token)
		if err != nil {
			log.Warningf("could not parse socket client token: %v", err)
			c.conn.Write(socketEvent{Event: "auth:error"}.encode())
			return
		}
		c.mu.Lock()
		c.user = username
		c.mu.Unlock()
		c.conn.Write(socketEvent{
			Event: "auth:my",
			Params: map[string]interface{}{
				"username":  username,
				"moderator": c.hub.moderators.Has(username),
			},
		}.encode())
	case "auth:clean":
		c.mu.Lock()
		c.user = ""
		delete(c.channels, MODERATORS)
		c.mu.Unlock()
		c.conn.Write(socketEvent{Event: "auth:cleaned"}.encode())
	case "listen":
		channel, exists := e.Params["chan"].(string)
		if !exists || channel == "" {
			log.Warning("could not join channel: missing id")
			return
		}
		c.mu.Lock()
		if channel == MODERATORS && !c.hub.moderators.Has(c.user) {
			c.mu.Unlock()
			c.conn.Write(socketEvent{Event: "listen:denied", Params: map[string]interface{}{"chan": channel}}.encode())
			return
		}
		c.channels[channel] = struct{}{}
		c.mu.Unlock()
		c.conn.Write(socketEvent{Event: "listen:ready", Params: map[string]interface{}{"chan": channel}}.encode())
	case "unlisten":
		channel, exists := e.Params["chan"].(string)
		if !exists {
			log.Warning("could not remove channel: missing id")
			return
		}
		c.mu.Lock()
		delete(c.channels, channel)
		c.mu.Unlock()
		c.conn.Write(socketEvent{Event: "unlisten:ready", Params: map[string]interface{}{"chan": channel}}.encode())
	}
}

func (c *Client) send(packed []M) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	viewer := visibility.Viewer{Username: c.user, Moderator: c.hub.moderators.Has(c.user)}
	for _, m := range packed {
		if !c.receives(viewer, m.Channel) {
			continue
		}
		if r := m.Restrict; r != nil && !r.Allows(viewer) {
			continue
		}
		c.conn.Write(m.Content)
	}
}

func (c *Client) receives(viewer visibility.Viewer, channel string) bool {
	switch {
	case channel == "":
		return true
	case strings.HasPrefix(channel, USER_PREFIX):
		return viewer.Username != "" && channel[len(USER_PREFIX):] == viewer.Username
	case channel == MODERATORS:
		if !viewer.Moderator {
			return false
		}
	}
	_, listening := c.channels[channel]
	return listening
}

func (h *Hub) verify(token string) (string, error) {
	signed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := signed.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrInvalidKey
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", jwt.ErrInvalidKey
	}
	return username, nil
}
