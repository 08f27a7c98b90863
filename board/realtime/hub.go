// Package realtime keeps the connected socket clients and delivers events to
// them. Messages are buffered for a short window and then dispatched to every
// client, which decides on its own whether the message is for it.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/desertbit/glue"
	"github.com/op/go-logging"
	"github.com/tryanzu/overflow/board/events"
	"github.com/tryanzu/overflow/board/visibility"
	"github.com/tryanzu/overflow/core/config"
)

var log = logging.MustGetLogger("realtime")

var (
	// ErrBufferFull when the hub cannot take more messages.
	ErrBufferFull = errors.New("realtime buffer is full")
	// ErrClosed after Close.
	ErrClosed = errors.New("realtime hub is closed")
)

const (
	// BufferSize holds the queue size for the broadcasting channels.
	BufferSize = 100
	// FlushEvery is the buffering window before dispatching.
	FlushEvery = 60 * time.Millisecond
)

// Channel names with special delivery rules.
const (
	MODERATORS  = "moderators"
	USER_PREFIX = "user:"
)

// M holds a message to be delivered. An empty Channel broadcasts to every
// connected client.
type M struct {
	Channel  string       `json:"channel,omitempty"`
	Content  string       `json:"content"`
	Restrict *Restriction `json:"restrict,omitempty"`
}

// Restriction carries what the visibility rules need to decide, per client,
// whether a live update may be delivered. Parents are the posts the content
// hangs from, outermost first; each must be visible too.
type Restriction struct {
	Author         string        `json:"author"`
	AuthorShadowed bool          `json:"authorShadowed"`
	Removed        bool          `json:"removed"`
	FlaggedBy      []string      `json:"flaggedBy,omitempty"`
	Parents        []Restriction `json:"parents,omitempty"`
}

// Allows mirrors the fetch rules for viewer.
func (r Restriction) Allows(viewer visibility.Viewer) bool {
	if !viewer.Sees(r.Author, r.AuthorShadowed, r.Removed) {
		return false
	}
	if viewer.Username != "" {
		for _, name := range r.FlaggedBy {
			if name == viewer.Username {
				return false
			}
		}
	}
	for _, p := range r.Parents {
		if !p.Allows(viewer) {
			return false
		}
	}
	return true
}

// Options to build a hub.
type Options struct {
	Secret      []byte
	Moderators  config.Allowlist
	Development bool
	Relay       Relay
}

// Relay shares published messages between processes.
type Relay interface {
	Publish(ctx context.Context, m M) error
	Subscribe(ctx context.Context, fn func(M)) error
}

type Hub struct {
	server     *glue.Server
	sockets    sync.Map
	input      chan M
	dispatcher chan []M
	moderators config.Allowlist
	secret     []byte
	relay      Relay
	done       chan struct{}
	once       sync.Once
}

func New(opts Options) *Hub {
	h := &Hub{
		input:      make(chan M, BufferSize),
		dispatcher: make(chan []M, BufferSize),
		moderators: opts.Moderators,
		secret:     opts.Secret,
		relay:      opts.Relay,
		done:       make(chan struct{}),
	}
	options := glue.Options{
		HTTPSocketType: glue.HTTPSocketTypeNone,
	}
	if opts.Development {
		options.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
	h.server = glue.NewServer(options)
	h.server.OnNewSocket(h.onNewSocket)
	return h
}

// Start the buffering and dispatching workers, plus the relay subscription
// when one is configured.
func (h *Hub) Start(ctx context.Context) {
	go h.buffer()
	go h.dispatch()
	if h.relay == nil {
		return
	}
	go func() {
		err := h.relay.Subscribe(ctx, func(m M) {
			if err := h.enqueue(m); err != nil {
				log.Warningf("dropped relayed message for %q: %v", m.Channel, err)
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Errorf("relay subscription ended: %v", err)
		}
	}()
}

// Publish an event. With a relay the message travels through it and comes
// back through the subscription, so every process delivers it exactly once.
func (h *Hub) Publish(ctx context.Context, channel string, e events.Event, restrict *Restriction) error {
	content, err := events.Encode(e)
	if err != nil {
		return err
	}
	m := M{Channel: channel, Content: content, Restrict: restrict}
	if h.relay != nil {
		return h.relay.Publish(ctx, m)
	}
	return h.enqueue(m)
}

func (h *Hub) enqueue(m M) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}
	select {
	case h.input <- m:
		return nil
	default:
		droppedMessages.Inc()
		return ErrBufferFull
	}
}

func (h *Hub) buffer() {
	buffered := make([]M, 0, BufferSize)
	ticker := time.NewTicker(FlushEvery)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case m := <-h.input:
			buffered = append(buffered, m)
		case <-ticker.C:
			if len(buffered) == 0 {
				continue
			}
			log.Debugf("flushing buffer with %d items", len(buffered))
			h.dispatcher <- buffered
			buffered = make([]M, 0, BufferSize)
		}
	}
}

func (h *Hub) dispatch() {
	for {
		select {
		case <-h.done:
			return
		case pack := <-h.dispatcher:
			h.sockets.Range(func(k, v interface{}) bool {
				v.(*Client).send(pack)
				return true
			})
		}
	}
}

// ServeHTTP exposes the glue handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.server.ServeHTTP(w, r)
}

// Close stops the workers and releases every socket.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.done)
		h.server.Release()
	})
}

func (h *Hub) onNewSocket(s *glue.Socket) {
	client := h.attach(s)

	s.OnClose(func() {
		h.detach(client)
		log.Debugf("socket %s closed with remote address: %s", s.ID(), s.RemoteAddr())
	})

	s.OnRead(func(data string) {
		var event socketEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			log.Warningf("could not unmarshal read event from client: %v", err)
			return
		}
		client.handle(event)
	})
}

func (h *Hub) attach(c conn) *Client {
	client := newClient(h, c)
	c.Write(socketEvent{Event: "connected"}.encode())
	h.sockets.Store(c.ID(), client)
	connectedSockets.Inc()
	return client
}

func (h *Hub) detach(c *Client) {
	if _, loaded := h.sockets.LoadAndDelete(c.conn.ID()); loaded {
		connectedSockets.Dec()
	}
}

type socketEvent struct {
	Event  string                 `json:"event"`
	Params map[string]interface{} `json:"params,omitempty"`
}

func (ev socketEvent) encode() string {
	bytes, err := json.Marshal(ev)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}
