package main

import (
	"github.com/facebookgo/inject"
	"github.com/tryanzu/overflow/board/moderation"
	"github.com/tryanzu/overflow/board/notifications"
	"github.com/tryanzu/overflow/board/posting"
	"github.com/tryanzu/overflow/board/propagation"
	"github.com/tryanzu/overflow/board/realtime"
	"github.com/tryanzu/overflow/core/profanity"
	"github.com/tryanzu/overflow/deps"
	"github.com/tryanzu/overflow/modules/exceptions"
)

// board is every service assembled on top of the deps container.
type board struct {
	deps      deps.Deps
	hub       *realtime.Hub
	engine    *moderation.Engine
	publisher *posting.Publisher
	reader    *posting.Reader
	errors    *exceptions.ExceptionsModule
}

func boot(ignitors ...deps.Ignitor) (*board, error) {
	d, err := deps.Bootstrap(ignitors...)
	if err != nil {
		return nil, err
	}
	c := d.Config()
	s := d.Stores()
	errs := &exceptions.ExceptionsModule{ErrorService: d.Errors()}

	var relay realtime.Relay
	if client := d.Redis(); client != nil {
		relay = realtime.NewRedisRelay(client, c.Redis.Channel)
	}
	hub := realtime.New(realtime.Options{
		Secret:      []byte(c.Secret),
		Moderators:  c.Moderation.Moderators,
		Development: c.Development(),
		Relay:       relay,
	})
	notifier := notifications.New(hub)

	engine := moderation.New(moderation.Options{
		Moderators:     c.Moderation.Moderators,
		Posts:          s.Posts,
		Flags:          s.Flags,
		Users:          s.Users,
		Propagator:     propagation.New(s.Collections, s.Users, s.Posts),
		Notifier:       notifier,
		Audit:          s.Audit,
		DailyFlagLimit: c.Moderation.DailyFlagLimit,
		Report:         errs.Report,
	})
	if c.Moderation.Moderators.Len() == 0 {
		log.Warning("moderation.moderators is empty, every moderation request will be refused")
	}

	return &board{
		deps:      d,
		hub:       hub,
		engine:    engine,
		publisher: posting.NewPublisher(s.Posts, s.Users, profanity.New(c.Profanity.Words), notifier),
		reader:    posting.NewReader(s.Posts, s.Users, s.Collections, c.Moderation.Moderators),
		errors:    errs,
	}, nil
}

// graph provides the assembled services for injection.
func (b *board) graph() (*inject.Graph, error) {
	var g inject.Graph
	objects := []*inject.Object{
		{Value: b.deps.Config(), Complete: true},
		{Value: b.hub, Complete: true},
		{Value: b.engine, Complete: true},
		{Value: b.publisher, Complete: true},
		{Value: b.reader, Complete: true},
	}
	// Without a DSN errors are only logged.
	if client := b.deps.Errors(); client != nil {
		objects = append(objects, &inject.Object{Value: client, Complete: true})
	}
	err := g.Provide(objects...)
	return &g, err
}

func (b *board) Close() {
	b.hub.Close()
	b.deps.Close()
}
