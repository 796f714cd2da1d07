package client

import (
	"context"
	"log/slog"
	"sync"

	"personal/discord_go/src/entity"
)

// Event names passed to On and carried by Notification.Name.
const (
	EventReady   = "ready"
	EventResumed = "resumed"

	EventGuildCreate      = "guildCreate"
	EventGuildUpdate      = "guildUpdate"
	EventGuildDelete      = "guildDelete"
	EventGuildUnavailable = "guildUnavailable"

	EventChannelCreate = "channelCreate"
	EventChannelUpdate = "channelUpdate"
	EventChannelDelete = "channelDelete"

	EventThreadCreate = "threadCreate"
	EventThreadUpdate = "threadUpdate"
	EventThreadDelete = "threadDelete"

	EventMessageCreate = "messageCreate"
	EventMessageUpdate = "messageUpdate"
	EventMessageDelete = "messageDelete"

	EventApplicationCommandCreate = "applicationCommandCreate"
	EventApplicationCommandUpdate = "applicationCommandUpdate"
	EventApplicationCommandDelete = "applicationCommandDelete"

	// Older names for the application command events, emitted alongside them.
	EventSlashCommandCreate = "slashCommandCreate"
	EventSlashCommandUpdate = "slashCommandUpdate"
	EventSlashCommandDelete = "slashCommandDelete"
)

type ReadyEvent struct {
	SessionID string
	User      entity.User
	Guilds    []entity.Snowflake
}

type GuildUpdateEvent struct {
	Before *entity.Guild // nil if the guild was not cached
	After  *entity.Guild
}

type ChannelUpdateEvent struct {
	Before entity.Channel // nil if the channel was not cached
	After  entity.Channel
}

// Notification is one emitted event. Args holds the decoded objects, in the
// order documented for each event name.
type Notification struct {
	Name  string
	Shard int
	Args  []any
}

// Arg returns Args[i], or nil when there is no such argument.
func (n Notification) Arg(i int) any {
	if i < 0 || i >= len(n.Args) {
		return nil
	}
	return n.Args[i]
}

type Listener func(ctx context.Context, n Notification)

type subscription struct {
	ch chan Notification
}

// Emitter delivers notifications synchronously, inside the dispatch
// handler that produced them, so listeners see events in sequence order.
type Emitter struct {
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[string][]Listener
	subs      map[*subscription]struct{}
}

func NewEmitter(logger *slog.Logger) *Emitter {
	return &Emitter{
		logger:    logger,
		listeners: make(map[string][]Listener),
		subs:      make(map[*subscription]struct{}),
	}
}

// On registers fn for name. Listeners run in registration order.
func (e *Emitter) On(name string, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[name] = append(e.listeners[name], fn)
}

// Subscribe returns a channel receiving every notification and a function
// that ends the subscription. A full channel blocks emission until the
// handler deadline passes, after which the notification is dropped for that
// subscriber.
func (e *Emitter) Subscribe(buffer int) (<-chan Notification, func()) {
	sub := &subscription{ch: make(chan Notification, buffer)}
	e.mu.Lock()
	e.subs[sub] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, sub)
			close(sub.ch)
			e.mu.Unlock()
		})
	}
}

func (e *Emitter) Emit(ctx context.Context, n Notification) {
	e.mu.RLock()
	listeners := append([]Listener(nil), e.listeners[n.Name]...)
	e.mu.RUnlock()

	for _, fn := range listeners {
		e.call(ctx, fn, n)
	}

	// Held while sending so an unsubscribe cannot close a channel mid-send.
	e.mu.RLock()
	defer e.mu.RUnlock()
	for sub := range e.subs {
		select {
		case sub.ch <- n:
		case <-ctx.Done():
			e.logger.Warn("subscriber too slow, dropping notification", "event", n.Name)
		}
	}
}

func (e *Emitter) call(ctx context.Context, fn Listener, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("listener panicked", "event", n.Name, "panic", r)
		}
	}()
	fn(ctx, n)
}
