package client

import (
	"context"
	"encoding/json"
	"fmt"

	"personal/discord_go/src/entity"
	"personal/discord_go/src/gateway"
)

// Every handler writes the cache before it notifies listeners.
func (c *Client) registerHandlers(t *gateway.DispatchTable) {
	t.Register("READY", c.onReady)
	t.Register("RESUMED", c.onResumed)

	t.Register("GUILD_CREATE", c.onGuildCreate)
	t.Register("GUILD_UPDATE", c.onGuildUpdate)
	t.Register("GUILD_DELETE", c.onGuildDelete)

	t.Register("CHANNEL_CREATE", c.channelHandler(EventChannelCreate))
	t.Register("CHANNEL_UPDATE", c.channelUpdateHandler(EventChannelUpdate))
	t.Register("CHANNEL_DELETE", c.channelDeleteHandler(EventChannelDelete))
	t.Register("THREAD_CREATE", c.channelHandler(EventThreadCreate))
	t.Register("THREAD_UPDATE", c.channelUpdateHandler(EventThreadUpdate))
	t.Register("THREAD_DELETE", c.channelDeleteHandler(EventThreadDelete))

	t.Register("MESSAGE_CREATE", c.messageHandler(EventMessageCreate))
	t.Register("MESSAGE_UPDATE", c.messageHandler(EventMessageUpdate))
	t.Register("MESSAGE_DELETE", c.onMessageDelete)

	t.Register("APPLICATION_COMMAND_CREATE", c.commandHandler(EventApplicationCommandCreate, EventSlashCommandCreate, false))
	t.Register("APPLICATION_COMMAND_UPDATE", c.commandHandler(EventApplicationCommandUpdate, EventSlashCommandUpdate, false))
	t.Register("APPLICATION_COMMAND_DELETE", c.commandHandler(EventApplicationCommandDelete, EventSlashCommandDelete, true))
}

func decode[T any](ev gateway.Event) (T, error) {
	var v T
	if err := json.Unmarshal(ev.Data, &v); err != nil {
		return v, fmt.Errorf("could not unmarshal %s: %w", ev.Name, err)
	}
	return v, nil
}

// lookupGuild resolves a referenced guild, going to the API on a cache miss.
func (c *Client) lookupGuild(ctx context.Context, id *entity.Snowflake) (*entity.Guild, error) {
	if id == nil {
		return nil, nil
	}
	g, err := c.Guild(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("%w: guild %s: %w", gateway.ErrAuxiliaryLookup, *id, err)
	}
	return g, nil
}

func (c *Client) onReady(ctx context.Context, ev gateway.Event) error {
	p, err := decode[readyPayload](ev)
	if err != nil {
		return err
	}

	c.mu.Lock()
	user := p.User
	c.user = &user
	c.applicationID = p.Application.ID
	c.mu.Unlock()
	c.users.Set(string(p.User.ID), p.User)

	ids := make([]entity.Snowflake, 0, len(p.Guilds))
	for _, g := range p.Guilds {
		if _, ok := c.guilds.Get(string(g.ID)); !ok {
			c.guilds.Set(string(g.ID), g)
		}
		ids = append(ids, g.ID)
	}

	c.logger.Info("ready", "shard", ev.Shard, "user", p.User.Tag(), "guilds", len(ids))
	c.notify(ctx, ev, EventReady, ReadyEvent{SessionID: p.SessionID, User: p.User, Guilds: ids})
	return nil
}

func (c *Client) onResumed(ctx context.Context, ev gateway.Event) error {
	c.notify(ctx, ev, EventResumed)
	return nil
}

func (c *Client) onGuildCreate(ctx context.Context, ev gateway.Event) error {
	p, err := decode[entity.GuildPayload](ev)
	if err != nil {
		return err
	}
	guild := c.storeGuild(p)
	c.notify(ctx, ev, EventGuildCreate, guild)
	return nil
}

func (c *Client) onGuildUpdate(ctx context.Context, ev gateway.Event) error {
	p, err := decode[entity.GuildPayload](ev)
	if err != nil {
		return err
	}

	var before *entity.Guild
	if old, ok := c.guilds.Get(string(p.ID)); ok {
		before = entity.NewGuild(c, old)
	}
	after := c.storeGuild(p)
	c.notify(ctx, ev, EventGuildUpdate, GuildUpdateEvent{Before: before, After: after})
	return nil
}

// onGuildDelete handles both leaving a guild and a guild becoming unavailable
// during an outage. Only the former removes it from the cache.
func (c *Client) onGuildDelete(ctx context.Context, ev gateway.Event) error {
	p, err := decode[guildDeletePayload](ev)
	if err != nil {
		return err
	}

	if p.Unavailable {
		old, ok := c.guilds.Get(string(p.ID))
		if !ok {
			old = entity.GuildPayload{ID: p.ID}
		}
		old.Unavailable = true
		c.guilds.Set(string(p.ID), old)
		c.notify(ctx, ev, EventGuildUnavailable, entity.NewGuild(c, old))
		return nil
	}

	old, ok := c.forgetGuild(p.ID)
	if !ok {
		old = entity.GuildPayload{ID: p.ID}
	}
	c.notify(ctx, ev, EventGuildDelete, entity.NewGuild(c, old))
	return nil
}

func (c *Client) decodeChannelEvent(ctx context.Context, p entity.ChannelPayload) (entity.Channel, error) {
	guild, err := c.lookupGuild(ctx, p.GuildID)
	if err != nil {
		return nil, err
	}
	return entity.DecodeChannel(c, p, guild)
}

func (c *Client) channelHandler(name string) gateway.HandlerFunc {
	return func(ctx context.Context, ev gateway.Event) error {
		p, err := decode[entity.ChannelPayload](ev)
		if err != nil {
			return err
		}
		ch, err := c.decodeChannelEvent(ctx, p)
		if err != nil {
			return err
		}
		c.channels.Set(string(p.ID), p)
		c.notify(ctx, ev, name, ch)
		return nil
	}
}

func (c *Client) channelUpdateHandler(name string) gateway.HandlerFunc {
	return func(ctx context.Context, ev gateway.Event) error {
		p, err := decode[entity.ChannelPayload](ev)
		if err != nil {
			return err
		}
		after, err := c.decodeChannelEvent(ctx, p)
		if err != nil {
			return err
		}

		var before entity.Channel
		if old, ok := c.channels.Get(string(p.ID)); ok {
			before, _ = c.decodeChannelEvent(ctx, old)
		}
		c.channels.Set(string(p.ID), p)
		c.notify(ctx, ev, name, ChannelUpdateEvent{Before: before, After: after})
		return nil
	}
}

// THREAD_DELETE only carries id, guild_id, parent_id and type, so the cached
// payload is preferred when there is one.
func (c *Client) channelDeleteHandler(name string) gateway.HandlerFunc {
	return func(ctx context.Context, ev gateway.Event) error {
		p, err := decode[entity.ChannelPayload](ev)
		if err != nil {
			return err
		}
		if old, ok := c.channels.Delete(string(p.ID)); ok {
			p = old
		}
		ch, err := c.decodeChannelEvent(ctx, p)
		if err != nil {
			return err
		}
		c.notify(ctx, ev, name, ch)
		return nil
	}
}

func (c *Client) messageHandler(name string) gateway.HandlerFunc {
	return func(ctx context.Context, ev gateway.Event) error {
		p, err := decode[entity.MessagePayload](ev)
		if err != nil {
			return err
		}

		ch, err := c.Channel(ctx, p.ChannelID)
		if err != nil {
			return fmt.Errorf("%w: channel %s: %w", gateway.ErrAuxiliaryLookup, p.ChannelID, err)
		}
		text, _ := ch.(entity.TextBased)

		if p.Author.ID != "" {
			c.users.Set(string(p.Author.ID), p.Author)
		}
		if name == EventMessageCreate {
			if cp, ok := c.channels.Get(string(p.ChannelID)); ok {
				id := p.ID
				cp.LastMessageID = &id
				c.channels.Set(string(p.ChannelID), cp)
			}
		}

		c.notify(ctx, ev, name, entity.NewMessage(c, p, text))
		return nil
	}
}

func (c *Client) onMessageDelete(ctx context.Context, ev gateway.Event) error {
	p, err := decode[entity.MessageDeletePayload](ev)
	if err != nil {
		return err
	}
	c.notify(ctx, ev, EventMessageDelete, p)
	return nil
}

// commandHandler emits the legacy alias first, then the current name.
func (c *Client) commandHandler(name, alias string, remove bool) gateway.HandlerFunc {
	return func(ctx context.Context, ev gateway.Event) error {
		p, err := decode[entity.ApplicationCommandPayload](ev)
		if err != nil {
			return err
		}
		guild, err := c.lookupGuild(ctx, p.GuildID)
		if err != nil {
			return err
		}
		cmd, err := entity.DecodeCommand(c, p, guild)
		if err != nil {
			return err
		}

		if remove {
			c.commands.Delete(string(p.ID))
		} else {
			c.commands.Set(string(p.ID), p)
		}

		c.notify(ctx, ev, alias, cmd)
		c.notify(ctx, ev, name, cmd)
		return nil
	}
}
