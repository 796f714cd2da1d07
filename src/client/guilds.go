package client

import (
	"context"
	"fmt"

	"personal/discord_go/src/entity"
)

// Guild returns the cached guild, fetching it on a miss.
func (c *Client) Guild(ctx context.Context, id entity.Snowflake) (*entity.Guild, error) {
	if p, ok := c.guilds.Get(string(id)); ok {
		return entity.NewGuild(c, p), nil
	}
	return c.FetchGuild(ctx, id)
}

func (c *Client) FetchGuild(ctx context.Context, id entity.Snowflake) (*entity.Guild, error) {
	var p entity.GuildPayload
	if err := c.rest.get(ctx, "/guilds/"+string(id), &p); err != nil {
		return nil, fmt.Errorf("could not fetch guild %s: %w", id, err)
	}
	return c.storeGuild(p), nil
}

func (c *Client) Guilds() []*entity.Guild {
	payloads := c.guilds.Values()
	out := make([]*entity.Guild, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, entity.NewGuild(c, p))
	}
	return out
}

// storeGuild caches the guild and every channel and thread inlined in it.
// The cached guild payload does not keep the inlined lists; the returned
// Guild does.
func (c *Client) storeGuild(p entity.GuildPayload) *entity.Guild {
	for _, list := range [][]entity.ChannelPayload{p.Channels, p.Threads} {
		for i := range list {
			if list[i].GuildID == nil {
				id := p.ID
				list[i].GuildID = &id
			}
			c.channels.Set(string(list[i].ID), list[i])
		}
	}

	stored := p
	stored.Channels = nil
	stored.Threads = nil
	c.guilds.Set(string(p.ID), stored)

	return entity.NewGuild(c, p)
}

// forgetGuild drops the guild and every cached channel belonging to it.
func (c *Client) forgetGuild(id entity.Snowflake) (entity.GuildPayload, bool) {
	for _, ch := range c.channels.Values() {
		if ch.GuildID != nil && *ch.GuildID == id {
			c.channels.Delete(string(ch.ID))
		}
	}
	return c.guilds.Delete(string(id))
}
