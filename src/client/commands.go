package client

import (
	"context"
	"errors"
	"fmt"

	"personal/discord_go/src/entity"
)

var ErrNotReady = errors.New("client: no READY received yet")

// Commands decodes the application commands seen on the gateway.
func (c *Client) Commands(ctx context.Context) ([]*entity.ApplicationCommand, error) {
	payloads := c.commands.Values()
	out := make([]*entity.ApplicationCommand, 0, len(payloads))
	for _, p := range payloads {
		cmd, err := c.decodeCommand(ctx, p)
		if errors.Is(err, entity.ErrUnsupportedVariant) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

// FetchCommands lists the global commands of this application and caches them.
func (c *Client) FetchCommands(ctx context.Context) ([]*entity.ApplicationCommand, error) {
	app := c.ApplicationID()
	if app == "" {
		return nil, ErrNotReady
	}

	var payloads []entity.ApplicationCommandPayload
	if err := c.rest.get(ctx, "/applications/"+string(app)+"/commands", &payloads); err != nil {
		return nil, fmt.Errorf("could not fetch commands: %w", err)
	}

	out := make([]*entity.ApplicationCommand, 0, len(payloads))
	for _, p := range payloads {
		cmd, err := entity.DecodeCommand(c, p, nil)
		if err != nil {
			c.logger.Warn("skipping command", "command_id", p.ID, "error", err)
			continue
		}
		c.commands.Set(string(p.ID), p)
		out = append(out, cmd)
	}
	return out, nil
}

func (c *Client) decodeCommand(ctx context.Context, p entity.ApplicationCommandPayload) (*entity.ApplicationCommand, error) {
	var guild *entity.Guild
	if p.GuildID != nil {
		g, err := c.Guild(ctx, *p.GuildID)
		if err != nil {
			return nil, err
		}
		guild = g
	}
	return entity.DecodeCommand(c, p, guild)
}
