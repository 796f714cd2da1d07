package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"personal/discord_go/src/entity"
)

var ErrEmptyMessage = errors.New("client: either content or embeds is required")

// FetchChannel always asks the API and refreshes the cache.
func (c *Client) FetchChannel(ctx context.Context, id entity.Snowflake) (entity.Channel, error) {
	var p entity.ChannelPayload
	if err := c.rest.get(ctx, "/channels/"+string(id), &p); err != nil {
		return nil, fmt.Errorf("could not fetch channel %s: %w", id, err)
	}
	ch, err := c.decodeChannel(ctx, p)
	if err != nil {
		return nil, err
	}
	c.channels.Set(string(p.ID), p)
	return ch, nil
}

// Channel returns the cached channel, fetching it on a miss.
func (c *Client) Channel(ctx context.Context, id entity.Snowflake) (entity.Channel, error) {
	if p, ok := c.channels.Get(string(id)); ok {
		return c.decodeChannel(ctx, p)
	}
	return c.FetchChannel(ctx, id)
}

// Channels decodes every cached channel. Channels of a type this client does
// not model are skipped.
func (c *Client) Channels(ctx context.Context) ([]entity.Channel, error) {
	payloads := c.channels.Values()
	out := make([]entity.Channel, 0, len(payloads))
	for _, p := range payloads {
		ch, err := c.decodeChannel(ctx, p)
		if errors.Is(err, entity.ErrUnsupportedVariant) {
			c.logger.Debug("skipping cached channel", "channel_id", p.ID, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func (c *Client) decodeChannel(ctx context.Context, p entity.ChannelPayload) (entity.Channel, error) {
	var guild *entity.Guild
	if p.GuildID != nil {
		g, err := c.Guild(ctx, *p.GuildID)
		if err != nil {
			return nil, err
		}
		guild = g
	}
	return entity.DecodeChannel(c, p, guild)
}

// cachedTextChannel never calls the API; it returns nil when the channel is
// unknown or cannot carry messages.
func (c *Client) cachedTextChannel(ctx context.Context, id entity.Snowflake) entity.TextBased {
	p, ok := c.channels.Get(string(id))
	if !ok {
		return nil
	}
	ch, err := c.decodeChannel(ctx, p)
	if err != nil {
		return nil
	}
	text, _ := ch.(entity.TextBased)
	return text
}

// SendMessage posts m to channelID. A reply is made by setting
// m.MessageReference, see entity.Message.Reply.
func (c *Client) SendMessage(ctx context.Context, channelID entity.Snowflake, m entity.MessageCreate) (*entity.Message, error) {
	if m.Content == "" && len(m.Embeds) == 0 {
		return nil, ErrEmptyMessage
	}
	if m.Nonce == "" {
		m.Nonce = nonce()
	}

	var p entity.MessagePayload
	if err := c.rest.post(ctx, "/channels/"+string(channelID)+"/messages", m, &p); err != nil {
		return nil, fmt.Errorf("could not send message to %s: %w", channelID, err)
	}
	return entity.NewMessage(c, p, c.cachedTextChannel(ctx, channelID)), nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID entity.Snowflake, m entity.MessageEdit) (*entity.Message, error) {
	if m.Content == nil && len(m.Embeds) == 0 {
		return nil, ErrEmptyMessage
	}

	var p entity.MessagePayload
	path := "/channels/" + string(channelID) + "/messages/" + string(messageID)
	if err := c.rest.patch(ctx, path, m, &p); err != nil {
		return nil, fmt.Errorf("could not edit message %s: %w", messageID, err)
	}
	return entity.NewMessage(c, p, c.cachedTextChannel(ctx, channelID)), nil
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID entity.Snowflake) error {
	path := "/channels/" + string(channelID) + "/messages/" + string(messageID)
	if err := c.rest.delete(ctx, path); err != nil {
		return fmt.Errorf("could not delete message %s: %w", messageID, err)
	}
	return nil
}

// nonce fits Discord's 25 character limit.
func nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:25]
}
