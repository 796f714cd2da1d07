package entity

import "context"

// Handle is the route from a decoded entity back to the client that built it.
// Entities hold a Handle only to issue follow-up calls; they never own the
// client or keep it alive past Disconnect.
type Handle interface {
	Channel(ctx context.Context, id Snowflake) (Channel, error)
	Guild(ctx context.Context, id Snowflake) (*Guild, error)
	SendMessage(ctx context.Context, channelID Snowflake, m MessageCreate) (*Message, error)
	EditMessage(ctx context.Context, channelID, messageID Snowflake, m MessageEdit) (*Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID Snowflake) error
}
