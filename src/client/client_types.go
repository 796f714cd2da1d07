package client

import "personal/discord_go/src/entity"

// GatewayBotResponse is the body of GET /gateway/bot.
type GatewayBotResponse struct {
	URL               string            `json:"url"`
	Shards            int               `json:"shards"`
	SessionStartLimit SessionStartLimit `json:"session_start_limit"`
}

type SessionStartLimit struct {
	Total          int `json:"total"`
	Remaining      int `json:"remaining"`
	ResetAfter     int `json:"reset_after"`
	MaxConcurrency int `json:"max_concurrency"`
}

type readyPayload struct {
	V           int                   `json:"v"`
	User        entity.User           `json:"user"`
	Guilds      []entity.GuildPayload `json:"guilds"`
	SessionID   string                `json:"session_id"`
	Shard       []int                 `json:"shard,omitempty"`
	Application struct {
		ID    entity.Snowflake `json:"id"`
		Flags int              `json:"flags"`
	} `json:"application"`
}

type guildDeletePayload struct {
	ID          entity.Snowflake `json:"id"`
	Unavailable bool             `json:"unavailable,omitempty"`
}
