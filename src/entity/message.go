package entity

import (
	"context"
	"time"
)

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type Attachment struct {
	ID          Snowflake `json:"id"`
	Filename    string    `json:"filename"`
	Size        int       `json:"size"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
}

type MessageReference struct {
	MessageID       *Snowflake `json:"message_id,omitempty"`
	ChannelID       *Snowflake `json:"channel_id,omitempty"`
	GuildID         *Snowflake `json:"guild_id,omitempty"`
	FailIfNotExists *bool      `json:"fail_if_not_exists,omitempty"`
}

type AllowedMentions struct {
	Parse       []string    `json:"parse"`
	Roles       []Snowflake `json:"roles,omitempty"`
	Users       []Snowflake `json:"users,omitempty"`
	RepliedUser bool        `json:"replied_user,omitempty"`
}

type MessagePayload struct {
	ID               Snowflake         `json:"id"`
	ChannelID        Snowflake         `json:"channel_id"`
	GuildID          *Snowflake        `json:"guild_id,omitempty"`
	Author           User              `json:"author"`
	Content          string            `json:"content"`
	Timestamp        string            `json:"timestamp"`
	EditedTimestamp  *string           `json:"edited_timestamp"`
	TTS              bool              `json:"tts"`
	MentionEveryone  bool              `json:"mention_everyone"`
	Mentions         []User            `json:"mentions"`
	Attachments      []Attachment      `json:"attachments"`
	Embeds           []Embed           `json:"embeds"`
	Pinned           bool              `json:"pinned"`
	Type             int               `json:"type"`
	Flags            *int              `json:"flags,omitempty"`
	MessageReference *MessageReference `json:"message_reference,omitempty"`
}

// MessageDeletePayload is the body of MESSAGE_DELETE.
type MessageDeletePayload struct {
	ID        Snowflake  `json:"id"`
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
}

// MessageCreate is the body of a create-message request. At least one of
// Content or Embeds must be set.
type MessageCreate struct {
	Content          string            `json:"content,omitempty"`
	Nonce            string            `json:"nonce,omitempty"`
	TTS              bool              `json:"tts,omitempty"`
	Embeds           []Embed           `json:"embeds,omitempty"`
	AllowedMentions  *AllowedMentions  `json:"allowed_mentions,omitempty"`
	MessageReference *MessageReference `json:"message_reference,omitempty"`
}

// MessageEdit is the body of an edit-message request. Nil fields are left
// unchanged.
type MessageEdit struct {
	Content         *string          `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

type Message struct {
	handle  Handle
	channel TextBased

	ID        Snowflake
	ChannelID Snowflake
	GuildID   Snowflake
	Author    User
	Content   string
	Timestamp time.Time
	EditedAt  time.Time
	Mentions  []User
	Embeds    []Embed
	payload   MessagePayload
}

// NewMessage builds a message. ch is the already resolved channel the message
// was posted in and may be nil if it could not be resolved.
func NewMessage(h Handle, p MessagePayload, ch TextBased) *Message {
	return &Message{
		handle:    h,
		channel:   ch,
		ID:        p.ID,
		ChannelID: p.ChannelID,
		GuildID:   deref(p.GuildID),
		Author:    p.Author,
		Content:   p.Content,
		Timestamp: parseTimestamp(p.Timestamp),
		EditedAt:  parseTimestamp(deref(p.EditedTimestamp)),
		Mentions:  p.Mentions,
		Embeds:    p.Embeds,
		payload:   p,
	}
}

func (m *Message) Payload() MessagePayload { return m.payload }

// Channel returns the channel resolved at decode time, or nil.
func (m *Message) Channel() TextBased { return m.channel }

func (m *Message) Edited() bool { return !m.EditedAt.IsZero() }

// Reference returns a reference to m suitable for a reply.
func (m *Message) Reference() *MessageReference {
	ref := &MessageReference{MessageID: &m.ID, ChannelID: &m.ChannelID}
	if m.GuildID != "" {
		ref.GuildID = &m.GuildID
	}
	return ref
}

func (m *Message) Reply(ctx context.Context, content string) (*Message, error) {
	if m.handle == nil {
		return nil, errNoHandle
	}
	return m.handle.SendMessage(ctx, m.ChannelID, MessageCreate{
		Content:          content,
		MessageReference: m.Reference(),
	})
}

func (m *Message) Edit(ctx context.Context, content string) (*Message, error) {
	if m.handle == nil {
		return nil, errNoHandle
	}
	return m.handle.EditMessage(ctx, m.ChannelID, m.ID, MessageEdit{Content: &content})
}

func (m *Message) Delete(ctx context.Context) error {
	if m.handle == nil {
		return errNoHandle
	}
	return m.handle.DeleteMessage(ctx, m.ChannelID, m.ID)
}
