package entity

import "context"

// CommandType is the discriminant of an application command payload.
type CommandType int

const (
	CommandTypeChatInput         CommandType = 1
	CommandTypeUser              CommandType = 2
	CommandTypeMessage           CommandType = 3
	CommandTypePrimaryEntryPoint CommandType = 4
)

func (t CommandType) String() string {
	switch t {
	case CommandTypeChatInput:
		return "CHAT_INPUT"
	case CommandTypeUser:
		return "USER"
	case CommandTypeMessage:
		return "MESSAGE"
	case CommandTypePrimaryEntryPoint:
		return "PRIMARY_ENTRY_POINT"
	default:
		return "UNKNOWN"
	}
}

type CommandOptionChoice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type CommandOption struct {
	Type         int                   `json:"type"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Required     bool                  `json:"required,omitempty"`
	Choices      []CommandOptionChoice `json:"choices,omitempty"`
	Options      []CommandOption       `json:"options,omitempty"`
	ChannelTypes []ChannelType         `json:"channel_types,omitempty"`
	Autocomplete bool                  `json:"autocomplete,omitempty"`
}

type ApplicationCommandPayload struct {
	ID                       Snowflake       `json:"id"`
	Type                     CommandType     `json:"type,omitempty"`
	ApplicationID            Snowflake       `json:"application_id"`
	GuildID                  *Snowflake      `json:"guild_id,omitempty"`
	Name                     string          `json:"name"`
	Description              string          `json:"description"`
	Options                  []CommandOption `json:"options,omitempty"`
	DefaultMemberPermissions *string         `json:"default_member_permissions,omitempty"`
	NSFW                     bool            `json:"nsfw,omitempty"`
	Version                  Snowflake       `json:"version"`
}

type ApplicationCommand struct {
	handle Handle

	ID            Snowflake
	Type          CommandType
	ApplicationID Snowflake
	GuildID       Snowflake
	Guild         *Guild
	Name          string
	Description   string
	Options       []CommandOption
	Version       Snowflake
	payload       ApplicationCommandPayload
}

// DecodeCommand builds an application command. A missing type means a chat
// input (slash) command. guild is the resolved owning guild for guild
// commands and nil for global ones.
func DecodeCommand(h Handle, p ApplicationCommandPayload, guild *Guild) (*ApplicationCommand, error) {
	kind := p.Type
	if kind == 0 {
		kind = CommandTypeChatInput
	}
	switch kind {
	case CommandTypeChatInput, CommandTypeUser, CommandTypeMessage, CommandTypePrimaryEntryPoint:
	default:
		return nil, &UnsupportedVariantError{Kind: "application command", Value: int(p.Type)}
	}

	return &ApplicationCommand{
		handle:        h,
		ID:            p.ID,
		Type:          kind,
		ApplicationID: p.ApplicationID,
		GuildID:       deref(p.GuildID),
		Guild:         guild,
		Name:          p.Name,
		Description:   p.Description,
		Options:       p.Options,
		Version:       p.Version,
		payload:       p,
	}, nil
}

func (c *ApplicationCommand) Payload() ApplicationCommandPayload { return c.payload }

// Global reports whether the command is registered for every guild.
func (c *ApplicationCommand) Global() bool { return c.GuildID == "" }

// Mention returns the clickable slash-command mention. Only chat input
// commands can be mentioned; others return the plain name.
func (c *ApplicationCommand) Mention() string {
	if c.Type != CommandTypeChatInput {
		return c.Name
	}
	return "</" + c.Name + ":" + string(c.ID) + ">"
}

// ResolveGuild returns the owning guild, looking it up through the client if
// it was not resolved at decode time. Global commands return nil.
func (c *ApplicationCommand) ResolveGuild(ctx context.Context) (*Guild, error) {
	if c.Guild != nil || c.Global() {
		return c.Guild, nil
	}
	if c.handle == nil {
		return nil, errNoHandle
	}
	return c.handle.Guild(ctx, c.GuildID)
}
