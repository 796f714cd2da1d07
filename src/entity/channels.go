package entity

import (
	"context"
	"errors"
)

// Channel is implemented by every channel variant in this package and by no
// other type.
type Channel interface {
	ID() Snowflake
	Type() ChannelType
	Mention() string
	Payload() ChannelPayload
	isChannel()
}

// GuildChannel is a channel that belongs to a guild.
type GuildChannel interface {
	Channel
	GuildID() Snowflake
	Guild() *Guild
	Name() string
	Position() int
	ParentID() Snowflake
}

// TextBased is a channel that messages can be sent to.
type TextBased interface {
	Channel
	LastMessageID() Snowflake
	Send(ctx context.Context, content string) (*Message, error)
	SendMessage(ctx context.Context, m MessageCreate) (*Message, error)
}

var errNoHandle = errors.New("entity: no client handle")

type channelBase struct {
	handle  Handle
	payload ChannelPayload
}

func (c *channelBase) ID() Snowflake           { return c.payload.ID }
func (c *channelBase) Type() ChannelType       { return c.payload.Type }
func (c *channelBase) Mention() string         { return "<#" + string(c.payload.ID) + ">" }
func (c *channelBase) Payload() ChannelPayload { return c.payload }
func (c *channelBase) isChannel()              {}

type guildChannelBase struct {
	channelBase
	guild *Guild
}

func (c *guildChannelBase) GuildID() Snowflake {
	if c.guild != nil {
		return c.guild.ID
	}
	return deref(c.payload.GuildID)
}

// Guild returns the guild resolved when the channel was decoded, if any.
func (c *guildChannelBase) Guild() *Guild            { return c.guild }
func (c *guildChannelBase) Name() string             { return deref(c.payload.Name) }
func (c *guildChannelBase) Position() int            { return deref(c.payload.Position) }
func (c *guildChannelBase) ParentID() Snowflake      { return deref(c.payload.ParentID) }
func (c *guildChannelBase) NSFW() bool               { return deref(c.payload.NSFW) }
func (c *guildChannelBase) Overwrites() []Overwrite  { return c.payload.PermissionOverwrites }
func (c *guildChannelBase) Permissions() string      { return deref(c.payload.Permissions) }
func (c *guildChannelBase) ApplicationID() Snowflake { return deref(c.payload.ApplicationID) }
func (c *guildChannelBase) DefaultAutoArchive() int  { return deref(c.payload.DefaultAutoArchiveDuration) }
func (c *guildChannelBase) Flags() int               { return deref(c.payload.Flags) }
func (c *guildChannelBase) LastPinTimestamp() string { return deref(c.payload.LastPinTimestamp) }

// Parent looks up the category (or, for threads, the parent channel) through
// the client. It returns nil without error when the channel has no parent.
func (c *guildChannelBase) Parent(ctx context.Context) (Channel, error) {
	if c.payload.ParentID == nil {
		return nil, nil
	}
	if c.handle == nil {
		return nil, errNoHandle
	}
	return c.handle.Channel(ctx, *c.payload.ParentID)
}

type textBase struct {
	handle Handle
	id     Snowflake
	last   *Snowflake
	topic  *string
	slow   *int
}

func newTextBase(h Handle, p ChannelPayload) textBase {
	return textBase{handle: h, id: p.ID, last: p.LastMessageID, topic: p.Topic, slow: p.RateLimitPerUser}
}

func (t *textBase) LastMessageID() Snowflake { return deref(t.last) }
func (t *textBase) Topic() string            { return deref(t.topic) }

// RateLimitPerUser is the slowmode delay in seconds.
func (t *textBase) RateLimitPerUser() int { return deref(t.slow) }

func (t *textBase) Send(ctx context.Context, content string) (*Message, error) {
	return t.SendMessage(ctx, MessageCreate{Content: content})
}

func (t *textBase) SendMessage(ctx context.Context, m MessageCreate) (*Message, error) {
	if t.handle == nil {
		return nil, errNoHandle
	}
	return t.handle.SendMessage(ctx, t.id, m)
}

type voiceFields struct {
	p *ChannelPayload
}

func (v voiceFields) Bitrate() int          { return deref(v.p.Bitrate) }
func (v voiceFields) UserLimit() int        { return deref(v.p.UserLimit) }
func (v voiceFields) RTCRegion() string     { return deref(v.p.RTCRegion) }
func (v voiceFields) VideoQualityMode() int { return deref(v.p.VideoQualityMode) }

type forumFields struct {
	p *ChannelPayload
}

func (f forumFields) Topic() string                     { return deref(f.p.Topic) }
func (f forumFields) AvailableTags() []Tag              { return f.p.AvailableTags }
func (f forumFields) DefaultReaction() *DefaultReaction { return f.p.DefaultReactionEmoji }
func (f forumFields) DefaultSortOrder() int             { return deref(f.p.DefaultSortOrder) }
func (f forumFields) DefaultForumLayout() int           { return deref(f.p.DefaultForumLayout) }
func (f forumFields) DefaultThreadRateLimit() int {
	return deref(f.p.DefaultThreadRateLimitPerUser)
}

type DMChannel struct {
	channelBase
	textBase
}

// Recipient returns the other user of the conversation.
func (c *DMChannel) Recipient() User {
	if len(c.payload.Recipients) == 0 {
		return User{}
	}
	return c.payload.Recipients[0]
}

type GroupDMChannel struct {
	channelBase
	textBase
}

func (c *GroupDMChannel) Name() string       { return deref(c.payload.Name) }
func (c *GroupDMChannel) Icon() string       { return deref(c.payload.Icon) }
func (c *GroupDMChannel) OwnerID() Snowflake { return deref(c.payload.OwnerID) }
func (c *GroupDMChannel) Recipients() []User { return c.payload.Recipients }
func (c *GroupDMChannel) Managed() bool      { return deref(c.payload.Managed) }
func (c *GroupDMChannel) Application() Snowflake {
	return deref(c.payload.ApplicationID)
}

type GuildTextChannel struct {
	guildChannelBase
	textBase
}

type GuildAnnouncementChannel struct {
	guildChannelBase
	textBase
}

type GuildVoiceChannel struct {
	guildChannelBase
	textBase
	voiceFields
}

type GuildStageChannel struct {
	guildChannelBase
	textBase
	voiceFields
}

type GuildCategory struct {
	guildChannelBase
}

type GuildDirectory struct {
	guildChannelBase
}

type GuildForumChannel struct {
	guildChannelBase
	forumFields
}

type GuildMediaChannel struct {
	guildChannelBase
	forumFields
}

// ThreadChannel covers announcement, public and private threads.
type ThreadChannel struct {
	guildChannelBase
	textBase
}

func (c *ThreadChannel) Private() bool { return c.payload.Type == ChannelTypePrivateThread }
func (c *ThreadChannel) OwnerID() Snowflake {
	return deref(c.payload.OwnerID)
}
func (c *ThreadChannel) MessageCount() int        { return deref(c.payload.MessageCount) }
func (c *ThreadChannel) MemberCount() int         { return deref(c.payload.MemberCount) }
func (c *ThreadChannel) AppliedTags() []Snowflake { return c.payload.AppliedTags }
func (c *ThreadChannel) Metadata() ThreadMetadata {
	return deref(c.payload.ThreadMetadata)
}
func (c *ThreadChannel) Member() *ThreadMember { return c.payload.Member }

// DecodeChannel builds the concrete channel for p.Type. guild is the already
// resolved owning guild, or nil for DMs and for guild channels whose guild is
// not known; it is not looked up here.
func DecodeChannel(h Handle, p ChannelPayload, guild *Guild) (Channel, error) {
	base := channelBase{handle: h, payload: p}
	gbase := guildChannelBase{channelBase: base, guild: guild}

	switch p.Type {
	case ChannelTypeGuildText:
		return &GuildTextChannel{guildChannelBase: gbase, textBase: newTextBase(h, p)}, nil
	case ChannelTypeDM:
		return &DMChannel{channelBase: base, textBase: newTextBase(h, p)}, nil
	case ChannelTypeGuildVoice:
		c := &GuildVoiceChannel{guildChannelBase: gbase, textBase: newTextBase(h, p)}
		c.voiceFields = voiceFields{p: &c.guildChannelBase.payload}
		return c, nil
	case ChannelTypeGroupDM:
		return &GroupDMChannel{channelBase: base, textBase: newTextBase(h, p)}, nil
	case ChannelTypeGuildCategory:
		return &GuildCategory{guildChannelBase: gbase}, nil
	case ChannelTypeGuildAnnouncement:
		return &GuildAnnouncementChannel{guildChannelBase: gbase, textBase: newTextBase(h, p)}, nil
	case ChannelTypeAnnouncementThread, ChannelTypePublicThread, ChannelTypePrivateThread:
		return &ThreadChannel{guildChannelBase: gbase, textBase: newTextBase(h, p)}, nil
	case ChannelTypeGuildStageVoice:
		c := &GuildStageChannel{guildChannelBase: gbase, textBase: newTextBase(h, p)}
		c.voiceFields = voiceFields{p: &c.guildChannelBase.payload}
		return c, nil
	case ChannelTypeGuildDirectory:
		return &GuildDirectory{guildChannelBase: gbase}, nil
	case ChannelTypeGuildForum:
		c := &GuildForumChannel{guildChannelBase: gbase}
		c.forumFields = forumFields{p: &c.guildChannelBase.payload}
		return c, nil
	case ChannelTypeGuildMedia:
		c := &GuildMediaChannel{guildChannelBase: gbase}
		c.forumFields = forumFields{p: &c.guildChannelBase.payload}
		return c, nil
	default:
		return nil, &UnsupportedVariantError{Kind: "channel", Value: int(p.Type)}
	}
}

// IsThread reports whether t is one of the thread channel types.
func (t ChannelType) IsThread() bool {
	return t == ChannelTypeAnnouncementThread || t == ChannelTypePublicThread || t == ChannelTypePrivateThread
}
