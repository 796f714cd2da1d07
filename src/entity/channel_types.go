package entity

// ChannelType is the discriminant of a channel payload.
type ChannelType int

const (
	ChannelTypeGuildText          ChannelType = 0
	ChannelTypeDM                 ChannelType = 1
	ChannelTypeGuildVoice         ChannelType = 2
	ChannelTypeGroupDM            ChannelType = 3
	ChannelTypeGuildCategory      ChannelType = 4
	ChannelTypeGuildAnnouncement  ChannelType = 5
	ChannelTypeAnnouncementThread ChannelType = 10
	ChannelTypePublicThread       ChannelType = 11
	ChannelTypePrivateThread      ChannelType = 12
	ChannelTypeGuildStageVoice    ChannelType = 13
	ChannelTypeGuildDirectory     ChannelType = 14
	ChannelTypeGuildForum         ChannelType = 15
	ChannelTypeGuildMedia         ChannelType = 16
)

func (t ChannelType) String() string {
	switch t {
	case ChannelTypeGuildText:
		return "GUILD_TEXT"
	case ChannelTypeDM:
		return "DM"
	case ChannelTypeGuildVoice:
		return "GUILD_VOICE"
	case ChannelTypeGroupDM:
		return "GROUP_DM"
	case ChannelTypeGuildCategory:
		return "GUILD_CATEGORY"
	case ChannelTypeGuildAnnouncement:
		return "GUILD_ANNOUNCEMENT"
	case ChannelTypeAnnouncementThread:
		return "ANNOUNCEMENT_THREAD"
	case ChannelTypePublicThread:
		return "PUBLIC_THREAD"
	case ChannelTypePrivateThread:
		return "PRIVATE_THREAD"
	case ChannelTypeGuildStageVoice:
		return "GUILD_STAGE_VOICE"
	case ChannelTypeGuildDirectory:
		return "GUILD_DIRECTORY"
	case ChannelTypeGuildForum:
		return "GUILD_FORUM"
	case ChannelTypeGuildMedia:
		return "GUILD_MEDIA"
	default:
		return "UNKNOWN"
	}
}

type Overwrite struct {
	ID    Snowflake `json:"id"`
	Type  int       `json:"type"`
	Allow string    `json:"allow"`
	Deny  string    `json:"deny"`
}

// https://discord.com/developers/docs/resources/channel#thread-metadata-object-thread-metadata-structure
type ThreadMetadata struct {
	Archived            bool    `json:"archived"`
	AutoArchiveDuration int     `json:"auto_archive_duration"`
	ArchiveTimestamp    string  `json:"archive_timestamp"`
	Locked              bool    `json:"locked"`
	Invitable           *bool   `json:"invitable,omitempty"`
	CreateTimestamp     *string `json:"create_timestamp,omitempty"`
}

// https://discord.com/developers/docs/resources/channel#thread-member-object-thread-member-structure
type ThreadMember struct {
	ID            *Snowflake `json:"id,omitempty"`
	UserID        *Snowflake `json:"user_id,omitempty"`
	JoinTimestamp string     `json:"join_timestamp"`
	Flags         int        `json:"flags"`
}

type Tag struct {
	ID        Snowflake  `json:"id"`
	Name      string     `json:"name"`
	Moderated bool       `json:"moderated"`
	EmojiID   *Snowflake `json:"emoji_id,omitempty"`
	EmojiName *string    `json:"emoji_name,omitempty"`
}

type DefaultReaction struct {
	EmojiID   *Snowflake `json:"emoji_id,omitempty"`
	EmojiName *string    `json:"emoji_name,omitempty"`
}

// ChannelPayload is the wire shape shared by every channel type. Which
// fields are set depends on Type.
type ChannelPayload struct {
	ID                            Snowflake        `json:"id"`
	Type                          ChannelType      `json:"type"`
	GuildID                       *Snowflake       `json:"guild_id,omitempty"`
	Position                      *int             `json:"position,omitempty"`
	PermissionOverwrites          []Overwrite      `json:"permission_overwrites,omitempty"`
	Name                          *string          `json:"name,omitempty"`
	Topic                         *string          `json:"topic,omitempty"`
	NSFW                          *bool            `json:"nsfw,omitempty"`
	LastMessageID                 *Snowflake       `json:"last_message_id,omitempty"`
	Bitrate                       *int             `json:"bitrate,omitempty"`
	UserLimit                     *int             `json:"user_limit,omitempty"`
	RateLimitPerUser              *int             `json:"rate_limit_per_user,omitempty"`
	Recipients                    []User           `json:"recipients,omitempty"`
	Icon                          *string          `json:"icon,omitempty"`
	OwnerID                       *Snowflake       `json:"owner_id,omitempty"`
	ApplicationID                 *Snowflake       `json:"application_id,omitempty"`
	Managed                       *bool            `json:"managed,omitempty"`
	ParentID                      *Snowflake       `json:"parent_id,omitempty"`
	LastPinTimestamp              *string          `json:"last_pin_timestamp,omitempty"` // ISO8601
	RTCRegion                     *string          `json:"rtc_region,omitempty"`
	VideoQualityMode              *int             `json:"video_quality_mode,omitempty"`
	MessageCount                  *int             `json:"message_count,omitempty"`
	MemberCount                   *int             `json:"member_count,omitempty"`
	ThreadMetadata                *ThreadMetadata  `json:"thread_metadata,omitempty"`
	Member                        *ThreadMember    `json:"member,omitempty"`
	DefaultAutoArchiveDuration    *int             `json:"default_auto_archive_duration,omitempty"`
	Permissions                   *string          `json:"permissions,omitempty"`
	Flags                         *int             `json:"flags,omitempty"`
	TotalMessageSent              *int             `json:"total_message_sent,omitempty"`
	AvailableTags                 []Tag            `json:"available_tags,omitempty"`
	AppliedTags                   []Snowflake      `json:"applied_tags,omitempty"`
	DefaultReactionEmoji          *DefaultReaction `json:"default_reaction_emoji,omitempty"`
	DefaultThreadRateLimitPerUser *int             `json:"default_thread_rate_limit_per_user,omitempty"`
	DefaultSortOrder              *int             `json:"default_sort_order,omitempty"`
	DefaultForumLayout            *int             `json:"default_forum_layout,omitempty"`
}
