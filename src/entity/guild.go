package entity

// GuildPayload carries the fields of a guild object that the client keeps.
// GUILD_CREATE additionally inlines channels and threads.
type GuildPayload struct {
	ID          Snowflake        `json:"id"`
	Name        string           `json:"name"`
	Icon        *string          `json:"icon"`
	OwnerID     Snowflake        `json:"owner_id"`
	Unavailable bool             `json:"unavailable,omitempty"`
	MemberCount *int             `json:"member_count,omitempty"`
	JoinedAt    *string          `json:"joined_at,omitempty"`
	Channels    []ChannelPayload `json:"channels,omitempty"`
	Threads     []ChannelPayload `json:"threads,omitempty"`
}

type Guild struct {
	handle Handle

	ID          Snowflake
	Name        string
	Icon        string
	OwnerID     Snowflake
	Unavailable bool
	MemberCount int
	payload     GuildPayload
}

func NewGuild(h Handle, p GuildPayload) *Guild {
	return &Guild{
		handle:      h,
		ID:          p.ID,
		Name:        p.Name,
		Icon:        deref(p.Icon),
		OwnerID:     p.OwnerID,
		Unavailable: p.Unavailable,
		MemberCount: deref(p.MemberCount),
		payload:     p,
	}
}

func (g *Guild) Payload() GuildPayload { return g.payload }

// Channels decodes the channels inlined in the guild payload. Channels with
// an unsupported type are skipped and reported through the returned error
// slice so the caller can log them.
func (g *Guild) Channels() ([]Channel, []error) {
	var (
		out  []Channel
		errs []error
	)
	for _, p := range append(append([]ChannelPayload{}, g.payload.Channels...), g.payload.Threads...) {
		if p.GuildID == nil {
			id := g.ID
			p.GuildID = &id
		}
		ch, err := DecodeChannel(g.handle, p, g)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, ch)
	}
	return out, errs
}
