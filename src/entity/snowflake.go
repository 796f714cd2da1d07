package entity

import (
	"strconv"
	"time"
)

// DiscordEpoch is the first millisecond of 2015, the origin of snowflake timestamps.
const DiscordEpoch = 1420070400000

// Snowflake is a Discord entity id. It travels as a string in JSON.
type Snowflake string

func (s Snowflake) String() string { return string(s) }

// Time returns the creation time encoded in the snowflake.
// It returns the zero time if s is not a valid snowflake.
func (s Snowflake) Time() time.Time {
	n, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(n>>22) + DiscordEpoch)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
