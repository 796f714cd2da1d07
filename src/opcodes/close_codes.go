package opcodes

// 4000	Unknown error	Reconnect
// 4001	Unknown opcode	Reconnect
// 4002	Decode error	Reconnect
// 4003	Not authenticated	Reconnect
// 4004	Authentication failed	Don't reconnect
// 4005	Already authenticated	Reconnect
// 4007	Invalid seq	Reconnect with a new session
// 4008	Rate limited	Reconnect
// 4009	Session timed out	Reconnect with a new session
// 4010	Invalid shard	Don't reconnect
// 4011	Sharding required	Don't reconnect
// 4012	Invalid API version	Don't reconnect
// 4013	Invalid intent(s)	Don't reconnect
// 4014	Disallowed intent(s)	Don't reconnect

const (
	CloseUnknownError         = 4000
	CloseUnknownOpcode        = 4001
	CloseDecodeError          = 4002
	CloseNotAuthenticated     = 4003
	CloseAuthenticationFailed = 4004
	CloseAlreadyAuthenticated = 4005
	CloseInvalidSeq           = 4007
	CloseRateLimited          = 4008
	CloseSessionTimedOut      = 4009
	CloseInvalidShard         = 4010
	CloseShardingRequired     = 4011
	CloseInvalidAPIVersion    = 4012
	CloseInvalidIntents       = 4013
	CloseDisallowedIntents    = 4014
)

// CloseAction is what a client must do after the peer closed with a given code.
type CloseAction int

const (
	// CloseActionResume reconnects and resumes the existing session.
	CloseActionResume CloseAction = iota
	// CloseActionReidentify reconnects with a fresh identify.
	CloseActionReidentify
	// CloseActionTerminate stops reconnecting.
	CloseActionTerminate
)

func (a CloseAction) String() string {
	switch a {
	case CloseActionResume:
		return "resume"
	case CloseActionReidentify:
		return "reidentify"
	case CloseActionTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// ClassifyClose maps a close code to the action Discord documents for it.
// Codes outside the documented gateway range are network-level closes and
// always resumable.
func ClassifyClose(code int) CloseAction {
	switch code {
	case CloseInvalidSeq, CloseSessionTimedOut:
		return CloseActionReidentify
	case CloseAuthenticationFailed,
		CloseInvalidShard,
		CloseShardingRequired,
		CloseInvalidAPIVersion,
		CloseInvalidIntents,
		CloseDisallowedIntents:
		return CloseActionTerminate
	default:
		// Includes CloseRateLimited: Discord resumes after 4008 even though
		// rate limiting is sometimes described as ending the session.
		return CloseActionResume
	}
}
