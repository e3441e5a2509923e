// Package conversation holds the client-side chat state: an append-only list
// of turns seeded with a greeting, and a two-state send cycle against the
// chat proxy.
package conversation

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable chat turn.
type Message struct {
	ID      string
	Role    Role
	Content string
	// Sources lists retrieval references returned with an assistant reply.
	Sources []string
}

type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	default:
		return "unknown"
	}
}
