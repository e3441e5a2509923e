package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Sender performs one request against the chat proxy.
type Sender interface {
	Send(ctx context.Context, text string) (*Response, error)
}

// Session is one conversation. It allows at most one request in flight:
// Begin is refused while a response is awaited.
type Session struct {
	mu       sync.Mutex
	opts     Options
	messages []Message
	state    State
	newID    func() string
}

func NewSession(opts Options) *Session {
	s := &Session{
		opts:  opts,
		state: StateIdle,
		newID: uuid.NewString,
	}
	s.messages = []Message{{ID: s.newID(), Role: RoleAssistant, Content: opts.Greeting}}
	return s
}

func (s *Session) Options() Options {
	return s.opts
}

// Messages returns a snapshot in display order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Loading() bool {
	return s.State() == StateAwaitingResponse
}

// CanSend reports whether input would be accepted by Begin.
func (s *Session) CanSend(input string) bool {
	return strings.TrimSpace(input) != "" && !s.Loading()
}

// Begin accepts trimmed, non-empty input while idle: it appends the user
// turn, enters the awaiting state and returns the text to send.
func (s *Session) Begin(input string) (string, bool) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return "", false
	}
	s.messages = append(s.messages, Message{ID: s.newID(), Role: RoleUser, Content: text})
	s.state = StateAwaitingResponse
	return text, true
}

// Finish appends the assistant turn for the pending request and returns to
// idle. It is a no-op when nothing is pending.
func (s *Session) Finish(reply Reply) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingResponse {
		return Message{}, false
	}
	msg := Message{
		ID:      s.newID(),
		Role:    RoleAssistant,
		Content: reply.Content,
		Sources: reply.Sources,
	}
	s.messages = append(s.messages, msg)
	s.state = StateIdle
	return msg, true
}

// Send runs a full cycle synchronously. The session is back to idle when it
// returns, even if the sender panics.
func (s *Session) Send(ctx context.Context, sender Sender, input string) (msg Message, sent bool) {
	text, ok := s.Begin(input)
	if !ok {
		return Message{}, false
	}

	reply := Reply{Content: NetworkErrorText, Failed: true}
	defer func() {
		msg, _ = s.Finish(reply)
	}()

	resp, err := sender.Send(ctx, text)
	reply = Interpret(resp, err)
	return msg, true
}
