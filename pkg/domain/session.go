package domain

import "time"

// Role tags a message in the conversation history.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session's history log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the persisted snapshot of one conversation.
type Session struct {
	ID         string      `json:"id"`
	State      State       `json:"state"`
	Attributes *Attributes `json:"attributes"`
	UpdatedAt  time.Time   `json:"updated_at"`

	// Sealed carries the encrypted attribute bag when the store sits behind
	// an encryption middleware. Attributes are empty in that case.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates an empty session at the initial state.
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		State:      InitialState,
		Attributes: &Attributes{},
		UpdatedAt:  time.Now().UTC(),
	}
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Attributes != nil {
		c.Attributes = s.Attributes.Clone()
	} else {
		c.Attributes = &Attributes{}
	}
	return &c
}
