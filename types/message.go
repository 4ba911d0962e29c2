package types

// Role represents the speaker of a turn
type Role string

const (
	// RoleSystem represents the guiding instruction of a conversation
	RoleSystem Role = "system"

	// RoleUser represents a user message
	RoleUser Role = "user"

	// RoleAssistant represents a model reply
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// String returns the wire name of the role
func (r Role) String() string {
	return string(r)
}

// Turn is one message in a conversation.
//
// Turns are plain values. Once appended to a conversation they are never
// modified; the conversation hands out copies.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`

	// Name identifies the speaker instead of the role marker. Models that
	// support it omit the role token for named turns.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Named reports whether the turn carries a name attribute
func (t Turn) Named() bool {
	return t.Name != ""
}

// SystemTurn creates a system turn
func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// UserTurn creates a user turn
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn creates an assistant turn
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// CloneTurns returns a copy of turns that shares no backing array with it
func CloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
