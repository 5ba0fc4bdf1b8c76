package domain

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	// Role is who produced the turn.
	Role Role

	// Content is the message text.
	Content string
}

// DefaultSessionCap is the default sliding-window size for a session.
const DefaultSessionCap = 20

// Conversation is the bounded-memory turn history for one interactive
// session. It is append-only with oldest-first eviction once the cap is
// exceeded, is owned by a single interaction and never shared across
// concurrent callers, and does not persist across process lifetimes.
type Conversation struct {
	cap   int
	turns []Turn
}

// NewConversation creates an empty conversation with the given window
// cap. A non-positive cap falls back to DefaultSessionCap.
func NewConversation(cap int) *Conversation {
	if cap <= 0 {
		cap = DefaultSessionCap
	}
	return &Conversation{cap: cap}
}

// AppendUser records a user turn, evicting the oldest turns beyond the cap.
func (c *Conversation) AppendUser(content string) {
	c.append(Turn{Role: RoleUser, Content: content})
}

// AppendAssistant records an assistant turn, evicting the oldest turns
// beyond the cap.
func (c *Conversation) AppendAssistant(content string) {
	c.append(Turn{Role: RoleAssistant, Content: content})
}

func (c *Conversation) append(t Turn) {
	c.turns = append(c.turns, t)
	if len(c.turns) > c.cap {
		// Slide the window: keep only the most recent cap turns.
		c.turns = append(c.turns[:0], c.turns[len(c.turns)-c.cap:]...)
	}
}

// Turns returns a copy of the current window, oldest first.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns currently retained.
func (c *Conversation) Len() int {
	return len(c.turns)
}
