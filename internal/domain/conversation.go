package domain

import "time"

type ConversationState string

const (
	StateOpen    ConversationState = "open"
	StatePending ConversationState = "pending"
	StateClosed  ConversationState = "closed"
)

// Conversation is a read-only snapshot of an inbox thread with its
// contact/assignee/location projections embedded. The conversation
// subsystem owns the lifecycle; the engine never writes these back.
type Conversation struct {
	ID             string
	TenantID       string
	Subject        string
	State          ConversationState
	LocationID     string
	LocationName   string
	ChannelType    string // "email", "chat", "sms", ...
	ContactID      string
	ContactName    string
	AssigneeID     string // empty when unassigned
	AssigneeName   string
	CreatedAt      time.Time
	LastActivityAt time.Time
}
