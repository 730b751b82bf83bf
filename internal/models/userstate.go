package models

// ConversationState represents the state of a conversation with an admin
type ConversationState int

const (
	// Default is the initial state
	Default ConversationState = iota
	// AwaitingMemberName is the state when the admin is inputting a member name
	AwaitingMemberName
	// AwaitingDeleteConfirm is the state when the admin is confirming member deletion
	AwaitingDeleteConfirm
)

// UserState represents the state of an admin's conversation. Payload
// carries the pending action name or the member it applies to.
type UserState struct {
	State   ConversationState
	Payload string
}
