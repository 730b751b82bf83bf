package errors

import (
	"fmt"
)

// AuthenticationError represents a failed login exchange with the panel
type AuthenticationError struct {
	Reason string
	Err    error
}

// Error returns the error message
func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// Unwrap returns the underlying error
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NetworkError represents a transport-level failure talking to the panel
type NetworkError struct {
	Op  string
	Err error
}

// Error returns the error message
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ResponseError represents a failure reported by the panel: an HTTP
// error status, or an envelope rejection (Status then carries the HTTP
// status of the rejecting response and Body the panel's message).
type ResponseError struct {
	Status int
	Body   string
}

// Error returns the error message
func (e *ResponseError) Error() string {
	return fmt.Sprintf("panel returned status %d: %s", e.Status, e.Body)
}

// ParseError represents a malformed response body from the panel
type ParseError struct {
	Err error
}

// Error returns the error message
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse panel response: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// DuplicateClientError represents a label collision on the panel.
// Existing carries the inbound remark when the pre-creation scan finds
// the collision, or the panel's own conflicting label when the write is
// rejected.
type DuplicateClientError struct {
	Email    string
	Existing string
}

// Error returns the error message
func (e *DuplicateClientError) Error() string {
	return fmt.Sprintf("client %q already exists (%s)", e.Email, e.Existing)
}

// ClientNotFoundError represents an absent update or lookup target
type ClientNotFoundError struct {
	Email string
}

// Error returns the error message
func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client not found: %s", e.Email)
}

// UnsupportedProtocolError represents a link request for a protocol the
// builder does not handle. GetClientLink resolves it as "no link" rather
// than surfacing it to callers.
type UnsupportedProtocolError struct {
	Protocol string
}

// Error returns the error message
func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported protocol: %s", e.Protocol)
}
