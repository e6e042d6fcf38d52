package chathub

import "errors"

// All of these are expected during normal operation (races with disconnect,
// duplicate clicks, stale room ids) and are treated as no-ops at the transport.
var (
	ErrNotFound         = errors.New("chathub: not found")
	ErrInvalidState     = errors.New("chathub: invalid state")
	ErrUnauthorized     = errors.New("chathub: sender is not a member of the room")
	ErrDuplicateSession = errors.New("chathub: session id already in use")
	ErrHubStopped       = errors.New("chathub: hub stopped")
)
