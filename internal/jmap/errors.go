package jmap

import "fmt"

// AuthError means the bearer token or the current session was rejected
// (HTTP 401/403, or a session response missing required fields). It is
// recoverable by re-resolving the session.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("jmap: authentication failed (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("jmap: authentication failed: %s", e.Message)
}

// TransportError wraps a connection or timeout failure. Retryable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("jmap: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means the server rejected the request or returned a
// method-level error. Not retryable: the request itself is wrong, or the
// server has a problem a retry cannot fix.
type ProtocolError struct {
	Status  int    // HTTP status, when the failure was at the HTTP layer
	Type    string // JMAP method error type, e.g. "invalidArguments"
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("jmap: method error %q: %s", e.Type, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("jmap: server returned HTTP %d: %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("jmap: %s: %v", e.Message, e.Err)
	default:
		return fmt.Sprintf("jmap: %s", e.Message)
	}
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NotFoundError means a well-known resource (such as the Trash mailbox)
// does not exist on the account.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("jmap: %s not found", e.Resource)
}
