package jmap

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JMAP capability URNs sent with every request.
const (
	CoreCapability = "urn:ietf:params:jmap:core"
	MailCapability = "urn:ietf:params:jmap:mail"
)

// UnknownSender is the sentinel address used when an email carries no
// usable from field.
const UnknownSender = "unknown"

// Session holds the per-run API coordinates resolved from the session
// resource. It is immutable; expiry is handled by resolving a fresh one.
type Session struct {
	APIURL    string
	AccountID string
}

// Invocation is one JMAP method call or response, encoded on the wire as
// a three-element array: [name, arguments, call id].
type Invocation struct {
	Name   string
	Args   json.RawMessage
	CallID string
}

// MarshalJSON encodes the invocation as [name, args, callID].
func (inv Invocation) MarshalJSON() ([]byte, error) {
	args := inv.Args
	if args == nil {
		args = json.RawMessage(`{}`)
	}
	return json.Marshal([]any{inv.Name, args, inv.CallID})
}

// UnmarshalJSON decodes the [name, args, callID] triple.
func (inv *Invocation) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("invocation has %d elements, want 3", len(parts))
	}
	if err := json.Unmarshal(parts[0], &inv.Name); err != nil {
		return fmt.Errorf("invocation name: %w", err)
	}
	inv.Args = parts[1]
	if err := json.Unmarshal(parts[2], &inv.CallID); err != nil {
		return fmt.Errorf("invocation call id: %w", err)
	}
	return nil
}

// invoke marshals args into a ready-to-send Invocation.
func invoke(name string, args any, callID string) (Invocation, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Invocation{}, &ProtocolError{Message: "encode " + name + " arguments", Err: err}
	}
	return Invocation{Name: name, Args: raw, CallID: callID}, nil
}

// Request is the top-level JMAP API request object.
type Request struct {
	Using       []string     `json:"using"`
	MethodCalls []Invocation `json:"methodCalls"`
}

// Response is the top-level JMAP API response object.
type Response struct {
	MethodResponses []Invocation `json:"methodResponses"`
	SessionState    string       `json:"sessionState"`
}

// result returns the arguments of the method response with the given call
// id, converting a method-level "error" response into a ProtocolError.
func (r *Response) result(callID string) (json.RawMessage, error) {
	for _, inv := range r.MethodResponses {
		if inv.CallID != callID {
			continue
		}
		if inv.Name == "error" {
			var me struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			_ = json.Unmarshal(inv.Args, &me)
			return nil, &ProtocolError{Type: me.Type, Message: me.Description}
		}
		return inv.Args, nil
	}
	return nil, &ProtocolError{Message: fmt.Sprintf("no response for method call %q", callID)}
}

// ResultReference lets one method call consume the output of an earlier
// call in the same request.
type ResultReference struct {
	ResultOf string `json:"resultOf"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// SortComparator is one entry of an Email/query sort order.
type SortComparator struct {
	Property    string `json:"property"`
	IsAscending bool   `json:"isAscending"`
}

// Filter selects emails either received after a cutoff or sent by a
// specific address. Exactly one field is set per use-case.
type Filter struct {
	After *time.Time `json:"after,omitempty"`
	From  string     `json:"from,omitempty"`
}

// Address is a parsed mailbox participant.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Email is the summary record fetched per message. Only the properties
// requested in the page request are populated.
type Email struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	From       []Address `json:"from"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// SenderAddress returns the lower-cased address of the first sender, or
// UnknownSender when the from field is absent or empty.
func (e Email) SenderAddress() string {
	if len(e.From) == 0 || e.From[0].Email == "" {
		return UnknownSender
	}
	return strings.ToLower(e.From[0].Email)
}

// Mailbox is the subset of mailbox properties needed for role lookups.
type Mailbox struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// SetError describes why a single email failed to update in an Email/set.
type SetError struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// SetResult summarizes one Email/set call.
type SetResult struct {
	Updated    int
	NotUpdated map[string]SetError
}
