package jmap

import (
	"context"
	"encoding/json"
)

type mailboxQueryArgs struct {
	AccountID string         `json:"accountId"`
	Filter    *mailboxFilter `json:"filter,omitempty"`
}

type mailboxFilter struct {
	Role string `json:"role"`
}

// TrashMailboxID locates the account's Trash mailbox by its role. A
// missing Trash mailbox is a NotFoundError; these tools cannot run
// without one.
func (c *Client) TrashMailboxID(ctx context.Context, s *Session) (string, error) {
	query, err := invoke("Mailbox/query", mailboxQueryArgs{
		AccountID: s.AccountID,
		Filter:    &mailboxFilter{Role: "trash"},
	}, "0")
	if err != nil {
		return "", err
	}

	get, err := invoke("Mailbox/get", getArgs{
		AccountID: s.AccountID,
		IDsRef: &ResultReference{
			ResultOf: "0",
			Name:     "Mailbox/query",
			Path:     "/ids/*",
		},
		Properties: []string{"id", "name", "role"},
	}, "1")
	if err != nil {
		return "", err
	}

	resp, err := c.call(ctx, s, []Invocation{query, get})
	if err != nil {
		return "", err
	}

	raw, err := resp.result("1")
	if err != nil {
		return "", err
	}
	var g struct {
		List []Mailbox `json:"list"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return "", &ProtocolError{Message: "decode Mailbox/get result", Err: err}
	}

	if len(g.List) == 0 {
		return "", &NotFoundError{Resource: "Trash mailbox"}
	}
	return g.List[0].ID, nil
}
