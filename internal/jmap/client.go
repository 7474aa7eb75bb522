// Package jmap implements the narrow slice of the JMAP mail protocol the
// fastmail-tools commands need: session resolution, paged Email/query+get,
// the Trash mailbox lookup, and batched Email/set moves.
package jmap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultSessionURL is Fastmail's JMAP session resource.
const DefaultSessionURL = "https://api.fastmail.com/jmap/session"

var usingCapabilities = []string{CoreCapability, MailCapability}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	SessionURL string
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Client talks to one JMAP server with one bearer token. It holds no
// session state; callers pass the Session explicitly so it can be
// replaced wholesale on refresh.
type Client struct {
	httpClient *http.Client
	sessionURL string
	token      string
	logger     zerolog.Logger
}

// New creates a Client for the given bearer token.
func New(token string, opts Options) *Client {
	if opts.SessionURL == "" {
		opts.SessionURL = DefaultSessionURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		sessionURL: opts.SessionURL,
		token:      token,
		logger:     opts.Logger.With().Str("component", "jmap").Logger(),
	}
}

// ResolveSession exchanges the bearer token for the account's API URL and
// mail account id. Safe to call any number of times; each call returns a
// fresh, fully-populated Session.
func (c *Client) ResolveSession(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionURL, nil)
	if err != nil {
		return nil, &ProtocolError{Message: "build session request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "resolve session", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Status: resp.StatusCode, Message: "session request rejected"}
	}

	var sr struct {
		APIURL          string                     `json:"apiUrl"`
		PrimaryAccounts map[string]string          `json:"primaryAccounts"`
		Accounts        map[string]json.RawMessage `json:"accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("malformed session response: %v", err)}
	}

	accountID := sr.PrimaryAccounts[MailCapability]
	if accountID == "" && len(sr.Accounts) == 1 {
		for id := range sr.Accounts {
			accountID = id
		}
	}
	if sr.APIURL == "" || accountID == "" {
		return nil, &AuthError{Message: "session response missing apiUrl or mail account"}
	}

	c.logger.Debug().Str("account_id", accountID).Msg("session resolved")
	return &Session{APIURL: sr.APIURL, AccountID: accountID}, nil
}

// call posts a batch of method calls to the session's API URL and decodes
// the response, classifying failures into the error taxonomy.
func (c *Client) call(ctx context.Context, s *Session, calls []Invocation) (*Response, error) {
	body, err := json.Marshal(Request{Using: usingCapabilities, MethodCalls: calls})
	if err != nil {
		return nil, &ProtocolError{Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ProtocolError{Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", calls[0].Name).
		Int("calls", len(calls)).
		Msg("JMAP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: calls[0].Name, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode, Message: "session no longer valid"}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &ProtocolError{Status: resp.StatusCode, Message: resp.Status}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProtocolError{Message: "decode response", Err: err}
	}
	return &out, nil
}

// PageRequest describes one page of a paged email query.
type PageRequest struct {
	Filter         Filter
	Position       int
	Limit          int
	CalculateTotal bool
	Properties     []string // Email properties to fetch, e.g. ["from"]
}

// PageResult is one page of matching emails, with the query total when
// the server computed one.
type PageResult struct {
	Emails   []Email
	Total    int
	HasTotal bool
}

type queryArgs struct {
	AccountID      string           `json:"accountId"`
	Filter         *Filter          `json:"filter,omitempty"`
	Sort           []SortComparator `json:"sort,omitempty"`
	Position       int              `json:"position"`
	Limit          int              `json:"limit"`
	CalculateTotal bool             `json:"calculateTotal,omitempty"`
}

type getArgs struct {
	AccountID  string           `json:"accountId"`
	IDsRef     *ResultReference `json:"#ids,omitempty"`
	Properties []string         `json:"properties,omitempty"`
}

// QueryEmails runs one composite Email/query + Email/get round trip: the
// query selects ids matching the filter, newest first, at the requested
// position; the get resolves those ids through a back-reference in the
// same request. No server state is modified.
func (c *Client) QueryEmails(ctx context.Context, s *Session, req PageRequest) (PageResult, error) {
	query, err := invoke("Email/query", queryArgs{
		AccountID:      s.AccountID,
		Filter:         &req.Filter,
		Sort:           []SortComparator{{Property: "receivedAt", IsAscending: false}},
		Position:       req.Position,
		Limit:          req.Limit,
		CalculateTotal: req.CalculateTotal,
	}, "0")
	if err != nil {
		return PageResult{}, err
	}

	get, err := invoke("Email/get", getArgs{
		AccountID: s.AccountID,
		IDsRef: &ResultReference{
			ResultOf: "0",
			Name:     "Email/query",
			Path:     "/ids/*",
		},
		Properties: req.Properties,
	}, "1")
	if err != nil {
		return PageResult{}, err
	}

	resp, err := c.call(ctx, s, []Invocation{query, get})
	if err != nil {
		return PageResult{}, err
	}

	queryRaw, err := resp.result("0")
	if err != nil {
		return PageResult{}, err
	}
	var q struct {
		Total *int `json:"total"`
	}
	if err := json.Unmarshal(queryRaw, &q); err != nil {
		return PageResult{}, &ProtocolError{Message: "decode Email/query result", Err: err}
	}

	getRaw, err := resp.result("1")
	if err != nil {
		return PageResult{}, err
	}
	var g struct {
		List []Email `json:"list"`
	}
	if err := json.Unmarshal(getRaw, &g); err != nil {
		return PageResult{}, &ProtocolError{Message: "decode Email/get result", Err: err}
	}

	out := PageResult{Emails: g.List}
	if q.Total != nil {
		out.Total = *q.Total
		out.HasTotal = true
	}
	return out, nil
}

type setArgs struct {
	AccountID string                `json:"accountId"`
	Update    map[string]emailPatch `json:"update"`
}

type emailPatch struct {
	MailboxIDs map[string]bool `json:"mailboxIds"`
}

// MoveEmails issues one Email/set that re-homes every given email into
// the target mailbox. Per-email failures come back in the result rather
// than as an error.
func (c *Client) MoveEmails(ctx context.Context, s *Session, ids []string, mailboxID string) (SetResult, error) {
	update := make(map[string]emailPatch, len(ids))
	for _, id := range ids {
		update[id] = emailPatch{MailboxIDs: map[string]bool{mailboxID: true}}
	}

	set, err := invoke("Email/set", setArgs{AccountID: s.AccountID, Update: update}, "0")
	if err != nil {
		return SetResult{}, err
	}

	resp, err := c.call(ctx, s, []Invocation{set})
	if err != nil {
		return SetResult{}, err
	}

	raw, err := resp.result("0")
	if err != nil {
		return SetResult{}, err
	}
	var sr struct {
		Updated    map[string]json.RawMessage `json:"updated"`
		NotUpdated map[string]SetError        `json:"notUpdated"`
	}
	if err := json.Unmarshal(raw, &sr); err != nil {
		return SetResult{}, &ProtocolError{Message: "decode Email/set result", Err: err}
	}

	return SetResult{Updated: len(sr.Updated), NotUpdated: sr.NotUpdated}, nil
}
