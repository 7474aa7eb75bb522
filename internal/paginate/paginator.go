// Package paginate drives a paged JMAP query to completion, riding out
// transient network failures and session expiry along the way. Both the
// sender tally and the trash move share this loop; only the fetch
// function and the consumer differ.
package paginate

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rra3/fastmail-tools/internal/jmap"
)

// Defaults mirror the remote service's tolerance for polite clients:
// up to 5 consecutive retries, exponential backoff starting at 2s
// (worst case ~62s of waiting before giving up), and a short fixed pause
// after refreshing an expired session.
const (
	DefaultMaxRetries = 5
	DefaultBackoff    = 2 * time.Second
	DefaultAuthDelay  = 1 * time.Second
)

// Page is one fetched page of items, with the query total when the
// server computed one.
type Page[T any] struct {
	Items    []T
	Total    int
	HasTotal bool
}

// FetchFunc fetches the page at the given cursor position. calculateTotal
// is set only while the total is still unknown; computing it server-side
// is expensive, so it is requested once and cached.
type FetchFunc[T any] func(ctx context.Context, s *jmap.Session, position int, calculateTotal bool) (Page[T], error)

// ResolveFunc produces a fresh session after the current one expires.
type ResolveFunc func(ctx context.Context) (*jmap.Session, error)

// ProgressFunc is called after every successful page with the running
// item count and the best-known total (-1 while unknown).
type ProgressFunc func(fetched, total int)

// Result is the accumulated outcome of a completed run.
type Result[T any] struct {
	Items    []T
	Fetched  int           // items fetched before any Limit truncation
	Total    int           // server-reported total, valid when HasTotal
	HasTotal bool          // false when the server never reported a total
	Session  *jmap.Session // the session in use at the end, possibly refreshed
}

// Paginator walks a paged query from position 0 until the server runs out
// of items or the known total is reached.
type Paginator[T any] struct {
	Fetch   FetchFunc[T]
	Resolve ResolveFunc

	MaxRetries int           // consecutive failures tolerated; default 5
	Backoff    time.Duration // exponential backoff base; default 2s
	AuthDelay  time.Duration // fixed delay after a session refresh; default 1s
	Limit      int           // stop after this many items; 0 = unlimited
	Progress   ProgressFunc
	Logger     zerolog.Logger

	sleep func(context.Context, time.Duration) error // overridden in tests
}

type state int

const (
	stateFetching state = iota
	stateBackoff
	stateDone
	stateFailed
)

// Run executes the pagination state machine. Transport errors back off
// exponentially; auth errors refresh the session and pause briefly;
// protocol errors abort immediately. The retry counter resets on every
// successful page, so only consecutive failures count against the cap.
func (p *Paginator[T]) Run(ctx context.Context, session *jmap.Session) (Result[T], error) {
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	authDelay := p.AuthDelay
	if authDelay <= 0 {
		authDelay = DefaultAuthDelay
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = waitFor
	}

	var (
		items    []T
		position int
		total    int
		hasTotal bool
		retries  int
		wait     time.Duration
		failure  error
	)

	st := stateFetching
	for {
		switch st {
		case stateFetching:
			page, err := p.Fetch(ctx, session, position, !hasTotal)
			if err != nil {
				st, session, wait, failure = p.handleFetchError(ctx, err, session, &retries, maxRetries, backoff, authDelay)
				continue
			}
			retries = 0

			if !hasTotal && page.HasTotal {
				total = page.Total
				hasTotal = true
			}
			if len(page.Items) == 0 {
				st = stateDone
				continue
			}

			items = append(items, page.Items...)
			position += len(page.Items)
			if p.Progress != nil {
				reported := -1
				if hasTotal {
					reported = total
				}
				p.Progress(position, reported)
			}

			if p.Limit > 0 && len(items) >= p.Limit {
				items = items[:p.Limit]
				st = stateDone
				continue
			}
			if hasTotal && position >= total {
				st = stateDone
			}

		case stateBackoff:
			if err := sleep(ctx, wait); err != nil {
				failure = err
				st = stateFailed
				continue
			}
			st = stateFetching

		case stateDone:
			return Result[T]{
				Items:    items,
				Fetched:  position,
				Total:    total,
				HasTotal: hasTotal,
				Session:  session,
			}, nil

		case stateFailed:
			return Result[T]{}, failure
		}
	}
}

// handleFetchError classifies a fetch failure and decides the next state.
func (p *Paginator[T]) handleFetchError(
	ctx context.Context,
	err error,
	session *jmap.Session,
	retries *int,
	maxRetries int,
	backoff, authDelay time.Duration,
) (state, *jmap.Session, time.Duration, error) {
	var transportErr *jmap.TransportError
	var authErr *jmap.AuthError

	switch {
	case errors.As(err, &transportErr):
		*retries++
		if *retries > maxRetries {
			p.Logger.Error().Err(err).Int("retries", *retries-1).Msg("giving up after repeated connection errors")
			return stateFailed, session, 0, err
		}
		wait := backoff << (*retries - 1)
		p.Logger.Warn().
			Err(err).
			Int("retry", *retries).
			Int("max_retries", maxRetries).
			Dur("backoff", wait).
			Msg("connection error, backing off")
		return stateBackoff, session, wait, nil

	case errors.As(err, &authErr):
		*retries++
		if *retries > maxRetries {
			p.Logger.Error().Err(err).Msg("giving up after repeated session expiry")
			return stateFailed, session, 0, err
		}
		p.Logger.Warn().Int("retry", *retries).Msg("session expired, refreshing")
		fresh, rerr := p.Resolve(ctx)
		if rerr != nil {
			return stateFailed, session, 0, rerr
		}
		return stateBackoff, fresh, authDelay, nil

	default:
		// Protocol errors and anything unclassified: a retry cannot fix a
		// structural mismatch with the server.
		return stateFailed, session, 0, err
	}
}

// waitFor blocks for the duration, bailing early if the context ends.
func waitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
