// Package mover relocates batches of emails into a target mailbox.
package mover

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rra3/fastmail-tools/internal/jmap"
)

// DefaultBatchSize matches the page size used when collecting the emails.
const DefaultBatchSize = 50

// Client is the narrow JMAP surface the mover needs.
type Client interface {
	MoveEmails(ctx context.Context, s *jmap.Session, ids []string, mailboxID string) (jmap.SetResult, error)
}

// Report summarizes a completed move run. Warnings count emails the
// server refused to update; they are non-fatal.
type Report struct {
	Sender   string `json:"sender"`
	Moved    int    `json:"moved"`
	Warnings int    `json:"warnings"`
}

// Mover issues sequential fixed-size Email/set batches. Batches run one
// at a time to keep output ordering simple and avoid hammering the
// remote service.
type Mover struct {
	Client    Client
	BatchSize int                    // default 50
	Progress  func(moved, total int) // after each batch
	// Warnf surfaces non-fatal per-batch warnings to the user.
	Warnf  func(format string, args ...any)
	Logger zerolog.Logger
}

// Move relocates every given email into the mailbox. A batch-level error
// aborts the run; per-email failures are tallied as warnings and the run
// continues.
func (m *Mover) Move(ctx context.Context, s *jmap.Session, emails []jmap.Email, mailboxID string) (Report, error) {
	batchSize := m.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var report Report
	for start := 0; start < len(emails); start += batchSize {
		end := start + batchSize
		if end > len(emails) {
			end = len(emails)
		}

		ids := make([]string, 0, end-start)
		for _, e := range emails[start:end] {
			ids = append(ids, e.ID)
		}

		result, err := m.Client.MoveEmails(ctx, s, ids, mailboxID)
		if err != nil {
			return report, fmt.Errorf("move batch at %d: %w", start, err)
		}

		report.Moved += result.Updated
		if n := len(result.NotUpdated); n > 0 {
			report.Warnings += n
			for id, se := range result.NotUpdated {
				m.Logger.Warn().Str("email_id", id).Str("type", se.Type).Msg("email not moved")
			}
			if m.Warnf != nil {
				m.Warnf("  warning: %d emails failed to move", n)
			}
		}

		if m.Progress != nil {
			m.Progress(report.Moved, len(emails))
		}
	}
	return report, nil
}
