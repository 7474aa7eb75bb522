package mover

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rra3/fastmail-tools/internal/jmap"
)

// fakeClient records each batch and replays scripted results.
type fakeClient struct {
	batches   [][]string
	mailboxes []string
	results   []jmap.SetResult
	errs      []error
}

func (f *fakeClient) MoveEmails(_ context.Context, _ *jmap.Session, ids []string, mailboxID string) (jmap.SetResult, error) {
	call := len(f.batches)
	f.batches = append(f.batches, ids)
	f.mailboxes = append(f.mailboxes, mailboxID)
	if call < len(f.errs) && f.errs[call] != nil {
		return jmap.SetResult{}, f.errs[call]
	}
	if call < len(f.results) {
		return f.results[call], nil
	}
	return jmap.SetResult{Updated: len(ids)}, nil
}

func makeEmails(n int) []jmap.Email {
	out := make([]jmap.Email, n)
	for i := range out {
		out[i] = jmap.Email{ID: fmt.Sprintf("M%d", i)}
	}
	return out
}

func TestMoveBatches(t *testing.T) {
	fc := &fakeClient{}
	m := &Mover{Client: fc, Logger: zerolog.Nop()}

	report, err := m.Move(context.Background(), &jmap.Session{}, makeEmails(120), "trash-1")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	wantSizes := []int{50, 50, 20}
	if len(fc.batches) != len(wantSizes) {
		t.Fatalf("issued %d batches, want %d", len(fc.batches), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(fc.batches[i]) != want {
			t.Errorf("batch %d has %d ids, want %d", i, len(fc.batches[i]), want)
		}
		if fc.mailboxes[i] != "trash-1" {
			t.Errorf("batch %d targeted %q, want trash-1", i, fc.mailboxes[i])
		}
	}
	if report.Moved != 120 {
		t.Errorf("Moved = %d, want 120", report.Moved)
	}
	if report.Warnings != 0 {
		t.Errorf("Warnings = %d, want 0", report.Warnings)
	}
}

func TestMoveCountsNotUpdatedAsWarnings(t *testing.T) {
	fc := &fakeClient{
		results: []jmap.SetResult{
			{Updated: 48, NotUpdated: map[string]jmap.SetError{
				"M3": {Type: "notFound"},
				"M7": {Type: "forbidden"},
			}},
			{Updated: 10},
		},
	}
	m := &Mover{Client: fc, Logger: zerolog.Nop()}

	var warned []string
	m.Warnf = func(format string, args ...any) {
		warned = append(warned, fmt.Sprintf(format, args...))
	}

	report, err := m.Move(context.Background(), &jmap.Session{}, makeEmails(60), "trash-1")
	if err != nil {
		t.Fatalf("Move() error = %v (warnings must be non-fatal)", err)
	}
	if report.Moved != 58 {
		t.Errorf("Moved = %d, want 58", report.Moved)
	}
	if report.Warnings != 2 {
		t.Errorf("Warnings = %d, want 2", report.Warnings)
	}
	if len(warned) != 1 {
		t.Errorf("warned %v, want one warning line", warned)
	}
}

func TestMoveStopsOnBatchError(t *testing.T) {
	boom := &jmap.ProtocolError{Type: "serverFail", Message: "boom"}
	fc := &fakeClient{
		results: []jmap.SetResult{{Updated: 50}},
		errs:    []error{nil, boom},
	}
	m := &Mover{Client: fc, Logger: zerolog.Nop()}

	report, err := m.Move(context.Background(), &jmap.Session{}, makeEmails(120), "trash-1")
	if err == nil {
		t.Fatal("Move() succeeded, want batch error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
	if report.Moved != 50 {
		t.Errorf("Moved = %d, want the 50 from the completed batch", report.Moved)
	}
	if len(fc.batches) != 2 {
		t.Errorf("issued %d batches, want 2 (stop at failure)", len(fc.batches))
	}
}

func TestMoveProgress(t *testing.T) {
	fc := &fakeClient{}
	m := &Mover{Client: fc, Logger: zerolog.Nop()}

	type tick struct{ moved, total int }
	var ticks []tick
	m.Progress = func(moved, total int) { ticks = append(ticks, tick{moved, total}) }

	if _, err := m.Move(context.Background(), &jmap.Session{}, makeEmails(120), "trash-1"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	want := []tick{{50, 120}, {100, 120}, {120, 120}}
	if len(ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("tick %d = %+v, want %+v", i, ticks[i], want[i])
		}
	}
}

func TestMoveNothing(t *testing.T) {
	fc := &fakeClient{}
	m := &Mover{Client: fc, Logger: zerolog.Nop()}

	report, err := m.Move(context.Background(), &jmap.Session{}, nil, "trash-1")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if len(fc.batches) != 0 {
		t.Errorf("issued %d batches for an empty run, want 0", len(fc.batches))
	}
	if report.Moved != 0 {
		t.Errorf("Moved = %d, want 0", report.Moved)
	}
}
