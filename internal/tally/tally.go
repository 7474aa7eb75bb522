// Package tally counts emails per sender and picks the most frequent ones.
package tally

import (
	"sort"
	"strings"

	"github.com/rra3/fastmail-tools/internal/jmap"
)

// SenderCount is one row of the top-senders ranking.
type SenderCount struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

// Tally accumulates per-sender counts across all pages of a run. Senders
// are case-folded; first-seen order is kept so that ties rank stably.
type Tally struct {
	counts map[string]int
	order  []string
	total  int
}

// New returns an empty tally.
func New() *Tally {
	return &Tally{counts: make(map[string]int)}
}

// Add records one email from the given sender address. Empty addresses
// count against the unknown-sender sentinel.
func (t *Tally) Add(address string) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		addr = jmap.UnknownSender
	}
	if _, seen := t.counts[addr]; !seen {
		t.order = append(t.order, addr)
	}
	t.counts[addr]++
	t.total++
}

// AddEmail records one email by its sender address.
func (t *Tally) AddEmail(e jmap.Email) {
	t.Add(e.SenderAddress())
}

// Total returns the number of emails recorded.
func (t *Tally) Total() int {
	return t.total
}

// Unique returns the number of distinct senders.
func (t *Tally) Unique() int {
	return len(t.counts)
}

// Top returns up to n senders ordered by count descending. Senders with
// equal counts keep their first-seen order.
func (t *Tally) Top(n int) []SenderCount {
	ranked := make([]SenderCount, 0, len(t.order))
	for _, addr := range t.order {
		ranked = append(ranked, SenderCount{Address: addr, Count: t.counts[addr]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
