package tally

import (
	"testing"

	"github.com/rra3/fastmail-tools/internal/jmap"
)

func TestTopOrdersByCount(t *testing.T) {
	tl := New()
	for _, addr := range []string{"a@x.com", "a@x.com", "b@x.com", "c@x.com", "a@x.com", "b@x.com"} {
		tl.Add(addr)
	}

	top := tl.Top(2)
	want := []SenderCount{
		{Address: "a@x.com", Count: 3},
		{Address: "b@x.com", Count: 2},
	}
	if len(top) != len(want) {
		t.Fatalf("Top(2) = %v, want %v", top, want)
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("Top(2)[%d] = %v, want %v", i, top[i], want[i])
		}
	}

	if tl.Total() != 6 {
		t.Errorf("Total() = %d, want 6", tl.Total())
	}
	if tl.Unique() != 3 {
		t.Errorf("Unique() = %d, want 3", tl.Unique())
	}
}

func TestTiesKeepFirstSeenOrder(t *testing.T) {
	tl := New()
	for _, addr := range []string{"late@x.com", "early@x.com", "late@x.com", "early@x.com", "first@x.com"} {
		tl.Add(addr)
	}

	top := tl.Top(3)
	wantOrder := []string{"late@x.com", "early@x.com", "first@x.com"}
	for i, addr := range wantOrder {
		if top[i].Address != addr {
			t.Errorf("Top(3)[%d] = %s, want %s", i, top[i].Address, addr)
		}
	}
}

func TestCaseFolding(t *testing.T) {
	tl := New()
	tl.Add("News@Example.COM")
	tl.Add("news@example.com")
	tl.Add("NEWS@EXAMPLE.COM")

	top := tl.Top(5)
	if len(top) != 1 {
		t.Fatalf("Top(5) has %d buckets, want 1", len(top))
	}
	if top[0].Address != "news@example.com" || top[0].Count != 3 {
		t.Errorf("Top(5)[0] = %v, want news@example.com x3", top[0])
	}
}

func TestMissingSenderUsesSentinel(t *testing.T) {
	tl := New()
	tl.AddEmail(jmap.Email{ID: "e1"}) // no from field
	tl.Add("")
	tl.AddEmail(jmap.Email{ID: "e2", From: []jmap.Address{{Email: "A@X.com"}}})

	top := tl.Top(2)
	if top[0].Address != jmap.UnknownSender || top[0].Count != 2 {
		t.Errorf("Top[0] = %v, want %s x2", top[0], jmap.UnknownSender)
	}
	if top[1].Address != "a@x.com" {
		t.Errorf("Top[1] = %v, want a@x.com", top[1])
	}
}

func TestTopWithFewerSendersThanRequested(t *testing.T) {
	tl := New()
	tl.Add("solo@x.com")

	if top := tl.Top(25); len(top) != 1 {
		t.Errorf("Top(25) = %v, want a single entry", top)
	}
	if top := New().Top(25); len(top) != 0 {
		t.Errorf("Top on empty tally = %v, want none", top)
	}
}
