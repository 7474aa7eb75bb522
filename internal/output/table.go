package output

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rra3/fastmail-tools/internal/mover"
	"github.com/rra3/fastmail-tools/internal/tally"
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []tally.SenderCount:
		return sendersTable(w, v)
	case *mover.Report:
		return moveReport(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

// sendersTable prints a ranked sender list. Rank and count columns are
// right-aligned to the width of their largest value.
func sendersTable(w io.Writer, senders []tally.SenderCount) error {
	if len(senders) == 0 {
		fmt.Fprintln(w, "No emails found.")
		return nil
	}

	rankWidth := len(strconv.Itoa(len(senders)))
	countWidth := len(strconv.Itoa(senders[0].Count))

	for i, s := range senders {
		fmt.Fprintf(w, "  %*d. %*d  %s\n", rankWidth, i+1, countWidth, s.Count, s.Address)
	}

	return nil
}

// moveReport prints the final move summary. Per-batch warnings were
// already surfaced during the run; only the total is repeated here.
func moveReport(w io.Writer, r *mover.Report) error {
	fmt.Fprintf(w, "Moved %d email(s) from %s to Trash.\n", r.Moved, r.Sender)
	if r.Warnings > 0 {
		fmt.Fprintf(w, "  %d email(s) could not be moved.\n", r.Warnings)
	}
	return nil
}
