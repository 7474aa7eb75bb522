package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rra3/fastmail-tools/internal/jmap"
	"github.com/rra3/fastmail-tools/internal/output"
	"github.com/rra3/fastmail-tools/internal/paginate"
	"github.com/rra3/fastmail-tools/internal/tally"
)

var (
	topNumber int
	topMonths int
)

var topSendersCmd = &cobra.Command{
	Use:   "top-senders",
	Short: "Show the most frequent senders over recent months",
	Long: `top-senders scans every email received in the lookback window and
prints the senders ranked by message count. Useful for spotting
newsletters and notification floods worth unsubscribing from.`,
	RunE: runTopSenders,
}

func init() {
	topSendersCmd.Flags().IntVarP(&topNumber, "number", "n", 25,
		"how many senders to show")
	topSendersCmd.Flags().IntVar(&topMonths, "months", 6,
		"how many months back to scan")
	rootCmd.AddCommand(topSendersCmd)
}

func runTopSenders(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, client, err := newClient(logger)
	if err != nil {
		return err
	}

	// Flags win over config; config wins over the built-in defaults.
	if !cmd.Flags().Changed("number") {
		topNumber = cfg.TopSenders.Count
	}
	if !cmd.Flags().Changed("months") {
		topMonths = cfg.TopSenders.Months
	}

	ctx := cmd.Context()
	session, err := client.ResolveSession(ctx)
	if err != nil {
		return err
	}

	// A month is approximated as 30 days; the ranking does not need
	// calendar precision.
	cutoff := time.Now().UTC().Add(-time.Duration(topMonths) * 30 * 24 * time.Hour)
	fmt.Fprintf(os.Stderr, "Fetching emails since %s...\n", cutoff.Format("2006-01-02"))

	terminal := NewTerminal()
	pager := &paginate.Paginator[jmap.Email]{
		Fetch: func(ctx context.Context, s *jmap.Session, position int, calculateTotal bool) (paginate.Page[jmap.Email], error) {
			page, err := client.QueryEmails(ctx, s, jmap.PageRequest{
				Filter:         jmap.Filter{After: &cutoff},
				Position:       position,
				Limit:          cfg.JMAP.PageSize,
				CalculateTotal: calculateTotal,
				Properties:     []string{"from"},
			})
			if err != nil {
				return paginate.Page[jmap.Email]{}, err
			}
			return paginate.Page[jmap.Email]{Items: page.Emails, Total: page.Total, HasTotal: page.HasTotal}, nil
		},
		Resolve:    client.ResolveSession,
		MaxRetries: cfg.Retry.MaxRetries,
		Backoff:    cfg.Retry.Backoff(),
		Progress: func(fetched, total int) {
			terminal.Progressf("  fetched %d/%s emails...", fetched, formatTotal(total))
		},
		Logger: logger,
	}

	result, err := pager.Run(ctx, session)
	terminal.EndProgress()
	if err != nil {
		return err
	}

	counts := tally.New()
	for _, e := range result.Items {
		counts.AddEmail(e)
	}

	if counts.Total() == 0 {
		fmt.Println("No emails found.")
		return nil
	}

	if err := output.Output(outputFmt, counts.Top(topNumber)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "  %d unique senders, %d emails total\n", counts.Unique(), counts.Total())
	return nil
}
