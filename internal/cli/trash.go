package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rra3/fastmail-tools/internal/jmap"
	"github.com/rra3/fastmail-tools/internal/mover"
	"github.com/rra3/fastmail-tools/internal/output"
	"github.com/rra3/fastmail-tools/internal/paginate"
)

var (
	trashDryRun bool
	trashLimit  int
)

var trashCmd = &cobra.Command{
	Use:   "trash <sender>",
	Short: "Move every email from a sender to Trash",
	Long: `trash collects every email whose From address matches the given
sender and moves the lot into the Trash mailbox. Nothing is deleted;
Trash retention applies as usual.

Use --dry-run to see what would be moved first.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrash,
}

func init() {
	trashCmd.Flags().BoolVar(&trashDryRun, "dry-run", false,
		"list matching emails without moving anything")
	trashCmd.Flags().IntVar(&trashLimit, "limit", 0,
		"cap how many emails are collected (0 = all)")
	rootCmd.AddCommand(trashCmd)
}

func runTrash(cmd *cobra.Command, args []string) error {
	sender := args[0]

	logger := newLogger()
	cfg, client, err := newClient(logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := client.ResolveSession(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Finding emails from %s...\n", sender)

	terminal := NewTerminal()
	pager := &paginate.Paginator[jmap.Email]{
		Fetch: func(ctx context.Context, s *jmap.Session, position int, calculateTotal bool) (paginate.Page[jmap.Email], error) {
			page, err := client.QueryEmails(ctx, s, jmap.PageRequest{
				Filter:         jmap.Filter{From: sender},
				Position:       position,
				Limit:          cfg.JMAP.PageSize,
				CalculateTotal: calculateTotal,
				Properties:     []string{"id", "subject", "from", "receivedAt"},
			})
			if err != nil {
				return paginate.Page[jmap.Email]{}, err
			}
			return paginate.Page[jmap.Email]{Items: page.Emails, Total: page.Total, HasTotal: page.HasTotal}, nil
		},
		Resolve:    client.ResolveSession,
		MaxRetries: cfg.Retry.MaxRetries,
		Backoff:    cfg.Retry.Backoff(),
		Limit:      trashLimit,
		Progress: func(found, total int) {
			terminal.Progressf("  found %d/%s emails...", found, formatTotal(total))
		},
		Logger: logger,
	}

	result, err := pager.Run(ctx, session)
	terminal.EndProgress()
	if err != nil {
		return err
	}
	// The collection phase may have refreshed the session.
	session = result.Session

	if len(result.Items) == 0 {
		fmt.Println("No emails found.")
		return nil
	}
	fmt.Printf("Found %d email(s) from %s.\n", len(result.Items), sender)

	if trashDryRun {
		for _, e := range result.Items {
			date := "unknown date"
			if !e.ReceivedAt.IsZero() {
				date = e.ReceivedAt.Format("2006-01-02")
			}
			subject := e.Subject
			if subject == "" {
				subject = "(no subject)"
			}
			fmt.Printf("  %s  %s\n", date, subject)
		}
		fmt.Printf("\n  %d email(s) would be moved to Trash.\n", len(result.Items))
		return nil
	}

	trashID, err := client.TrashMailboxID(ctx, session)
	if err != nil {
		return err
	}

	m := &mover.Mover{
		Client:    client,
		BatchSize: cfg.JMAP.PageSize,
		Progress: func(moved, total int) {
			terminal.Progressf("  moved %d/%d emails...", moved, total)
		},
		Warnf:  terminal.Warnf,
		Logger: logger,
	}

	report, err := m.Move(ctx, session, result.Items, trashID)
	terminal.EndProgress()
	if err != nil {
		return err
	}

	report.Sender = sender
	return output.Output(outputFmt, &report)
}
