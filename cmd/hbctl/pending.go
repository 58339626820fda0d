package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hummingbird-fin/hbctl/internal/cli"
	"github.com/hummingbird-fin/hbctl/internal/model"
	"github.com/hummingbird-fin/hbctl/internal/rail"
	"github.com/hummingbird-fin/hbctl/internal/transfer"
)

const watchPollInterval = 5 * time.Second

func pendingCmd() *cobra.Command {
	var (
		refID string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show the status of your pending transfer",
		Long: `Show the status of a submitted transfer.

Reads the backend when reachable and falls back to the locally stored
snapshot when offline, so the view works right after submission even
with no connectivity. With --watch, polls until the transfer settles.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			localStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer localStore.Close()

			client := buildClient()

			if watch {
				return watchPending(ctx, client, localStore, refID)
			}

			summary, err := transfer.ResolvePending(ctx, client, localStore, refID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&refID, "ref", "", "transfer reference id (default: most recent)")
	cmd.Flags().BoolVar(&watch, "watch", false, "poll until the transfer settles")

	return cmd
}

// watchPending polls the transfer until it reaches a terminal status or
// the context is cancelled.
func watchPending(ctx context.Context, client transfer.StatusReader, store transfer.PendingStore, refID string) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Waiting for the transfer to settle..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
	)

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		summary, err := transfer.ResolvePending(ctx, client, store, refID)
		if err != nil {
			return err
		}
		if summary.Status.Terminal() {
			_ = bar.Finish()
			fmt.Println()
			fmt.Println(renderSummary(summary))
			return nil
		}
		refID = summary.ReferenceID

		select {
		case <-ctx.Done():
			_ = bar.Finish()
			return ctx.Err()
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func renderSummary(s *transfer.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reference  %s\n", s.ReferenceID)
	fmt.Fprintf(&b, "Status     %s\n", renderStatus(s.Status))
	fmt.Fprintf(&b, "Rail       %s\n", railLabel(s.Rail))
	if s.Recipient.Name != "" {
		fmt.Fprintf(&b, "To         %s\n", s.Recipient.Name)
	}
	fmt.Fprintf(&b, "Amount     %s\n", cli.AmountStyle.Render("$"+rail.FormatAmount(s.Amount.Value)))
	if s.CreatedAt != "" {
		fmt.Fprintf(&b, "Created    %s\n", s.CreatedAt)
	}
	if s.EtaText != "" {
		fmt.Fprintf(&b, "ETA        %s\n", s.EtaText)
	}
	if s.FailReason != "" {
		fmt.Fprintf(&b, "Reason     %s\n", s.FailReason)
	}
	if !s.FromBackend {
		fmt.Fprintf(&b, "\n%s\n", cli.FormatWarning("Shown from the local copy; the backend was unreachable."))
	}

	return cli.RenderBox("Transfer", strings.TrimRight(b.String(), "\n"))
}

func renderStatus(status model.TransferStatus) string {
	switch status {
	case model.StatusCompleted:
		return cli.FormatSuccess(string(status))
	case model.StatusFailed:
		return cli.FormatError(string(status))
	default:
		return cli.FormatWarning(string(status))
	}
}

func railLabel(name string) string {
	desc, err := rail.Lookup(name)
	if err != nil {
		return name
	}
	return desc.Label
}
