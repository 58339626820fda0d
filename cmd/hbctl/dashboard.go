package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hummingbird-fin/hbctl/internal/cli"
	"github.com/hummingbird-fin/hbctl/internal/model"
	"github.com/hummingbird-fin/hbctl/internal/rail"
	"github.com/hummingbird-fin/hbctl/internal/store"
	"github.com/hummingbird-fin/hbctl/internal/transfer"
)

func dashboardCmd() *cobra.Command {
	var ack bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your accounts and recent activity",
		Long: `Show your account balances and, when a transfer is still in flight,
its current status.

Balances come from the backend and are cached locally, so the dashboard
still renders (with stale figures) when offline.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), ack)
		},
	}

	cmd.Flags().BoolVar(&ack, "ack", false, "acknowledge the open transfer and stop highlighting it")

	return cmd
}

func runDashboard(ctx context.Context, ack bool) error {
	localStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer localStore.Close()

	client := buildClient()

	name, balances := loadIdentity(ctx, client, localStore)

	var b strings.Builder
	fmt.Fprintf(&b, "Checking   %s\n", cli.AmountStyle.Render("$"+rail.FormatAmount(balances.Checking)))
	fmt.Fprintf(&b, "Savings    %s", cli.AmountStyle.Render("$"+rail.FormatAmount(balances.Savings)))
	fmt.Println(cli.RenderBox(fmt.Sprintf("Welcome back, %s", name), b.String()))

	if ack {
		localStore.ClearPendingFlag(ctx)
		return nil
	}

	// An unsettled transfer surfaces on every visit until it clears or
	// the user acknowledges it.
	if localStore.IsPendingFlagSet(ctx) {
		summary, resolveErr := transfer.ResolvePending(ctx, client, localStore, "")
		if resolveErr != nil {
			fmt.Println(cli.FormatWarning("A transfer is still open; run 'hbctl pending' for details."))
			return nil
		}
		fmt.Println(cli.FormatInfo("You have a transfer in flight:"))
		fmt.Println(renderSummary(summary))
	}

	return nil
}

// loadIdentity fetches the user's name and balances, caching them for
// offline renders and falling back to the cache when the backend is
// unreachable.
func loadIdentity(ctx context.Context, client identityReader, localStore *store.Store) (string, model.Balances) {
	user, err := client.GetMe(ctx)
	if err == nil {
		localStore.SaveUserName(ctx, user.Name)
		if balances, balErr := client.GetBalances(ctx); balErr == nil {
			localStore.SaveBalances(ctx, balances)
			return user.Name, balances
		}
		cached, _ := localStore.LoadBalances(ctx)
		return user.Name, cached
	}
	slog.Debug("identity fetch failed, using cached values", "error", err)

	name := localStore.LoadUserName(ctx)
	if name == "" {
		name = "there"
	}
	cached, _ := localStore.LoadBalances(ctx)
	return name, cached
}

type identityReader interface {
	GetMe(ctx context.Context) (*model.User, error)
	GetBalances(ctx context.Context) (model.Balances, error)
}
