package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hummingbird-fin/hbctl/internal/cli"
	"github.com/hummingbird-fin/hbctl/internal/model"
	"github.com/hummingbird-fin/hbctl/internal/otp"
	"github.com/hummingbird-fin/hbctl/internal/rail"
	"github.com/hummingbird-fin/hbctl/internal/transfer"
)

func transferCmd() *cobra.Command {
	var (
		fromAccount string
		recipient   string
		amount      string
		note        string
		fieldFlags  []string
	)

	cmd := &cobra.Command{
		Use:   "transfer <rail>",
		Short: "Send money over a payment rail",
		Long: `Send money over one of the supported rails.

Prompts for the draft interactively unless --to and --amount are given,
then confirms the transfer with a one-time passcode. Run without
arguments to list the available rails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRails(cmd)
			}
			desc, err := rail.Lookup(args[0])
			if err != nil {
				return err
			}
			return runTransfer(cmd.Context(), desc, draftFlags{
				fromAccount: fromAccount,
				recipient:   recipient,
				amount:      amount,
				note:        note,
				fields:      fieldFlags,
			})
		},
	}

	cmd.Flags().StringVar(&fromAccount, "from", "checking", "funding account (checking, savings)")
	cmd.Flags().StringVar(&recipient, "to", "", "recipient identifier for the rail")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in USD")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	cmd.Flags().StringArrayVar(&fieldFlags, "field", nil, "rail-specific field as key=value (repeatable)")

	return cmd
}

func listRails(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Available rails"))
	for _, d := range rail.All() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s (%s)\n", d.Name, d.Label, d.Hint)
	}
	return nil
}

type draftFlags struct {
	fromAccount string
	recipient   string
	amount      string
	note        string
	fields      []string
}

// nonInteractive reports whether the flags alone describe a full draft.
func (f draftFlags) nonInteractive() bool {
	return f.recipient != "" && f.amount != ""
}

func (f draftFlags) draft() (*model.TransferDraft, error) {
	account := model.AccountType(strings.ToLower(f.fromAccount))
	if account != model.AccountChecking && account != model.AccountSavings {
		return nil, fmt.Errorf("unknown account %q: use checking or savings", f.fromAccount)
	}

	fields := make(map[string]string, len(f.fields))
	for _, pair := range f.fields {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --field %q: expected key=value", pair)
		}
		fields[key] = value
	}

	return &model.TransferDraft{
		FromAccount: account,
		Recipient:   f.recipient,
		RawAmount:   f.amount,
		Note:        f.note,
		Fields:      fields,
	}, nil
}

func runTransfer(ctx context.Context, desc *rail.Descriptor, flags draftFlags) error {
	client, err := requireSession()
	if err != nil {
		return err
	}

	localStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer localStore.Close()

	prompter := cli.NewPrompter(nil, nil)

	var draft *model.TransferDraft
	if flags.nonInteractive() {
		draft, err = flags.draft()
	} else {
		draft, err = prompter.PromptDraft(ctx, desc)
	}
	if err != nil {
		return err
	}

	var (
		verifier  otp.Verifier
		requester transfer.ChallengeRequester
	)
	if viper.GetBool("otp.simulate") {
		local := otp.NewLocalVerifier(localStore)
		verifier = local
		requester = &simRequester{verifier: local, writer: os.Stdout}
	} else {
		verifier = otp.NewRemoteVerifier(client)
	}

	senderName := localStore.LoadUserName(ctx)
	if senderName == "" {
		senderName = "You"
	}

	controller, err := transfer.New(transfer.Config{
		Rail:       desc,
		Backend:    client,
		Store:      localStore,
		Collector:  buildCollector(prompter),
		Verifier:   verifier,
		Requester:  requester,
		Router:     &pendingRouter{client: client, store: localStore},
		Guard:      prompter,
		OnReject:   prompter.ShowRejection,
		SenderName: senderName,
	})
	if err != nil {
		return err
	}

	return controller.Run(ctx, draft)
}

// pendingRouter is the terminal client's stand-in for client-side
// navigation: arriving at the pending view means rendering it.
type pendingRouter struct {
	client transfer.StatusReader
	store  transfer.PendingStore
}

func (r *pendingRouter) Navigate(ctx context.Context, path string) error {
	u, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("bad navigation target %q: %w", path, err)
	}

	fmt.Println(cli.FormatSuccess("Transfer confirmed."))

	summary, err := transfer.ResolvePending(ctx, r.client, r.store, u.Query().Get("ref"))
	if err != nil {
		return err
	}
	fmt.Println(renderSummary(summary))
	return nil
}
