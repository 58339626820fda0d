package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hummingbird-fin/hbctl/internal/cli"
	"github.com/hummingbird-fin/hbctl/internal/common"
	"github.com/hummingbird-fin/hbctl/internal/config"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage your login session",
	}

	cmd.AddCommand(sessionLoginCmd())
	cmd.AddCommand(sessionLogoutCmd())
	cmd.AddCommand(sessionStatusCmd())

	return cmd
}

func sessionLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store a session token for backend access",
		Long: `Store the hb_session value from an authenticated browser session.

hbctl does not handle passwords; sign in at the bank's web app, copy the
hb_session cookie value, and paste it here.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.OutOrStdout(), cli.FormatPrompt("hb_session value"))

			token, err := cli.NewLineReader(cmd.InOrStdin()).ReadLine(cmd.Context())
			if err != nil {
				return err
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return common.NewUserError("no session value given", nil)
			}

			if err := saveSession(token); err != nil {
				return err
			}

			// Prove the token works before declaring success.
			client, err := requireSession()
			if err != nil {
				return err
			}
			user, err := client.GetMe(cmd.Context())
			if err != nil {
				return fmt.Errorf("session stored but the backend rejected it: %w", err)
			}

			rememberUser(cmd.Context(), user.Name)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Logged in as %s.", user.Name)))
			return nil
		},
	}
}

func sessionLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.SessionPath()
			if err != nil {
				return err
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged out."))
			return nil
		},
	}
}

func sessionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := requireSession()
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Not logged in. Run 'hbctl session login'."))
				return nil
			}

			user, err := client.GetMe(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatError("Session is no longer valid. Run 'hbctl session login'."))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Logged in as %s.", user.Name)))
			return nil
		},
	}
}

// saveSession writes the session token readable only by the user.
func saveSession(token string) error {
	path, err := config.SessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// rememberUser caches the display name so the dashboard greets by name
// even offline. Store failures only log.
func rememberUser(ctx context.Context, name string) {
	localStore, err := openStore(ctx)
	if err != nil {
		return
	}
	defer localStore.Close()
	localStore.SaveUserName(ctx, name)
}
