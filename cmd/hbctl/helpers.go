package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hummingbird-fin/hbctl/internal/api"
	"github.com/hummingbird-fin/hbctl/internal/cli"
	"github.com/hummingbird-fin/hbctl/internal/common"
	"github.com/hummingbird-fin/hbctl/internal/config"
	"github.com/hummingbird-fin/hbctl/internal/otp"
	"github.com/hummingbird-fin/hbctl/internal/store"
	"github.com/hummingbird-fin/hbctl/internal/tui"
)

// loadSession reads the stored hb_session cookie value, or "" when the
// user has never logged in.
func loadSession() string {
	path, err := config.SessionPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is under the user's config dir
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// buildClient creates a backend client for the current session.
func buildClient() *api.Client {
	return api.NewClient(viper.GetString("api.base_url"), loadSession())
}

// requireSession fails early with a friendly message when not logged in.
func requireSession() (*api.Client, error) {
	session := loadSession()
	if session == "" {
		return nil, common.ErrSessionExpired
	}
	return api.NewClient(viper.GetString("api.base_url"), session), nil
}

// openStore opens the local store and scopes session state to the current
// login: a changed cookie wipes any leftover OTP bundle.
func openStore(ctx context.Context) (*store.Store, error) {
	path, err := config.StorePath()
	if err != nil {
		return nil, err
	}

	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if session := loadSession(); session != "" {
		// Only a fingerprint of the cookie is persisted, never the value.
		sum := sha256.Sum256([]byte(session))
		s.BeginSession(ctx, fmt.Sprintf("%x", sum[:8]))
	}

	return s, nil
}

// buildCollector selects the configured OTP collection surface.
func buildCollector(prompter *cli.Prompter) otp.Collector {
	if viper.GetString("otp.collector") == "form" {
		return tui.NewFormCollector()
	}
	return prompter
}

// simRequester issues a local simulated challenge and shows the code,
// used when the backend has no OTP dispatch (otp.simulate).
type simRequester struct {
	verifier *otp.LocalVerifier
	writer   io.Writer
}

func (r *simRequester) RequestChallenge(ctx context.Context, referenceID string) error {
	challenge, err := r.verifier.Issue(ctx, referenceID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.writer,
		cli.FormatInfo(fmt.Sprintf("Simulated code for %s: %s", referenceID, challenge.Code)))
	return err
}

// reportUnexpected forwards unexpected command failures to the backend's
// client-error endpoint, fire-and-forget. Expected user-level errors are
// not reported.
func reportUnexpected(err error) {
	var userErr *common.UserError
	if errors.As(err, &userErr) ||
		errors.Is(err, common.ErrSessionExpired) ||
		errors.Is(err, context.Canceled) {
		return
	}
	command := strings.Join(os.Args[1:], " ")
	common.LogError(err, "command failed unexpectedly", common.Fields{"command": command})
	buildClient().ReportClientError(err, command)
}
