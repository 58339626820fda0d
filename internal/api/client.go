// Package api is the thin REST client for the Hummingbird banking backend.
//
// Authorization rides on the hb_session cookie. Reads may retry; transfer
// creation never does, it carries an Idempotency-Key header instead so the
// backend can dedup a resent request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hummingbird-fin/hbctl/internal/common"
	"github.com/hummingbird-fin/hbctl/internal/model"
)

// Client talks to the banking backend.
type Client struct {
	baseURL    string
	session    string // hb_session cookie value
	userAgent  string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a backend client. session may be empty for
// unauthenticated calls (login itself).
func NewClient(baseURL, session string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		session:   session,
		userAgent: "hbctl",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.session})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	slog.Debug("backend request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", common.ErrBackendDown, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError surfaces the server-provided error text verbatim when present.
func (c *Client) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.text() != "" {
		return common.NewUserError(parsed.text(),
			fmt.Errorf("backend returned %d", resp.StatusCode))
	}

	err := fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(raw))
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %v", common.ErrBackendDown, err)
	}
	return err
}

// GetMe fetches the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*model.User, error) {
	var user model.User
	err := common.WithRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user)
	}, common.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBalances fetches current account balances.
func (c *Client) GetBalances(ctx context.Context) (model.Balances, error) {
	var balances model.Balances
	err := common.WithRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/accounts/balances", nil, nil, &balances)
	}, common.RetryOptions{MaxAttempts: 3})
	return balances, err
}

// CreateTransfer posts a new transfer on the given rail. Never retried
// client-side: a resubmission is a new attempt with a new reference.
func (c *Client) CreateTransfer(ctx context.Context, railName string, req CreateTransferRequest) (*CreateTransferResponse, error) {
	body := map[string]any{
		"fromAccount": req.FromAccount,
		"recipient":   req.Recipient,
		"amount":      req.Amount,
	}
	if req.Note != "" {
		body["note"] = req.Note
	}
	for k, v := range req.Fields {
		body[k] = v
	}

	headers := map[string]string{
		"Idempotency-Key": uuid.NewString(),
	}

	var resp CreateTransferResponse
	if err := c.do(ctx, http.MethodPost, "/transfers/"+railName, body, headers, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmTransfer submits an OTP for the given reference. A transport
// failure is returned as an error; a rejected code comes back in the
// result with OK=false.
func (c *Client) ConfirmTransfer(ctx context.Context, referenceID, otp string) (*ConfirmResult, error) {
	body := map[string]string{"otp": otp}

	var result ConfirmResult
	if err := c.do(ctx, http.MethodPost, "/transfers/"+referenceID+"/confirm", body, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransfer fetches the authoritative state of one transfer, used by the
// pending view. Retried: it is a pure read.
func (c *Client) GetTransfer(ctx context.Context, referenceID string) (*TransferStatus, error) {
	var status TransferStatus
	err := common.WithRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/transfers/"+referenceID, nil, nil, &status)
	}, common.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
