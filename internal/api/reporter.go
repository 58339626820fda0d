package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// clientErrorReport is the payload forwarded to the backend's logging
// endpoint for unexpected failures.
type clientErrorReport struct {
	Message   string `json:"message"`
	Stack     string `json:"stack,omitempty"`
	Command   string `json:"command,omitempty"`
	UserAgent string `json:"userAgent"`
}

// ReportClientError forwards an unexpected error to the backend,
// best-effort. It must never fail the user flow: a 3-second cap, no
// retries, and any failure is only logged at debug level. It runs
// synchronously so a report survives the process exiting right after.
func (c *Client) ReportClientError(err error, command string) {
	if err == nil {
		return
	}

	report := clientErrorReport{
		Message:   err.Error(),
		Stack:     string(debug.Stack()),
		Command:   command,
		UserAgent: c.userAgent,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, marshalErr := json.Marshal(report)
	if marshalErr != nil {
		return
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/client-errors", bytes.NewReader(data))
	if reqErr != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.session})
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		slog.Debug("client error report failed", "error", doErr)
		return
	}
	_ = resp.Body.Close()
}
