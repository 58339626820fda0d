package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hummingbird-fin/hbctl/internal/common"
	"github.com/hummingbird-fin/hbctl/internal/model"
)

func TestGetMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		cookie, err := r.Cookie(SessionCookieName)
		require.NoError(t, err)
		assert.Equal(t, "sess-123", cookie.Value)

		_ = json.NewEncoder(w).Encode(model.User{
			Name: "Jane Doe",
			Role: "customer",
			Balances: model.Balances{
				Checking: 5023.75,
				Savings:  12000,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sess-123")
	user, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.InDelta(t, 5023.75, user.Balances.Checking, 0.001)
}

func TestGetMeSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "stale")
	_, err := client.GetMe(context.Background())
	assert.ErrorIs(t, err, common.ErrSessionExpired)
}

func TestCreateTransfer(t *testing.T) {
	var gotBody map[string]any
	var gotIdempotencyKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers/paypal", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(CreateTransferResponse{
			ReferenceID: "PP-ABC123",
			Status:      "OTP_REQUIRED",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sess-123")
	resp, err := client.CreateTransfer(context.Background(), "paypal", CreateTransferRequest{
		FromAccount: model.AccountChecking,
		Recipient:   "friend@example.com",
		Amount:      "25.00",
		Note:        "lunch",
		Fields:      map[string]string{"railId": "pp-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "PP-ABC123", resp.Reference())
	assert.Equal(t, "OTP_REQUIRED", resp.Status)
	assert.NotEmpty(t, gotIdempotencyKey)

	assert.Equal(t, "checking", gotBody["fromAccount"])
	assert.Equal(t, "friend@example.com", gotBody["recipient"])
	assert.Equal(t, "25.00", gotBody["amount"])
	assert.Equal(t, "lunch", gotBody["note"])
	assert.Equal(t, "pp-1", gotBody["railId"], "rail-specific fields merged into the body")
}

func TestCreateTransferServerMessageVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Daily limit exceeded"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sess-123")
	_, err := client.CreateTransfer(context.Background(), "cashapp", CreateTransferRequest{
		FromAccount: model.AccountChecking,
		Recipient:   "$jane",
		Amount:      "10.00",
	})
	require.Error(t, err)
	assert.Equal(t, "Daily limit exceeded", common.UserMessage(err, ""))
}

func TestConfirmTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers/PP-ABC123/confirm", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["otp"] == "654321" {
			_ = json.NewEncoder(w).Encode(ConfirmResult{OK: true})
			return
		}
		_ = json.NewEncoder(w).Encode(ConfirmResult{OK: false, Error: "Invalid code"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sess-123")

	result, err := client.ConfirmTransfer(context.Background(), "PP-ABC123", "654321")
	require.NoError(t, err)
	assert.True(t, result.OK)

	result, err = client.ConfirmTransfer(context.Background(), "PP-ABC123", "000000")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, "Invalid code", result.Error)
}

func TestConfirmTransferNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, "sess-123")
	_, err := client.ConfirmTransfer(context.Background(), "PP-ABC123", "654321")
	assert.ErrorIs(t, err, common.ErrBackendDown)
}

func TestGetTransferRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(TransferStatus{
			ReferenceID: "PP-ABC123",
			Status:      model.StatusPendingAdmin,
			Rail:        "paypal",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sess-123")
	status, err := client.GetTransfer(context.Background(), "PP-ABC123")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingAdmin, status.Status)
	assert.Equal(t, 3, attempts)
}

func TestReferenceFallbackKeys(t *testing.T) {
	tests := []struct {
		name string
		resp CreateTransferResponse
		want string
	}{
		{name: "referenceId preferred", resp: CreateTransferResponse{ReferenceID: "A", ID: "B", Ref: "C"}, want: "A"},
		{name: "id next", resp: CreateTransferResponse{ID: "B", Ref: "C"}, want: "B"},
		{name: "ref last", resp: CreateTransferResponse{Ref: "C"}, want: "C"},
		{name: "all absent", resp: CreateTransferResponse{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Reference())
		})
	}
}

func TestReportClientError(t *testing.T) {
	var report map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/client-errors", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&report)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sess-123")
	client.ReportClientError(errors.New("unexpected failure"), "transfer paypal")

	require.NotNil(t, report)
	assert.Equal(t, "unexpected failure", report["message"])
	assert.Equal(t, "transfer paypal", report["command"])
	assert.NotEmpty(t, report["stack"])
}

func TestReportClientErrorSwallowsBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	server.Close()

	// Must not panic or block with the backend gone.
	client := NewClient(server.URL, "sess-123")
	client.ReportClientError(errors.New("boom"), "pending")
}
