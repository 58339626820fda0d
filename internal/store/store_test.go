package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hummingbird-fin/hbctl/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "hbctl.db")
	s, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func testSnapshot(ref string) *model.TransferSnapshot {
	return &model.TransferSnapshot{
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:      model.StatusOTPRequired,
		Rail:        "paypal",
		ReferenceID: ref,
		Sender:      model.Party{Name: "Checking"},
		Recipient:   model.Party{Name: "friend@example.com"},
		Amount:      model.Amount{Currency: "USD", Value: 25.00},
		Cancelable:  true,
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.Nil(t, s.LoadSnapshot(ctx), "empty store loads nil")

	want := testSnapshot("PP-ABC12345")
	s.SaveSnapshot(ctx, want)

	got := s.LoadSnapshot(ctx)
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)
}

func TestSnapshotOverwrite(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SaveSnapshot(ctx, testSnapshot("PP-FIRST111"))
	s.SaveSnapshot(ctx, testSnapshot("PP-SECOND22"))

	got := s.LoadSnapshot(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "PP-SECOND22", got.ReferenceID, "single slot, last write wins")
}

func TestSnapshotCorruptionDegradesToNil(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.set(ctx, "local_state", KeyLastTransfer, "{not json"))
	assert.Nil(t, s.LoadSnapshot(ctx))
}

func TestClearSnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SaveSnapshot(ctx, testSnapshot("PP-ABC12345"))
	s.ClearSnapshot(ctx)
	assert.Nil(t, s.LoadSnapshot(ctx))
}

func TestPendingFlagIdempotence(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.False(t, s.IsPendingFlagSet(ctx))

	s.SetPendingFlag(ctx)
	assert.True(t, s.IsPendingFlagSet(ctx))

	s.SetPendingFlag(ctx)
	assert.True(t, s.IsPendingFlagSet(ctx), "setting twice behaves like setting once")

	s.ClearPendingFlag(ctx)
	assert.False(t, s.IsPendingFlagSet(ctx))

	s.ClearPendingFlag(ctx)
	assert.False(t, s.IsPendingFlagSet(ctx))
}

func TestDisplayFallbacks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.Empty(t, s.LoadUserName(ctx))
	_, ok := s.LoadBalances(ctx)
	assert.False(t, ok)

	s.SaveUserName(ctx, "Jane Doe")
	s.SaveBalances(ctx, model.Balances{Checking: 5023.75, Savings: 12000})

	assert.Equal(t, "Jane Doe", s.LoadUserName(ctx))

	balances, ok := s.LoadBalances(ctx)
	require.True(t, ok)
	assert.InDelta(t, 5023.75, balances.Checking, 0.001)
	assert.InDelta(t, 12000.00, balances.Savings, 0.001)
}

func TestOTPBundleSessionScope(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.BeginSession(ctx, "session-a")

	challenge := &model.OTPChallenge{
		Ref:          "PP-ABC12345",
		Code:         "654321",
		ExpiresAt:    time.Now().Add(5 * time.Minute).UnixMilli(),
		AttemptsLeft: 5,
	}
	s.SaveOTPBundle(ctx, challenge)

	got := s.LoadOTPBundle(ctx)
	require.NotNil(t, got)
	assert.Equal(t, *challenge, *got)

	// Same session again: bundle survives.
	s.BeginSession(ctx, "session-a")
	assert.NotNil(t, s.LoadOTPBundle(ctx))

	// New session: session scope is wiped.
	s.BeginSession(ctx, "session-b")
	assert.Nil(t, s.LoadOTPBundle(ctx))
}

func TestClearOTPBundle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	s.SaveOTPBundle(ctx, &model.OTPChallenge{Ref: "CA-XYZ", Code: "111222", AttemptsLeft: 5})
	s.ClearOTPBundle(ctx)
	assert.Nil(t, s.LoadOTPBundle(ctx))
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
