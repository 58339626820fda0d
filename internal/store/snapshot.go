package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/hummingbird-fin/hbctl/internal/common"
	"github.com/hummingbird-fin/hbctl/internal/model"
)

// logStoreFailure records a swallowed persistence failure. Debug level
// only: the store is a resilience aid, and users should never see it fail.
func logStoreFailure(op string, err error) {
	common.LogDebug("local store operation failed", common.Fields{"op": op, "error": err})
}

// SaveSnapshot persists the snapshot under the single well-known slot,
// overwriting any prior value. Failures are swallowed.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *model.TransferSnapshot) {
	if snapshot == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		logStoreFailure("marshal snapshot", err)
		return
	}
	if err := s.set(ctx, "local_state", KeyLastTransfer, string(data)); err != nil {
		logStoreFailure("save snapshot", err)
	}
}

// LoadSnapshot returns the stored snapshot, or nil when missing or
// unparseable. It never fails.
func (s *Store) LoadSnapshot(ctx context.Context) *model.TransferSnapshot {
	raw, ok := s.get(ctx, "local_state", KeyLastTransfer)
	if !ok {
		return nil
	}

	var snapshot model.TransferSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		logStoreFailure("parse snapshot", err)
		return nil
	}
	return &snapshot
}

// ClearSnapshot removes the stored snapshot.
func (s *Store) ClearSnapshot(ctx context.Context) {
	if err := s.delete(ctx, "local_state", KeyLastTransfer); err != nil {
		logStoreFailure("clear snapshot", err)
	}
}

// SetPendingFlag raises the signal the dashboard reads to auto-open its
// recent-activity panel. Idempotent.
func (s *Store) SetPendingFlag(ctx context.Context) {
	if err := s.set(ctx, "local_state", KeyPendingFlag, pendingFlagValue); err != nil {
		logStoreFailure("set pending flag", err)
	}
}

// ClearPendingFlag lowers the pending signal.
func (s *Store) ClearPendingFlag(ctx context.Context) {
	if err := s.delete(ctx, "local_state", KeyPendingFlag); err != nil {
		logStoreFailure("clear pending flag", err)
	}
}

// IsPendingFlagSet reports whether the pending signal is raised.
func (s *Store) IsPendingFlagSet(ctx context.Context) bool {
	value, ok := s.get(ctx, "local_state", KeyPendingFlag)
	return ok && value == pendingFlagValue
}

// SaveUserName caches the profile name for offline display.
func (s *Store) SaveUserName(ctx context.Context, name string) {
	if err := s.set(ctx, "local_state", KeyUserName, name); err != nil {
		logStoreFailure("save user name", err)
	}
}

// LoadUserName returns the cached profile name, or "".
func (s *Store) LoadUserName(ctx context.Context) string {
	name, _ := s.get(ctx, "local_state", KeyUserName)
	return name
}

// SaveBalances caches the last known balances for the soft balance guard
// and offline display.
func (s *Store) SaveBalances(ctx context.Context, balances model.Balances) {
	checking := strconv.FormatFloat(balances.Checking, 'f', 2, 64)
	savings := strconv.FormatFloat(balances.Savings, 'f', 2, 64)

	if err := s.set(ctx, "local_state", KeyCheckingBal, checking); err != nil {
		logStoreFailure("save checking balance", err)
	}
	if err := s.set(ctx, "local_state", KeySavingsBal, savings); err != nil {
		logStoreFailure("save savings balance", err)
	}
}

// LoadBalances returns the cached balances. ok is false when either
// balance is missing or unparseable.
func (s *Store) LoadBalances(ctx context.Context) (model.Balances, bool) {
	rawChecking, okC := s.get(ctx, "local_state", KeyCheckingBal)
	rawSavings, okS := s.get(ctx, "local_state", KeySavingsBal)
	if !okC || !okS {
		return model.Balances{}, false
	}

	checking, errC := strconv.ParseFloat(rawChecking, 64)
	savings, errS := strconv.ParseFloat(rawSavings, 64)
	if errC != nil || errS != nil {
		return model.Balances{}, false
	}

	return model.Balances{Checking: checking, Savings: savings}, true
}
