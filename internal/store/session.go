package store

import (
	"context"
	"encoding/json"

	"github.com/hummingbird-fin/hbctl/internal/model"
)

// SaveOTPBundle persists the active challenge in session scope, so a crash
// mid-verification can resume within the same session. Failures are
// swallowed; a lost bundle just forces a fresh transfer.
func (s *Store) SaveOTPBundle(ctx context.Context, challenge *model.OTPChallenge) {
	if challenge == nil {
		return
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		logStoreFailure("marshal otp bundle", err)
		return
	}
	if err := s.set(ctx, "session_state", keyOTPBundle, string(data)); err != nil {
		logStoreFailure("save otp bundle", err)
	}
}

// LoadOTPBundle returns the active challenge, or nil when missing or
// unparseable.
func (s *Store) LoadOTPBundle(ctx context.Context) *model.OTPChallenge {
	raw, ok := s.get(ctx, "session_state", keyOTPBundle)
	if !ok {
		return nil
	}

	var challenge model.OTPChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		logStoreFailure("parse otp bundle", err)
		return nil
	}
	return &challenge
}

// ClearOTPBundle removes the active challenge. Called on successful
// verification or explicit reset.
func (s *Store) ClearOTPBundle(ctx context.Context) {
	if err := s.delete(ctx, "session_state", keyOTPBundle); err != nil {
		logStoreFailure("clear otp bundle", err)
	}
}
