package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/hummingbird-fin/hbctl/internal/model"
)

// ChallengeStore is the session-scoped persistence the local simulator
// needs. *store.Store satisfies it.
type ChallengeStore interface {
	SaveOTPBundle(ctx context.Context, challenge *model.OTPChallenge)
	LoadOTPBundle(ctx context.Context) *model.OTPChallenge
	ClearOTPBundle(ctx context.Context)
}

// LocalVerifier simulates the backend's OTP dispatch and verification with
// the same contract: a 5-minute validity window, 5 attempts, and strict
// scoping to one transfer reference. Used when hbctl runs against a
// backend without OTP support, or offline.
type LocalVerifier struct {
	store ChallengeStore
	now   func() time.Time
}

// NewLocalVerifier creates a simulator backed by the given session store.
func NewLocalVerifier(store ChallengeStore) *LocalVerifier {
	return &LocalVerifier{
		store: store,
		now:   time.Now,
	}
}

// Issue creates a fresh challenge for the reference, replacing any prior
// one. The code is returned so the caller can surface it; a real backend
// would deliver it out of band.
func (v *LocalVerifier) Issue(ctx context.Context, referenceID string) (*model.OTPChallenge, error) {
	code, err := randomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	challenge := &model.OTPChallenge{
		Ref:          referenceID,
		Code:         code,
		ExpiresAt:    v.now().Add(model.OTPChallengeTTL).UnixMilli(),
		AttemptsLeft: model.MaxOTPAttempts,
	}
	v.store.SaveOTPBundle(ctx, challenge)

	return challenge, nil
}

// Verify checks a code against the challenge issued for referenceID.
// A challenge issued under a different reference never matches, no matter
// the code. Returns nil on success, *VerifyError otherwise.
func (v *LocalVerifier) Verify(ctx context.Context, referenceID, code string) error {
	challenge := v.store.LoadOTPBundle(ctx)
	if challenge == nil || challenge.Ref != referenceID {
		return &VerifyError{Reason: ReasonExpired, Message: "no active code for this transfer"}
	}

	// Attempt budget is checked before the code: a locked challenge stays
	// locked even for the right code.
	if challenge.AttemptsLeft <= 0 {
		return &VerifyError{Reason: ReasonLocked}
	}

	if challenge.Expired(v.now()) {
		return &VerifyError{Reason: ReasonExpired}
	}

	if challenge.Code != code {
		challenge.AttemptsLeft--
		v.store.SaveOTPBundle(ctx, challenge)
		if challenge.AttemptsLeft <= 0 {
			return &VerifyError{Reason: ReasonLocked}
		}
		return &VerifyError{
			Reason:  ReasonMismatch,
			Message: fmt.Sprintf("incorrect code, %d attempts left", challenge.AttemptsLeft),
		}
	}

	v.store.ClearOTPBundle(ctx)
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
