package otp

import (
	"context"
	"errors"
	"strings"

	"github.com/hummingbird-fin/hbctl/internal/api"
	"github.com/hummingbird-fin/hbctl/internal/common"
)

// Verifier checks a code against a transfer reference. Returns nil on
// success and *VerifyError on rejection.
type Verifier interface {
	Verify(ctx context.Context, referenceID, code string) error
}

// Confirmer is the slice of the backend client the remote verifier uses.
type Confirmer interface {
	ConfirmTransfer(ctx context.Context, referenceID, otp string) (*api.ConfirmResult, error)
}

// RemoteVerifier delegates verification to the backend confirm endpoint.
// The backend owns the TTL and attempt budget; this side only classifies
// its answers.
type RemoteVerifier struct {
	client Confirmer
}

// NewRemoteVerifier creates a backend-delegating verifier.
func NewRemoteVerifier(client Confirmer) *RemoteVerifier {
	return &RemoteVerifier{client: client}
}

// Verify submits the code for confirmation.
func (v *RemoteVerifier) Verify(ctx context.Context, referenceID, code string) error {
	result, err := v.client.ConfirmTransfer(ctx, referenceID, code)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		if common.IsRetryable(err) || errors.Is(err, common.ErrBackendDown) {
			return &VerifyError{Reason: ReasonNetwork, Message: err.Error()}
		}
		return &VerifyError{Reason: ReasonNetwork, Message: common.UserMessage(err, "verification failed, try again")}
	}

	if result.OK {
		return nil
	}
	return classifyRejection(result.Error)
}

// classifyRejection maps the backend's free-text rejection onto the reason
// taxonomy. Unknown text is a mismatch, surfaced verbatim.
func classifyRejection(text string) *VerifyError {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "expired"):
		return &VerifyError{Reason: ReasonExpired, Message: text}
	case strings.Contains(lower, "locked"), strings.Contains(lower, "too many"):
		return &VerifyError{Reason: ReasonLocked, Message: text}
	default:
		return &VerifyError{Reason: ReasonMismatch, Message: text}
	}
}
