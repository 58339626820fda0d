// Package otp implements the challenge/verify protocol that gates every
// transfer: a 6-digit code bound to one transfer reference, a bounded
// attempt budget, and a validity window.
//
// Verification comes in two flavors behind one interface: the remote
// verifier delegating to the backend confirm endpoint, and a local
// simulator with the same semantics for offline development.
package otp

// RejectReason classifies a failed verification.
type RejectReason string

// Verification failure reasons.
const (
	ReasonExpired  RejectReason = "EXPIRED"
	ReasonLocked   RejectReason = "LOCKED"
	ReasonMismatch RejectReason = "MISMATCH"
	ReasonNetwork  RejectReason = "NETWORK"
)

// VerifyError is a rejected verification attempt.
type VerifyError struct {
	Reason  RejectReason
	Message string
}

func (e *VerifyError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Reason {
	case ReasonExpired:
		return "code expired, restart the transfer"
	case ReasonLocked:
		return "too many attempts, restart the transfer"
	case ReasonNetwork:
		return "could not reach the bank, try again"
	default:
		return "incorrect code"
	}
}

// Retryable reports whether the same challenge can be attempted again.
// Only a network failure and a plain mismatch leave the challenge alive.
func (e *VerifyError) Retryable() bool {
	return e.Reason == ReasonNetwork || e.Reason == ReasonMismatch
}
