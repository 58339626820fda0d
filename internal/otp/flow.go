package otp

import (
	"context"
	"errors"
)

// State of a verification flow.
type State string

// Flow states. Verified and Locked are terminal.
const (
	StateIdle         State = "Idle"
	StateAwaitingCode State = "AwaitingCode"
	StateVerifying    State = "Verifying"
	StateVerified     State = "Verified"
	StateLocked       State = "Locked"
)

// Flow drives one verification: collect a code, verify it against the
// transfer reference, and loop on recoverable rejections until the budget
// runs out or the user gives up.
type Flow struct {
	referenceID string
	collector   Collector
	verifier    Verifier
	onReject    func(error)
	state       State
}

// FlowOption customizes a Flow.
type FlowOption func(*Flow)

// WithRejectHandler installs a callback invoked for every recoverable
// rejection (bad format, mismatch, network) before re-prompting.
func WithRejectHandler(fn func(error)) FlowOption {
	return func(f *Flow) { f.onReject = fn }
}

// NewFlow creates a verification flow scoped to one transfer reference.
func NewFlow(referenceID string, collector Collector, verifier Verifier, opts ...FlowOption) *Flow {
	f := &Flow{
		referenceID: referenceID,
		collector:   collector,
		verifier:    verifier,
		onReject:    func(error) {},
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the flow's current state.
func (f *Flow) State() State {
	return f.state
}

// Run executes the flow until Verified (nil), a terminal rejection
// (*VerifyError with Reason LOCKED or EXPIRED), or the collector gives up
// (its error is returned as-is, e.g. context cancellation).
func (f *Flow) Run(ctx context.Context) error {
	f.state = StateAwaitingCode

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := f.collector.CollectCode(ctx, f.referenceID)
		if err != nil {
			return err
		}

		code, err := NormalizeCode(raw)
		if err != nil {
			// Format failures never reach the verifier.
			f.onReject(err)
			continue
		}

		f.state = StateVerifying
		err = f.verifier.Verify(ctx, f.referenceID, code)
		if err == nil {
			f.state = StateVerified
			return nil
		}

		var verifyErr *VerifyError
		if errors.As(err, &verifyErr) && verifyErr.Retryable() {
			f.onReject(verifyErr)
			f.state = StateAwaitingCode
			continue
		}

		f.state = StateLocked
		if verifyErr != nil {
			return verifyErr
		}
		return err
	}
}

// IsTerminalRejection reports whether the error ends the whole transfer
// attempt, forcing the user to resubmit the draft.
func IsTerminalRejection(err error) bool {
	var verifyErr *VerifyError
	if errors.As(err, &verifyErr) {
		return !verifyErr.Retryable()
	}
	return false
}
