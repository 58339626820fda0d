// Package transfer drives a money-movement submission end to end: draft
// validation, the create call, the OTP gate, and the handoff to the shared
// pending view.
//
// One Controller serves every rail; everything rail-specific comes from
// the rail.Descriptor it is built with.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hummingbird-fin/hbctl/internal/api"
	"github.com/hummingbird-fin/hbctl/internal/common"
	"github.com/hummingbird-fin/hbctl/internal/model"
	"github.com/hummingbird-fin/hbctl/internal/otp"
	"github.com/hummingbird-fin/hbctl/internal/rail"
)

// State of a submission. Confirmed and Failed are terminal for one
// submission instance; a fresh Editing state means a fresh draft.
type State string

// Submission states.
const (
	StateEditing     State = "Editing"
	StateSubmitting  State = "Submitting"
	StateAwaitingOtp State = "AwaitingOtp"
	StateConfirmed   State = "Confirmed"
	StateFailed      State = "Failed"
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	CreateTransfer(ctx context.Context, railName string, req api.CreateTransferRequest) (*api.CreateTransferResponse, error)
}

// SnapshotStore is the local persistence the controller writes through.
// *store.Store satisfies it.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *model.TransferSnapshot)
	LoadSnapshot(ctx context.Context) *model.TransferSnapshot
	SetPendingFlag(ctx context.Context)
	LoadBalances(ctx context.Context) (model.Balances, bool)
}

// Router performs the client-side navigation at handoff. In the terminal
// client this opens the pending view; tests capture the path.
type Router interface {
	Navigate(ctx context.Context, path string) error
}

// OverdraftConfirmer asks the user whether to proceed when the draft
// amount exceeds the locally cached balance. The check is a soft guard;
// the backend stays authoritative.
type OverdraftConfirmer interface {
	ConfirmOverdraft(ctx context.Context, amount, available float64) (bool, error)
}

// ChallengeRequester triggers OTP dispatch for a fresh reference. The
// remote path is a no-op (the backend dispatches on creation); the local
// simulator issues and displays a code here.
type ChallengeRequester interface {
	RequestChallenge(ctx context.Context, referenceID string) error
}

// NoopRequester is the remote-path ChallengeRequester.
type NoopRequester struct{}

// RequestChallenge does nothing; the backend has already dispatched.
func (NoopRequester) RequestChallenge(context.Context, string) error { return nil }

// Controller runs one transfer submission for one rail.
type Controller struct {
	rail       *rail.Descriptor
	backend    Backend
	store      SnapshotStore
	collector  otp.Collector
	verifier   otp.Verifier
	requester  ChallengeRequester
	router     Router
	guard      OverdraftConfirmer // nil disables the soft balance guard
	onReject   func(error)
	senderName string
	state      State
	submitting bool
	now        func() time.Time
}

// Config assembles a Controller.
type Config struct {
	Rail       *rail.Descriptor
	Backend    Backend
	Store      SnapshotStore
	Collector  otp.Collector
	Verifier   otp.Verifier
	Requester  ChallengeRequester
	Router     Router
	Guard      OverdraftConfirmer
	OnReject   func(error) // surfaced inline per rejected OTP attempt
	SenderName string      // account display name for the snapshot
}

// New validates the wiring and returns a Controller in Editing state.
func New(cfg Config) (*Controller, error) {
	if cfg.Rail == nil {
		return nil, errors.New("rail descriptor is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Collector == nil || cfg.Verifier == nil {
		return nil, errors.New("otp collector and verifier are required")
	}
	if cfg.Router == nil {
		return nil, errors.New("router is required")
	}

	requester := cfg.Requester
	if requester == nil {
		requester = NoopRequester{}
	}
	onReject := cfg.OnReject
	if onReject == nil {
		onReject = func(error) {}
	}

	return &Controller{
		rail:       cfg.Rail,
		backend:    cfg.Backend,
		store:      cfg.Store,
		collector:  cfg.Collector,
		verifier:   cfg.Verifier,
		requester:  requester,
		router:     cfg.Router,
		guard:      cfg.Guard,
		onReject:   onReject,
		senderName: cfg.SenderName,
		state:      StateEditing,
		now:        time.Now,
	}, nil
}

// State returns the submission's current state.
func (c *Controller) State() State {
	return c.state
}

// ValidateDraft runs all local validation and normalizes the amount into
// draft.Amount. Nothing is sent to the backend on failure.
func (c *Controller) ValidateDraft(ctx context.Context, draft *model.TransferDraft) error {
	if err := c.rail.ValidateRecipient(draft.Recipient); err != nil {
		return err
	}
	if err := c.rail.ValidateFields(draft.Fields); err != nil {
		return err
	}

	amount, err := rail.NormalizeAmount(draft.RawAmount)
	if err != nil {
		return err
	}
	draft.Amount = amount

	if c.guard != nil {
		if balances, ok := c.store.LoadBalances(ctx); ok {
			available := balances.ForAccount(draft.FromAccount)
			if amount > available {
				proceed, confirmErr := c.guard.ConfirmOverdraft(ctx, amount, available)
				if confirmErr != nil {
					return confirmErr
				}
				if !proceed {
					return common.NewUserError("transfer canceled", nil)
				}
			}
		}
	}

	return nil
}

// Submit posts the draft to the backend, derives the reference id, and
// persists the OTP_REQUIRED snapshot. Returns the reference id. A failure
// leaves the controller resubmittable; a resubmission always creates a new
// reference and a new backend attempt.
func (c *Controller) Submit(ctx context.Context, draft *model.TransferDraft) (string, error) {
	if c.submitting {
		return "", errors.New("submission already in flight")
	}
	c.submitting = true
	defer func() { c.submitting = false }()

	c.state = StateSubmitting

	resp, err := c.backend.CreateTransfer(ctx, c.rail.Name, api.CreateTransferRequest{
		FromAccount: draft.FromAccount,
		Recipient:   draft.Recipient,
		Amount:      rail.FormatAmount(draft.Amount),
		Note:        draft.Note,
		Fields:      draft.Fields,
	})
	if err != nil {
		c.state = StateFailed
		return "", common.NewUserError(common.UserMessage(err, "transfer could not be created, please try again"), err)
	}

	referenceID := resp.Reference()
	if referenceID == "" {
		referenceID = c.rail.FallbackReference()
	}

	c.store.SaveSnapshot(ctx, &model.TransferSnapshot{
		CreatedAt:   c.now().UTC(),
		Status:      model.StatusOTPRequired,
		Rail:        c.rail.Name,
		ReferenceID: referenceID,
		Note:        draft.Note,
		Sender:      model.Party{Name: c.senderName},
		Recipient:   model.Party{Name: draft.Recipient},
		Amount:      model.Amount{Currency: "USD", Value: draft.Amount},
		Cancelable:  true,
		Fields:      draft.Fields,
	})

	c.state = StateAwaitingOtp
	return referenceID, nil
}

// Run drives the whole submission: validate, submit, the OTP gate, and on
// success the handoff. The returned error is user-presentable.
func (c *Controller) Run(ctx context.Context, draft *model.TransferDraft) error {
	if err := c.ValidateDraft(ctx, draft); err != nil {
		return err
	}

	referenceID, err := c.Submit(ctx, draft)
	if err != nil {
		return err
	}

	if err := c.requester.RequestChallenge(ctx, referenceID); err != nil {
		c.state = StateFailed
		return common.NewUserError("could not request a confirmation code", err)
	}

	flow := otp.NewFlow(referenceID, c.collector, c.verifier, otp.WithRejectHandler(c.onReject))
	if err := flow.Run(ctx); err != nil {
		c.state = StateFailed
		if otp.IsTerminalRejection(err) {
			return common.NewUserError(fmt.Sprintf("%s; resubmit the transfer to try again", err), err)
		}
		return err
	}

	c.state = StateConfirmed
	return Handoff(ctx, c.store, c.router, SnapshotPatch{
		ReferenceID: referenceID,
		Status:      model.StatusPendingAdmin,
		Fields:      draft.Fields,
	})
}
