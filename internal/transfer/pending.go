package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hummingbird-fin/hbctl/internal/api"
	"github.com/hummingbird-fin/hbctl/internal/model"
)

// StatusReader is the backend slice the pending view reads.
type StatusReader interface {
	GetTransfer(ctx context.Context, referenceID string) (*api.TransferStatus, error)
}

// PendingStore is the local fallback the pending view reads, and the flag
// it clears once the transfer settles.
type PendingStore interface {
	LoadSnapshot(ctx context.Context) *model.TransferSnapshot
	ClearPendingFlag(ctx context.Context)
}

// Summary is what the pending view renders. FromBackend distinguishes the
// authoritative read from the local fallback.
type Summary struct {
	ReferenceID string
	Status      model.TransferStatus
	Rail        string
	CreatedAt   string
	Amount      model.Amount
	Recipient   model.Party
	EtaText     string
	FailReason  string
	FromBackend bool
}

// ResolvePending reconstructs a transfer summary backend-first, falling
// back to the local snapshot when the network is unavailable. A reload
// right after handoff must render something even with zero connectivity.
// An empty referenceID means "whatever the snapshot holds".
func ResolvePending(ctx context.Context, reader StatusReader, store PendingStore, referenceID string) (*Summary, error) {
	if referenceID == "" {
		if snapshot := store.LoadSnapshot(ctx); snapshot != nil {
			referenceID = snapshot.ReferenceID
		}
	}
	if referenceID == "" {
		return nil, fmt.Errorf("no transfer reference given and none stored locally")
	}

	status, err := reader.GetTransfer(ctx, referenceID)
	if err == nil {
		if status.Status.Terminal() {
			store.ClearPendingFlag(ctx)
		}
		return &Summary{
			ReferenceID: status.ReferenceID,
			Status:      status.Status,
			Rail:        status.Rail,
			CreatedAt:   status.CreatedAt,
			Amount:      status.Amount,
			Recipient:   status.Recipient,
			EtaText:     status.EtaText,
			FailReason:  status.FailReason,
			FromBackend: true,
		}, nil
	}
	slog.Debug("pending view backend read failed, trying local snapshot",
		"ref", referenceID, "error", err)

	snapshot := store.LoadSnapshot(ctx)
	if snapshot == nil || snapshot.ReferenceID != referenceID {
		return nil, fmt.Errorf("transfer %s is unavailable offline", referenceID)
	}

	return &Summary{
		ReferenceID: snapshot.ReferenceID,
		Status:      snapshot.Status,
		Rail:        snapshot.Rail,
		CreatedAt:   snapshot.CreatedAt.Format(time.RFC3339),
		Amount:      snapshot.Amount,
		Recipient:   snapshot.Recipient,
		FromBackend: false,
	}, nil
}
