package transfer

import (
	"context"
	"net/url"

	"github.com/hummingbird-fin/hbctl/internal/model"
)

// PendingViewPath is the shared pending view every rail hands off to.
const PendingViewPath = "/Transfer/pending"

// SnapshotPatch is the partial update merged into the stored snapshot at
// handoff, so rail-specific fields collected during submission survive.
type SnapshotPatch struct {
	ReferenceID string
	Status      model.TransferStatus
	Note        string
	Fields      map[string]string
}

// Handoff merges the patch into the persisted snapshot, raises the pending
// flag, and navigates to the shared pending view keyed solely by the
// reference id.
func Handoff(ctx context.Context, store SnapshotStore, router Router, patch SnapshotPatch) error {
	snapshot := store.LoadSnapshot(ctx)
	if snapshot == nil {
		// The store may have lost the snapshot (quota, corruption). The
		// handoff still proceeds; the pending view reads the backend.
		snapshot = &model.TransferSnapshot{ReferenceID: patch.ReferenceID}
	}

	if patch.Status != "" {
		snapshot.Status = patch.Status
		snapshot.Cancelable = !patch.Status.Terminal()
	}
	if patch.Note != "" {
		snapshot.Note = patch.Note
	}
	if len(patch.Fields) > 0 {
		if snapshot.Fields == nil {
			snapshot.Fields = make(map[string]string, len(patch.Fields))
		}
		for k, v := range patch.Fields {
			snapshot.Fields[k] = v
		}
	}

	store.SaveSnapshot(ctx, snapshot)
	store.SetPendingFlag(ctx)

	return router.Navigate(ctx, PendingURL(snapshot.ReferenceID))
}

// PendingURL builds the pending view path for a reference id.
func PendingURL(referenceID string) string {
	return PendingViewPath + "?ref=" + url.QueryEscape(referenceID)
}
