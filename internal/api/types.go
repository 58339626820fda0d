package api

import "github.com/hummingbird-fin/hbctl/internal/model"

// SessionCookieName is the backend's session cookie. The value is held by
// the session file only; nothing is ever read from the snapshot store for
// authorization.
const SessionCookieName = "hb_session"

// CreateTransferRequest is the client-side shape of a transfer creation.
// Rail-specific fields are merged into the JSON body alongside the fixed
// keys.
type CreateTransferRequest struct {
	FromAccount model.AccountType
	Recipient   string
	Amount      string // normalized, exactly two decimal places
	Note        string
	Fields      map[string]string
}

// CreateTransferResponse mirrors the backend's transfer creation reply.
// Different rails historically returned the reference under different
// keys; all three are accepted.
type CreateTransferResponse struct {
	ReferenceID string `json:"referenceId"`
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
	Fee         string `json:"fee,omitempty"`
	EtaText     string `json:"etaText,omitempty"`
}

// Reference returns the transfer reference under whichever key the backend
// used, or "" when it omitted one entirely.
func (r *CreateTransferResponse) Reference() string {
	switch {
	case r.ReferenceID != "":
		return r.ReferenceID
	case r.ID != "":
		return r.ID
	default:
		return r.Ref
	}
}

// ConfirmResult is the backend's OTP confirmation reply.
type ConfirmResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// TransferStatus is the backend's authoritative view of one transfer,
// fetched by the pending view.
type TransferStatus struct {
	ReferenceID string               `json:"referenceId"`
	Status      model.TransferStatus `json:"status"`
	Rail        string               `json:"rail"`
	CreatedAt   string               `json:"createdAt"`
	Amount      model.Amount         `json:"amount"`
	Recipient   model.Party          `json:"recipient"`
	EtaText     string               `json:"etaText,omitempty"`
	FailReason  string               `json:"failReason,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *errorResponse) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
