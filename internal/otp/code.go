package otp

import (
	"context"
	"strings"

	"github.com/hummingbird-fin/hbctl/internal/common"
)

// CodeLength is the required OTP length.
const CodeLength = 6

// Collector obtains a passcode from the user for a specific transfer
// reference. Implementations: the blocking CLI prompt (internal/cli) and
// the inline bubbletea form (internal/tui).
type Collector interface {
	CollectCode(ctx context.Context, referenceID string) (string, error)
}

// NormalizeCode strips everything but digits from user input and requires
// exactly six remaining. A format failure never reaches the network.
func NormalizeCode(raw string) (string, error) {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	code := sb.String()
	if len(code) != CodeLength {
		return "", common.ErrInvalidOTPFormat
	}
	return code, nil
}
