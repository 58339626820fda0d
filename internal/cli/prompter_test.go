package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hummingbird-fin/hbctl/internal/model"
	"github.com/hummingbird-fin/hbctl/internal/rail"
)

func TestCollectCode(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("654321\n"), &out)

	code, err := p.CollectCode(context.Background(), "PP-ABC123")
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.Contains(t, out.String(), "PP-ABC123")
}

func TestCollectCodeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never produces input.
	blocked, w := newBlockedReader(t)
	defer w()

	p := NewPrompter(blocked, &bytes.Buffer{})
	_, err := p.CollectCode(ctx, "PP-ABC123")
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestConfirmOverdraft(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "default is no", input: "\n", want: false},
		{name: "garbage then yes", input: "what\ny\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.ConfirmOverdraft(context.Background(), 25.00, 10.00)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "25.00")
			assert.Contains(t, out.String(), "10.00")
		})
	}
}

func TestPromptDraft(t *testing.T) {
	d, err := rail.Lookup("ach")
	require.NoError(t, err)

	input := strings.Join([]string{
		"s",                // savings
		"Jane Doe",         // recipient
		"$1,234.5",         // amount, normalized later
		"rent",             // note
		"021000021",        // routing number
		"123456789",        // account number
	}, "\n") + "\n"

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(input), &out)

	draft, err := p.PromptDraft(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, model.AccountSavings, draft.FromAccount)
	assert.Equal(t, "Jane Doe", draft.Recipient)
	assert.Equal(t, "$1,234.5", draft.RawAmount)
	assert.Equal(t, "rent", draft.Note)
	assert.Equal(t, "021000021", draft.Fields["routingNumber"])
	assert.Equal(t, "123456789", draft.Fields["accountNumber"])
}

// newBlockedReader returns a reader that blocks until the test ends.
func newBlockedReader(t *testing.T) (*blockedReader, func()) {
	t.Helper()
	ch := make(chan struct{})
	return &blockedReader{ch: ch}, func() { close(ch) }
}

type blockedReader struct {
	ch chan struct{}
}

func (r *blockedReader) Read([]byte) (int, error) {
	<-r.ch
	return 0, nil
}
