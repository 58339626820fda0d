package rail

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecipient(t *testing.T) {
	tests := []struct {
		name      string
		rail      string
		recipient string
		wantErr   bool
	}{
		{name: "cashapp cashtag", rail: "cashapp", recipient: "$jane_doe", wantErr: false},
		{name: "cashapp email", rail: "cashapp", recipient: "jane@example.com", wantErr: false},
		{name: "cashapp bare word", rail: "cashapp", recipient: "janedoe", wantErr: true},
		{name: "cashapp overlong cashtag", rail: "cashapp", recipient: "$abcdefghijklmnopqrstu", wantErr: true},
		{name: "paypal email", rail: "paypal", recipient: "user@example.com", wantErr: false},
		{name: "paypal phone", rail: "paypal", recipient: "+15555551234", wantErr: false},
		{name: "paypal me link", rail: "paypal", recipient: "paypal.me/jane", wantErr: false},
		{name: "paypal garbage", rail: "paypal", recipient: "not an id", wantErr: true},
		{name: "revolut revtag", rail: "revolut", recipient: "@jane_r", wantErr: false},
		{name: "revolut short revtag", rail: "revolut", recipient: "@ab", wantErr: true},
		{name: "wechat id", rail: "wechat", recipient: "wxid_abc123", wantErr: false},
		{name: "wechat phone", rail: "wechat", recipient: "+8613800138000", wantErr: false},
		{name: "wechat leading digit", rail: "wechat", recipient: "1abcdef", wantErr: true},
		{name: "ach name", rail: "ach", recipient: "Jane Doe", wantErr: false},
		{name: "wire name with apostrophe", rail: "wire_domestic", recipient: "Mary O'Brien", wantErr: false},
		{name: "crypto eth address", rail: "crypto", recipient: "0x52908400098527886E0F7030069857D2E4169EE7", wantErr: false},
		{name: "crypto btc legacy", rail: "crypto", recipient: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", wantErr: false},
		{name: "crypto bech32", rail: "crypto", recipient: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", wantErr: false},
		{name: "crypto garbage", rail: "crypto", recipient: "send-it-here", wantErr: true},
		{name: "empty recipient", rail: "paypal", recipient: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.rail)
			require.NoError(t, err)

			err = d.ValidateRecipient(tt.recipient)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	ach, err := Lookup("ach")
	require.NoError(t, err)

	err = ach.ValidateFields(map[string]string{
		"routingNumber": "021000021",
		"accountNumber": "123456789",
	})
	assert.NoError(t, err)

	err = ach.ValidateFields(map[string]string{
		"routingNumber": "12345", // too short
		"accountNumber": "123456789",
	})
	assert.Error(t, err)

	err = ach.ValidateFields(map[string]string{
		"accountNumber": "123456789",
	})
	assert.Error(t, err, "missing required routing number")
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "plain", input: "25.00", want: 25.00},
		{name: "currency and separators", input: "$1,234.5", want: 1234.50},
		{name: "whitespace", input: "  42 ", want: 42.00},
		{name: "bare decimal", input: ".50", want: 0.50},
		{name: "negative", input: "-5", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "three decimal places", input: "1.005", wantErr: true},
		{name: "zero", input: "0.00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1234.50", FormatAmount(1234.5))
	assert.Equal(t, "25.00", FormatAmount(25))
	assert.Equal(t, "0.10", FormatAmount(0.1))
}

func TestFallbackReference(t *testing.T) {
	shape := regexp.MustCompile(`^[A-Z]+-[A-Z0-9]{8}$`)

	for _, d := range All() {
		ref := d.FallbackReference()
		assert.Regexp(t, shape, ref, "rail %s", d.Name)
		assert.NotEmpty(t, ref)
	}

	// Two synthesized references for the same rail should not collide.
	pp, err := Lookup("paypal")
	require.NoError(t, err)
	assert.NotEqual(t, pp.FallbackReference(), pp.FallbackReference())
}

func TestLookupUnknownRail(t *testing.T) {
	_, err := Lookup("zelle")
	assert.Error(t, err)

	d, err := Lookup("  PayPal ")
	require.NoError(t, err)
	assert.Equal(t, "paypal", d.Name)
}
