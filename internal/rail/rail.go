// Package rail describes the supported money-movement channels.
//
// Every transfer rail shares one submission flow; what differs per rail is
// captured here: which recipient formats are accepted, which extra fields
// the backend wants, the endpoint name, and the prefix used when the client
// has to synthesize a reference id.
package rail

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"github.com/hummingbird-fin/hbctl/internal/common"
)

// Shared recipient formats. Several rails accept an email or phone number
// in addition to their native handle.
var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s().-]{7,}$`)
)

// FieldSpec describes one rail-specific input collected alongside the
// recipient and amount.
type FieldSpec struct {
	Key      string
	Label    string
	Pattern  *regexp.Regexp // nil means free text
	Required bool
}

// Descriptor defines everything rail-specific the transfer controller
// needs. The controller itself stays rail-agnostic.
type Descriptor struct {
	Name       string // wire name, also the transfer endpoint suffix
	Label      string // human-readable
	RefPrefix  string // prefix for synthesized reference ids
	Recipients []*regexp.Regexp
	Hint       string // shown when the recipient is rejected
	Fields     []FieldSpec
}

var registry = []*Descriptor{
	{
		Name:      "cashapp",
		Label:     "Cash App",
		RefPrefix: "CA",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^\$[A-Za-z0-9_]{1,20}$`),
			emailPattern,
			phonePattern,
		},
		Hint: "a $cashtag, email, or phone number",
	},
	{
		Name:      "paypal",
		Label:     "PayPal",
		RefPrefix: "PP",
		Recipients: []*regexp.Regexp{
			emailPattern,
			phonePattern,
			regexp.MustCompile(`^(https?://)?(www\.)?paypal\.me/[A-Za-z0-9._-]+/?$`),
		},
		Hint: "an email, phone number, or paypal.me link",
	},
	{
		Name:      "revolut",
		Label:     "Revolut",
		RefPrefix: "RV",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^@[A-Za-z0-9_]{3,16}$`),
			emailPattern,
			phonePattern,
		},
		Hint: "a @revtag, email, or phone number",
	},
	{
		Name:      "wechat",
		Label:     "WeChat Pay",
		RefPrefix: "WC",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{5,19}$`),
			phonePattern,
		},
		Hint: "a WeChat ID or phone number",
	},
	{
		Name:      "ach",
		Label:     "ACH",
		RefPrefix: "ACH",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,60}$`),
		},
		Hint: "the recipient's legal name",
		Fields: []FieldSpec{
			{Key: "routingNumber", Label: "Routing number", Pattern: regexp.MustCompile(`^[0-9]{9}$`), Required: true},
			{Key: "accountNumber", Label: "Account number", Pattern: regexp.MustCompile(`^[0-9]{6,17}$`), Required: true},
		},
	},
	{
		Name:      "wire_domestic",
		Label:     "Domestic wire",
		RefPrefix: "WD",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,60}$`),
		},
		Hint: "the recipient's legal name",
		Fields: []FieldSpec{
			{Key: "routingNumber", Label: "Routing number", Pattern: regexp.MustCompile(`^[0-9]{9}$`), Required: true},
			{Key: "accountNumber", Label: "Account number", Pattern: regexp.MustCompile(`^[0-9]{6,17}$`), Required: true},
			{Key: "bankName", Label: "Bank name", Required: true},
		},
	},
	{
		Name:      "wire_international",
		Label:     "International wire",
		RefPrefix: "WI",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,60}$`),
		},
		Hint: "the recipient's legal name",
		Fields: []FieldSpec{
			{Key: "swift", Label: "SWIFT/BIC", Pattern: regexp.MustCompile(`^[A-Za-z]{6}[A-Za-z0-9]{2}([A-Za-z0-9]{3})?$`), Required: true},
			{Key: "iban", Label: "IBAN or account number", Pattern: regexp.MustCompile(`^[A-Za-z0-9]{8,34}$`), Required: true},
			{Key: "bankName", Label: "Bank name", Required: true},
		},
	},
	{
		Name:      "crypto",
		Label:     "Crypto",
		RefPrefix: "CR",
		Recipients: []*regexp.Regexp{
			regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`),
			regexp.MustCompile(`^[13][A-HJ-NP-Za-km-z1-9]{25,34}$`),
			regexp.MustCompile(`^bc1[a-z0-9]{20,60}$`),
		},
		Hint: "a BTC or ETH address",
		Fields: []FieldSpec{
			{Key: "network", Label: "Network", Pattern: regexp.MustCompile(`^(bitcoin|ethereum)$`), Required: true},
		},
	},
}

// Lookup returns the descriptor for a rail wire name.
func Lookup(name string) (*Descriptor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range registry {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", common.ErrUnknownRail, name)
}

// All returns every registered descriptor in declaration order.
func All() []*Descriptor {
	out := make([]*Descriptor, len(registry))
	copy(out, registry)
	return out
}

// ValidateRecipient checks a recipient string against the rail's accepted
// formats.
func (d *Descriptor) ValidateRecipient(recipient string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("%w: recipient is required", common.ErrInvalidRecipient)
	}
	for _, re := range d.Recipients {
		if re.MatchString(recipient) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s expects %s", common.ErrInvalidRecipient, d.Label, d.Hint)
}

// ValidateFields checks the rail-specific extras collected from the form.
func (d *Descriptor) ValidateFields(fields map[string]string) error {
	for _, spec := range d.Fields {
		value := strings.TrimSpace(fields[spec.Key])
		if value == "" {
			if spec.Required {
				return fmt.Errorf("%w: %s is required", common.ErrInvalidRecipient, spec.Label)
			}
			continue
		}
		if spec.Pattern != nil && !spec.Pattern.MatchString(value) {
			return fmt.Errorf("%w: %s is not valid", common.ErrInvalidRecipient, spec.Label)
		}
	}
	return nil
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// FallbackReference synthesizes a reference id for responses where the
// backend omitted one: <PREFIX>-<8 uppercase base36 chars>.
func (d *Descriptor) FallbackReference() string {
	buf := make([]byte, 8)
	// crypto/rand never fails on supported platforms; a short read would
	// leave zero bytes which still map to valid characters.
	_, _ = rand.Read(buf)

	var sb strings.Builder
	sb.WriteString(d.RefPrefix)
	sb.WriteByte('-')
	for _, b := range buf {
		sb.WriteByte(base36[int(b)%len(base36)])
	}
	return sb.String()
}
