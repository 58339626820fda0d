package rail

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hummingbird-fin/hbctl/internal/common"
)

// amountPattern matches a non-negative decimal with at most two places,
// applied after the input has been stripped of $ , and whitespace.
var amountPattern = regexp.MustCompile(`^([0-9]+(\.[0-9]{1,2})?|\.[0-9]{1,2})$`)

// NormalizeAmount parses a user-entered amount into a positive two-decimal
// value. Currency symbols, thousands separators, and whitespace are
// stripped; anything else is rejected.
func NormalizeAmount(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if !amountPattern.MatchString(cleaned) {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, raw)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, raw)
	}
	if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("%w: amount must be positive", common.ErrInvalidAmount)
	}

	// Round to cents so 1234.5 and 1234.50 are the same value.
	return math.Round(value*100) / 100, nil
}

// FormatAmount renders an amount with exactly two decimal places, the form
// the backend expects.
func FormatAmount(value float64) string {
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', 2, 64)
}
