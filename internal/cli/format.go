package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
)

// nullPlaceholder renders absent values in tables.
const nullPlaceholder = "-"

// FormatNullFloat formats a nullable float with the given precision.
func FormatNullFloat(f null.Float, places int) string {
	if !f.Valid {
		return nullPlaceholder
	}
	return strconv.FormatFloat(f.Float64, 'f', places, 64)
}

// FormatNullPct formats a nullable percentage with sign and two
// decimals.
func FormatNullPct(f null.Float) string {
	if !f.Valid {
		return nullPlaceholder
	}
	return fmt.Sprintf("%+.2f%%", f.Float64)
}

// FormatNullInt formats a nullable integer.
func FormatNullInt(i null.Int) string {
	if !i.Valid {
		return nullPlaceholder
	}
	return strconv.FormatInt(i.Int64, 10)
}

// FormatNullString formats a nullable string.
func FormatNullString(s null.String) string {
	if !s.Valid || s.String == "" {
		return nullPlaceholder
	}
	return s.String
}

// FormatPrice formats a price with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

// TruncateString truncates a string with an ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the given length.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// PadLeft left-pads a string to the given length.
func PadLeft(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(" ", length-len(s)) + s
}
