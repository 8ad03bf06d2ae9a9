package order

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// FormatReference renders the client-facing order number DD-MM.YY-#id using the creation date in loc.
func FormatReference(id int64, createdAt time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s-#%d", createdAt.In(loc).Format("02-01.06"), id)
}

// NormalizePhone keeps the digits of raw and renders them in international form.
// Russian trunk prefix 8 and bare ten-digit numbers are mapped to country code 7.
func NormalizePhone(raw string) (string, error) {
	var sb strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	if len(digits) < 10 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}

	switch {
	case len(digits) == 10:
		digits = "7" + digits
	case len(digits) == 11 && digits[0] == '8':
		digits = "7" + digits[1:]
	}
	return "+" + digits, nil
}
