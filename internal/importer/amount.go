package importer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var amountNoise = strings.NewReplacer(
	",", "",
	"$", "",
	"£", "",
	"€", "",
	"¥", "",
	`"`, "",
	"'", "",
	" ", "",
	"\u00a0", "",
)

// ParseAmount parses a bank amount like "-$1,234.56" or "(12.00)".
// Anything unparsable is zero.
func ParseAmount(s string) decimal.Decimal {
	s = amountNoise.Replace(strings.TrimSpace(s))
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "-" || s == "+" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

// dateLayouts are tried in order when a source has no date format.
// Slash dates are read month first, as US bank exports write them.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"01-02-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"20060102",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses s with layout, or with the common layouts when layout is
// empty. The result is a UTC calendar date.
func ParseDate(s, layout string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layouts := dateLayouts
	if layout != "" {
		layouts = []string{layout}
	}
	for _, l := range layouts {
		if d, err := time.Parse(l, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
