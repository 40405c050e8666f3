// Package patterns provides shared regex vocabulary and helper functions for
// pairing-document line parsing.
package patterns

import (
	"regexp"
	"strconv"
	"strings"
)

// AircraftTags is the fixed set of aircraft/bid-status section tags the bid
// package uses, in the order they are offered to the CLI.
var AircraftTags = []string{"320", "737", "777", "787"}

// IsAircraftTag reports whether s is one of the recognised section tags.
func IsAircraftTag(s string) bool {
	for _, t := range AircraftTags {
		if s == t {
			return true
		}
	}
	return false
}

// dayNumberPattern finds individual calendar day numbers in a date strip.
var dayNumberPattern = regexp.MustCompile(`\b(\d{1,2})\b`)

// DayNumbers extracts the calendar day numbers from trailing date-strip text,
// e.g. "−− 2 3 4 5 6" yields ["2","3","4","5","6"].
func DayNumbers(text string) []string {
	return dayNumberPattern.FindAllString(text, -1)
}

// FormatStartDate builds an MM/DD start date from a calendar month and a raw
// day number ("04", "2" -> "04/02"). Returns empty when either part is
// missing.
func FormatStartDate(month, day string) string {
	if month == "" || day == "" {
		return ""
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return month + "/" + day
}

// NormalizeDuration converts a duration token to canonical H:MM form.
// Both colon and dot separated inputs are accepted. Dot-separated values are
// hour.minute (the bid package prints "15.15" for 15h15m); a dot value whose
// minute part is 60 or more is read as decimal hours instead ("3.75" is
// 3h45m). Returns "" and false for tokens that parse as neither.
func NormalizeDuration(s string) (string, bool) {
	s = strings.TrimSpace(s)
	var sep string
	switch {
	case strings.Contains(s, ":"):
		sep = ":"
	case strings.Contains(s, "."):
		sep = "."
	default:
		return "", false
	}

	parts := strings.SplitN(s, sep, 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return "", false
	}
	frac := parts[1]
	mins, err := strconv.Atoi(frac)
	if err != nil || mins < 0 {
		return "", false
	}

	if sep == "." && mins >= 60 {
		// Decimal hours: scale the fractional digits to minutes.
		div := 1
		for range frac {
			div *= 10
		}
		mins = (mins*60 + div/2) / div
		if mins >= 60 {
			hours += mins / 60
			mins = mins % 60
		}
	} else if sep == ":" && mins >= 60 {
		return "", false
	}

	return strconv.Itoa(hours) + ":" + pad2(mins), true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
