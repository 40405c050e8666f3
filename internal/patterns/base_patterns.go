// Package patterns provides shared regex vocabulary and helper functions for
// pairing-document line parsing.
// This file contains grok-style base patterns for use with the Compiler.

package patterns

// BasePatterns defines reusable regex components for grok-style pattern
// composition. These are referenced in format patterns using {PATTERN_NAME}
// syntax.
var BasePatterns = map[string]string{
	// Airport / city codes. Bid packages use IATA codes throughout.
	"IATA": `[A-Z]{3}`,

	// Crew position code, e.g. CA, FO, FB.
	"POSN": `[A-Z]{2}`,

	// Time of day, HHMM.
	"TIME4": `\d{4}`,

	// Duration in hours and minutes, colon or dot separated: 8:30, 15.15.
	"DUR": `\d{1,2}[:.]\d{2}`,

	// Month/day date, MM/DD.
	"MMDD": `\d{2}/\d{2}`,

	// Flight number digits.
	"FLTNUM": `\d{1,4}`,

	// Meal service code: breakfast, lunch, dinner, snack.
	"MEAL": `[BLDS]`,

	// Aircraft/bid-status section tag. Fixed set used by the bid package.
	"ACTYPE": `737|777|787|320`,

	// Calendar day number as printed in the date strip (1-2 digits).
	"DAYNUM": `\d{1,2}`,
}
