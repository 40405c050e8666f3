// Package classify provides grok-style format definitions for pairing
// document line classification.
package classify

import "pairing_parser/internal/patterns"

// Each line kind owns an ordered format list; the first matching format
// wins. Two format families appear throughout: the long form printed by PBS
// bid packages ("SEQ 182 30 OPS POSN CA FO") and the compact tokenised form
// some extractions collapse to ("182  2DAYS  DP2  CA/FO  03/14").

// SequenceFormats match pairing sequence header lines.
var SequenceFormats = []patterns.Format{
	{
		Name: "seq_ops",
		Pattern: `^SEQ\s+(?P<seq>\d+)\s+(?P<days>\d+)\s+OPS\s+POSN\s+` +
			`(?P<posn>{POSN}(?:[\s/]+{POSN})*)(?:\s+(?P<special>\S.*?))?\s*$`,
		Fields: []string{"seq", "days", "posn", "special"},
	},
	{
		Name: "seq_compact",
		Pattern: `^(?P<seq>\d+)\s+(?P<days>\d+)DAYS\s+DP\s*(?P<dps>\d+)\s+` +
			`(?P<posn>{POSN}(?:/{POSN})*)\s+(?P<start>{MMDD})\s*$`,
		Fields: []string{"seq", "days", "dps", "posn", "start"},
	},
}

// DutyPeriodFormats match duty-period report lines. The bare form is a lone
// report time; a lone HHMM token can also be a wrapped arrival time, which
// the page parser resolves from context.
var DutyPeriodFormats = []patterns.Format{
	{
		Name:    "rpt",
		Pattern: `^RPT\s+(?P<rptl>{TIME4})/(?P<rptb>{TIME4})(?:\s+(?P<dates>\S.*?))?\s*$`,
		Fields:  []string{"rptl", "rptb", "dates"},
	},
	{
		Name:    "report_bare",
		Pattern: `^(?P<rptl>{TIME4})(?:/(?P<rptb>{TIME4}))?\s*$`,
		Fields:  []string{"rptl", "rptb"},
	},
}

// SectionFormats match aircraft/bid-status section boundary lines,
// e.g. "DFW 777".
var SectionFormats = []patterns.Format{
	{
		Name:    "aircraft_section",
		Pattern: `^(?P<base>{IATA})\s+(?P<ac>{ACTYPE})\s*$`,
		Fields:  []string{"base", "ac"},
	},
}

// CalendarFormats match the running calendar header,
// e.g. "CALENDAR 04/01−05/01".
var CalendarFormats = []patterns.Format{
	{
		Name:    "calendar",
		Pattern: `CALENDAR\s+(?P<month>\d{2})/\d{2}`,
		Fields:  []string{"month"},
	},
}

// LegFormats match flight leg lines.
var LegFormats = []patterns.Format{
	{
		Name: "leg_full",
		Pattern: `^(?P<legnum>\d+)\s+(?P<dpidx>\d+)/(?P<dptot>\d+)\s+(?P<equip>\d+)\s+` +
			`(?P<flight>{FLTNUM})\s+(?P<origin>{IATA})\s+(?P<depl>{TIME4})/(?P<depb>{TIME4})` +
			`(?:\s+(?P<meal>{MEAL}))?\s+(?P<dest>{IATA})\s+(?P<arrl>{TIME4})/(?P<arrb>{TIME4})\s+` +
			`(?P<block>{DUR})(?:\s+(?P<dates>\S.*?))?\s*$`,
		Fields: []string{"legnum", "dpidx", "dptot", "equip", "flight", "origin", "depl", "depb", "meal", "dest", "arrl", "arrb", "block", "dates"},
	},
	{
		Name: "leg_compact",
		Pattern: `^(?P<flight>{FLTNUM})\s+(?P<origin>{IATA})\s+(?P<depl>{TIME4})` +
			`(?:\s+(?P<depb>{TIME4})(?P<meal>{MEAL})?)?` +
			`(?:\s+(?P<dest>{IATA})(?:\s+(?P<arrl>{TIME4}))?)?` +
			`(?:\s+B(?P<block>{DUR}))?(?:\s+CR(?P<credit>{DUR}))?(?:\s+DT(?P<duty>{DUR}))?\s*$`,
		Fields: []string{"flight", "origin", "depl", "depb", "meal", "dest", "arrl", "block", "credit", "duty"},
	},
}

// LayoverFormats match layover lines: city, optional hotel free text with an
// optional phone number (dropped), and a rest duration.
var LayoverFormats = []patterns.Format{
	{
		Name: "layover_hotel",
		Pattern: `^(?P<city>{IATA})\s+(?P<hotel>\S.*?)(?:\s+\d{6,})?\s+` +
			`(?P<dur>{DUR})(?:\s+(?P<dates>\S.*?))?\s*$`,
		Fields: []string{"city", "hotel", "dur", "dates"},
	},
	{
		Name:    "layover_bare",
		Pattern: `^(?P<city>{IATA})\s+(?P<dur>{DUR})\s*$`,
		Fields:  []string{"city", "dur"},
	},
}

// ContinuationFormats match lines that extend the record in progress rather
// than opening a new one: release lines, wrapped arrival fields, calendar
// date strips, and wrapped hotel names.
var ContinuationFormats = []patterns.Format{
	{
		Name: "release_full",
		Pattern: `^RLS\s+(?P<rlsl>{TIME4})/(?P<rlsb>{TIME4})\s+(?P<credit>{DUR})\s+` +
			`{DUR}\s+{DUR}\s+(?P<duty>{DUR})(?:\s+(?P<dates>\S.*?))?\s*$`,
		Fields: []string{"rlsl", "rlsb", "credit", "duty", "dates"},
	},
	{
		Name:    "release_bare",
		Pattern: `^RLS\s+(?P<rlsl>{TIME4})(?:/(?P<rlsb>{TIME4}))?\s*$`,
		Fields:  []string{"rlsl", "rlsb"},
	},
	{
		Name:    "arrival_long",
		Pattern: `^(?P<arrl>{TIME4})/(?P<arrb>{TIME4})\s+(?P<block>{DUR})(?:\s+(?P<dates>\S.*?))?\s*$`,
		Fields:  []string{"arrl", "arrb", "block", "dates"},
	},
	{
		Name: "arrival",
		Pattern: `^(?P<arrl>{TIME4})(?:/(?P<arrb>{TIME4}))?` +
			`(?:\s+B(?P<block>{DUR}))?(?:\s+CR(?P<credit>{DUR}))?(?:\s+DT(?P<duty>{DUR}))?\s*$`,
		Fields: []string{"arrl", "arrb", "block", "credit", "duty"},
	},
	{
		Name:    "date_strip",
		Pattern: `^(?P<dates>{DAYNUM}(?:\s+{DAYNUM})*)\s*$`,
		Fields:  []string{"dates"},
	},
	{
		Name:    "text_wrap",
		Pattern: `^(?P<text>[A-Z][A-Z0-9 .&'-]*?)\s*$`,
		Fields:  []string{"text"},
	},
}
