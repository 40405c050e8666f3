package classify

import (
	"fmt"
	"strings"
	"sync"

	"pairing_parser/internal/patterns"
)

// Kind identifies what a document line contributes to the record being
// assembled.
type Kind int

const (
	// Noise lines carry no pairing data: page furniture, column headers,
	// separators.
	Noise Kind = iota
	// SequenceHeader opens a new pairing.
	SequenceHeader
	// DutyPeriodHeader opens a new duty period within the current pairing.
	DutyPeriodHeader
	// SectionMarker is an aircraft/bid-status section boundary.
	SectionMarker
	// CalendarMarker carries the bid month from a calendar header.
	CalendarMarker
	// LegLine is a flight leg within the current duty period.
	LegLine
	// LayoverLine closes the current duty period with rest information.
	LayoverLine
	// ContinuationLine extends the record in progress: release data,
	// wrapped arrival fields, date strips, wrapped hotel names.
	ContinuationLine
)

func (k Kind) String() string {
	switch k {
	case Noise:
		return "noise"
	case SequenceHeader:
		return "sequence_header"
	case DutyPeriodHeader:
		return "duty_period_header"
	case SectionMarker:
		return "section_marker"
	case CalendarMarker:
		return "calendar_marker"
	case LegLine:
		return "leg_line"
	case LayoverLine:
		return "layover_line"
	case ContinuationLine:
		return "continuation_line"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Line is one classified document line.
type Line struct {
	Kind     Kind
	Format   string            // name of the matched format, "" for noise
	Captures map[string]string // named capture values, nil for noise
	Raw      string            // original text, trailing whitespace trimmed
}

type compilerSet struct {
	sequence   *patterns.Compiler
	dutyPeriod *patterns.Compiler
	section    *patterns.Compiler
	calendar   *patterns.Compiler
	leg        *patterns.Compiler
	layover    *patterns.Compiler
	cont       *patterns.Compiler
}

var (
	compilers     *compilerSet
	compilersOnce sync.Once
)

func getCompilers() *compilerSet {
	compilersOnce.Do(func() {
		compilers = &compilerSet{
			sequence:   mustCompile(SequenceFormats),
			dutyPeriod: mustCompile(DutyPeriodFormats),
			section:    mustCompile(SectionFormats),
			calendar:   mustCompile(CalendarFormats),
			leg:        mustCompile(LegFormats),
			layover:    mustCompile(LayoverFormats),
			cont:       mustCompile(ContinuationFormats),
		}
	})
	return compilers
}

func mustCompile(formats []patterns.Format) *patterns.Compiler {
	c := patterns.NewCompiler(formats, nil)
	if err := c.Compile(); err != nil {
		panic(fmt.Sprintf("classify: compile formats: %v", err))
	}
	return c
}

// Classify determines the kind of a single document line. Kinds are tried in
// a fixed priority order so that lines matching more than one family resolve
// deterministically: sequence headers beat leg lines, duty period headers
// beat bare-time continuations, and so on. Lines matching nothing are Noise.
func Classify(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	line := Line{Kind: Noise, Raw: strings.TrimRight(raw, " \t\r")}

	if trimmed == "" || isFurniture(trimmed) {
		return line
	}

	cs := getCompilers()
	type candidate struct {
		kind     Kind
		compiler *patterns.Compiler
	}
	for _, c := range []candidate{
		{SequenceHeader, cs.sequence},
		{DutyPeriodHeader, cs.dutyPeriod},
		{SectionMarker, cs.section},
		{CalendarMarker, cs.calendar},
		{LegLine, cs.leg},
		{LayoverLine, cs.layover},
		{ContinuationLine, cs.cont},
	} {
		if m := c.compiler.Parse(trimmed); m != nil {
			line.Kind = c.kind
			line.Format = m.FormatName
			line.Captures = m.Captures
			return line
		}
	}
	return line
}

// isFurniture catches page decoration that would otherwise be expensive to
// reject by regex, or that overlaps a data format (the day-of-week ruler can
// look like a date strip).
func isFurniture(s string) bool {
	switch {
	case strings.HasPrefix(s, "DAY "), s == "DAY":
		return true
	case strings.HasPrefix(s, "---"), strings.HasPrefix(s, "==="):
		return true
	case strings.Contains(s, "COCKPIT ISSUED"):
		return true
	case strings.HasPrefix(s, "DP D/A"):
		return true
	case strings.HasPrefix(s, "MO TU WE TH FR SA SU"):
		return true
	case strings.HasPrefix(s, "PAGE ") && len(s) < 16:
		return true
	}
	return false
}
