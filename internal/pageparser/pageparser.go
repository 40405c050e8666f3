// Package pageparser turns the raw text of one document page into closed
// pairing fragments plus the state needed to stitch records that run across
// page boundaries. Pages parse independently (workers never share state);
// the sequence builder later replays each page's leading lines against the
// previous page's carry via Continue.
package pageparser

import (
	"regexp"
	"strconv"
	"strings"

	"pairing_parser/internal/classify"
	"pairing_parser/internal/pairing"
	"pairing_parser/internal/patterns"
)

// FragmentKind discriminates the ordered items a page yields.
type FragmentKind int

const (
	// FragPairing is a pairing closed entirely within the page.
	FragPairing FragmentKind = iota
	// FragAircraft is an aircraft section boundary.
	FragAircraft
	// FragCalendar is a calendar month marker.
	FragCalendar
)

// Fragment is one ordered item from a page parse: a closed pairing or a
// context marker the sequence builder uses to resolve aircraft type and bid
// month for surrounding pairings.
type Fragment struct {
	Kind     FragmentKind
	Pairing  *pairing.Pairing
	Aircraft string
	Month    string
}

// Carry is the open record state at the bottom of a page. The sequence
// builder hands it to Continue with the next page's leading lines.
type Carry struct {
	Open         *pairing.Pairing
	DutyOpen     bool
	AwaitArrival bool
	HotelWrap    bool
}

// Result is the outcome of parsing one page.
type Result struct {
	Page      int
	Fragments []Fragment      // closed pairings and markers, in page order
	Leading   []classify.Line // non-noise lines before the first sequence header
	Carry     *Carry          // open record at page bottom, nil if none
	SawHeader bool            // page contained at least one sequence header
	Unparsed  []string        // non-noise lines that fit no open record
}

// ParsePage classifies and assembles the lines of a single page. Lines before
// the first sequence header are returned in Leading for the builder to replay
// against the previous page's carry; markers among them still update this
// page's local context so pairings opened further down get their aircraft
// type and month.
func ParsePage(page int, lines []string) Result {
	res := Result{Page: page}
	cur := &cursor{}
	for _, raw := range lines {
		ln := classify.Classify(raw)
		if !res.SawHeader {
			if ln.Kind == classify.SequenceHeader {
				res.SawHeader = true
			} else {
				switch ln.Kind {
				case classify.Noise:
				case classify.SectionMarker:
					cur.aircraft = ln.Captures["ac"]
					res.Leading = append(res.Leading, ln)
				case classify.CalendarMarker:
					cur.month = ln.Captures["month"]
					res.Leading = append(res.Leading, ln)
				default:
					res.Leading = append(res.Leading, ln)
				}
				continue
			}
		}
		cur.feed(ln)
	}
	res.Fragments = cur.frags
	res.Unparsed = cur.unparsed
	res.Carry = cur.carryOut()
	return res
}

// Continue replays a page's leading lines against the carry from the previous
// page. Markers among the leading lines close the carried pairing and are
// returned as fragments, in order. The returned carry is the carried pairing
// extended by whatever leading lines belonged to it; the caller decides when
// to close it.
func Continue(carry *Carry, leading []classify.Line) ([]Fragment, *Carry, []string) {
	cur := &cursor{}
	cur.adopt(carry)
	for _, ln := range leading {
		cur.feed(ln)
	}
	return cur.frags, cur.carryOut(), cur.unparsed
}

// Close finalizes a carried pairing that will receive no further lines.
func Close(carry *Carry) *pairing.Pairing {
	if carry == nil || carry.Open == nil {
		return nil
	}
	cur := &cursor{}
	cur.adopt(carry)
	cur.closeOpen()
	for _, f := range cur.frags {
		if f.Kind == FragPairing {
			return f.Pairing
		}
	}
	return nil
}

// cursor assembles classified lines into pairings. It holds the page-local
// aircraft/month context and the record in progress.
type cursor struct {
	aircraft string
	month    string

	open      *pairing.Pairing
	dutyOpen  bool
	awaitArr  bool
	hotelWrap bool

	frags    []Fragment
	unparsed []string
}

func (c *cursor) adopt(carry *Carry) {
	if carry == nil {
		return
	}
	c.open = carry.Open
	c.dutyOpen = carry.DutyOpen
	c.awaitArr = carry.AwaitArrival
	c.hotelWrap = carry.HotelWrap
}

func (c *cursor) carryOut() *Carry {
	if c.open == nil {
		return nil
	}
	// Page-local context does not travel with the carry; resolve what it can
	// before the pairing leaves the page.
	if c.open.StartDate == "" && c.open.StartDay != "" && c.month != "" {
		c.open.StartDate = patterns.FormatStartDate(c.month, c.open.StartDay)
	}
	if c.open.AircraftType == "" && c.aircraft != "" {
		c.open.AircraftType = c.aircraft
	}
	return &Carry{
		Open:         c.open,
		DutyOpen:     c.dutyOpen,
		AwaitArrival: c.awaitArr,
		HotelWrap:    c.hotelWrap,
	}
}

func (c *cursor) feed(ln classify.Line) {
	switch ln.Kind {
	case classify.Noise:
	case classify.SequenceHeader:
		c.startPairing(ln)
	case classify.DutyPeriodHeader:
		c.dutyHeader(ln)
	case classify.SectionMarker:
		c.closeOpen()
		c.aircraft = ln.Captures["ac"]
		c.frags = append(c.frags, Fragment{Kind: FragAircraft, Aircraft: c.aircraft})
	case classify.CalendarMarker:
		c.month = ln.Captures["month"]
		c.frags = append(c.frags, Fragment{Kind: FragCalendar, Month: c.month})
	case classify.LegLine:
		c.legLine(ln)
	case classify.LayoverLine:
		c.layoverLine(ln)
	case classify.ContinuationLine:
		c.continuation(ln)
	}
}

// closeOpen finalizes the record in progress and emits it as a fragment.
func (c *cursor) closeOpen() {
	if c.open == nil {
		return
	}
	p := c.open
	if p.StartDate == "" && p.StartDay != "" {
		p.StartDate = patterns.FormatStartDate(c.month, p.StartDay)
	}
	if p.AircraftType == "" {
		p.AircraftType = c.aircraft
	}
	c.open = nil
	c.dutyOpen = false
	c.awaitArr = false
	c.hotelWrap = false
	c.frags = append(c.frags, Fragment{Kind: FragPairing, Pairing: p})
}

func (c *cursor) startPairing(ln classify.Line) {
	c.closeOpen()
	p := &pairing.Pairing{
		Sequence:     ln.Captures["seq"],
		Days:         atoi(ln.Captures["days"]),
		AircraftType: c.aircraft,
	}
	if posn := ln.Captures["posn"]; posn != "" {
		p.Positions = splitPositions(posn)
	}
	if dps := ln.Captures["dps"]; dps != "" {
		p.DutyPeriodCount = atoi(dps)
	}
	if start := ln.Captures["start"]; start != "" {
		p.StartDate = start
	}
	c.open = p
}

func (c *cursor) dutyHeader(ln classify.Line) {
	if c.open == nil {
		c.unparsed = append(c.unparsed, ln.Raw)
		return
	}
	// A bare HHMM token while a leg is waiting for its arrival is that
	// arrival, wrapped onto its own line, not a new report time.
	if ln.Format == "report_bare" && c.awaitArr {
		c.fillArrival(ln.Captures)
		return
	}
	dp := &pairing.DutyPeriod{
		Index:       len(c.open.DutyPeriods) + 1,
		ReportLocal: ln.Captures["rptl"],
		ReportBase:  ln.Captures["rptb"],
	}
	c.open.DutyPeriods = append(c.open.DutyPeriods, dp)
	c.dutyOpen = true
	c.awaitArr = false
	c.hotelWrap = false
	if dates := ln.Captures["dates"]; dates != "" && c.open.StartDay == "" {
		if days := patterns.DayNumbers(dates); len(days) > 0 {
			c.open.StartDay = days[0]
		}
	}
}

func (c *cursor) legLine(ln classify.Line) {
	if c.open == nil {
		c.unparsed = append(c.unparsed, ln.Raw)
		return
	}
	if !c.dutyOpen {
		// Leg without a report line: open an implicit duty period.
		c.open.DutyPeriods = append(c.open.DutyPeriods, &pairing.DutyPeriod{
			Index: len(c.open.DutyPeriods) + 1,
		})
		c.dutyOpen = true
	}
	leg := &pairing.Leg{
		Flight:         ln.Captures["flight"],
		Origin:         ln.Captures["origin"],
		Destination:    ln.Captures["dest"],
		DepartureLocal: ln.Captures["depl"],
		DepartureBase:  ln.Captures["depb"],
		ArrivalLocal:   ln.Captures["arrl"],
		Meal:           ln.Captures["meal"],
		Block:          c.dur(ln.Captures["block"]),
		Credit:         c.dur(ln.Captures["credit"]),
		Duty:           c.dur(ln.Captures["duty"]),
	}
	dp := c.lastDP()
	dp.Legs = append(dp.Legs, leg)
	c.awaitArr = leg.ArrivalLocal == "" || leg.Destination == ""
	c.hotelWrap = false
	// Long-form legs print "n/m" duty period counters; adopt the total when
	// the header never declared one.
	if tot := ln.Captures["dptot"]; tot != "" && c.open.DutyPeriodCount == 0 {
		c.open.DutyPeriodCount = atoi(tot)
	}
	if dates := ln.Captures["dates"]; dates != "" && c.open.StartDay == "" {
		if days := patterns.DayNumbers(dates); len(days) > 0 {
			c.open.StartDay = days[0]
		}
	}
}

func (c *cursor) layoverLine(ln classify.Line) {
	if c.open == nil || len(c.open.DutyPeriods) == 0 {
		c.unparsed = append(c.unparsed, ln.Raw)
		return
	}
	dp := c.lastDP()
	dp.Layover = &pairing.Layover{
		City:     ln.Captures["city"],
		Hotel:    strings.TrimSpace(ln.Captures["hotel"]),
		Duration: c.dur(ln.Captures["dur"]),
	}
	c.dutyOpen = false
	c.awaitArr = false
	c.hotelWrap = dp.Layover.Hotel != ""
}

func (c *cursor) continuation(ln classify.Line) {
	if c.open == nil {
		c.unparsed = append(c.unparsed, ln.Raw)
		return
	}
	switch ln.Format {
	case "release_full", "release_bare":
		leg := c.lastLeg()
		if leg == nil {
			c.unparsed = append(c.unparsed, ln.Raw)
			return
		}
		leg.ReleaseLocal = ln.Captures["rlsl"]
		if v := c.dur(ln.Captures["credit"]); v != "" {
			leg.Credit = v
		}
		if v := c.dur(ln.Captures["duty"]); v != "" {
			leg.Duty = v
		}
		c.awaitArr = false
	case "arrival_long", "arrival":
		if !c.awaitArr {
			c.unparsed = append(c.unparsed, ln.Raw)
			return
		}
		c.fillArrival(ln.Captures)
	case "date_strip":
		if c.open.StartDay == "" {
			if days := patterns.DayNumbers(ln.Captures["dates"]); len(days) > 0 {
				c.open.StartDay = days[0]
			}
		}
	case "text_wrap":
		if !c.hotelWrap {
			c.unparsed = append(c.unparsed, ln.Raw)
			return
		}
		dp := c.lastDP()
		dp.Layover.Hotel += " " + strings.TrimSpace(ln.Captures["text"])
	default:
		c.unparsed = append(c.unparsed, ln.Raw)
	}
}

// fillArrival completes the leg waiting for its wrapped arrival fields.
func (c *cursor) fillArrival(caps map[string]string) {
	leg := c.lastLeg()
	if leg == nil {
		c.awaitArr = false
		return
	}
	if v := caps["arrl"]; v != "" {
		leg.ArrivalLocal = v
	} else if v := caps["rptl"]; v != "" {
		leg.ArrivalLocal = v
	}
	if v := c.dur(caps["block"]); v != "" {
		leg.Block = v
	}
	if v := c.dur(caps["credit"]); v != "" {
		leg.Credit = v
	}
	if v := c.dur(caps["duty"]); v != "" {
		leg.Duty = v
	}
	c.awaitArr = leg.ArrivalLocal == ""
}

func (c *cursor) lastDP() *pairing.DutyPeriod {
	if c.open == nil || len(c.open.DutyPeriods) == 0 {
		return nil
	}
	return c.open.DutyPeriods[len(c.open.DutyPeriods)-1]
}

func (c *cursor) lastLeg() *pairing.Leg {
	dp := c.lastDP()
	if dp == nil || len(dp.Legs) == 0 {
		return nil
	}
	return dp.Legs[len(dp.Legs)-1]
}

// dur normalizes a duration token. A token that matched the line regex but
// fails numeric parse (e.g. "9:75") degrades to an empty field and is
// recorded as unparsed.
func (c *cursor) dur(s string) string {
	if s == "" {
		return ""
	}
	v, ok := patterns.NormalizeDuration(s)
	if !ok {
		c.unparsed = append(c.unparsed, s)
		return ""
	}
	return v
}

var digits = regexp.MustCompile(`^\d+$`)

func atoi(s string) int {
	if !digits.MatchString(s) {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func splitPositions(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == ' '
	})
}
