package pageparser

import (
	"testing"

	"pairing_parser/internal/classify"
)

func TestParsePageCompactPairing(t *testing.T) {
	lines := []string{
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700  ",
		"281  DFW  0900  1400L  ICN  1630  B8:30  CR9:15  DT9:45",
		"ICN SHERATON INCHEON 82328351000 24.25",
		"0800",
		"282  ICN  1000  1500  DFW  1700  B9:00  CR9:30  DT10:00",
		"RLS 1730",
		"199  1DAYS  DP1  CA  03/20",
	}
	res := ParsePage(4, lines)

	if !res.SawHeader {
		t.Fatal("SawHeader = false, want true")
	}
	if len(res.Leading) != 0 {
		t.Fatalf("Leading = %d lines, want 0", len(res.Leading))
	}
	if len(res.Fragments) != 1 {
		t.Fatalf("Fragments = %d, want 1", len(res.Fragments))
	}
	if res.Carry == nil || res.Carry.Open == nil {
		t.Fatal("Carry = nil, want open pairing 199")
	}
	if res.Carry.Open.Sequence != "199" {
		t.Errorf("carried sequence = %q, want 199", res.Carry.Open.Sequence)
	}

	p := res.Fragments[0].Pairing
	if p.Sequence != "182" || p.Days != 2 || p.DutyPeriodCount != 2 {
		t.Errorf("pairing header = %s/%d/%d, want 182/2/2", p.Sequence, p.Days, p.DutyPeriodCount)
	}
	if p.Position() != "CA/FO" {
		t.Errorf("position = %q, want CA/FO", p.Position())
	}
	if p.StartDate != "03/14" {
		t.Errorf("start date = %q, want 03/14", p.StartDate)
	}
	if len(p.DutyPeriods) != 2 {
		t.Fatalf("duty periods = %d, want 2", len(p.DutyPeriods))
	}

	dp1 := p.DutyPeriods[0]
	if dp1.ReportLocal != "0700" {
		t.Errorf("dp1 report = %q, want 0700", dp1.ReportLocal)
	}
	if len(dp1.Legs) != 1 {
		t.Fatalf("dp1 legs = %d, want 1", len(dp1.Legs))
	}
	leg := dp1.Legs[0]
	if leg.Flight != "281" || leg.Origin != "DFW" || leg.Destination != "ICN" {
		t.Errorf("leg route = %s %s-%s, want 281 DFW-ICN", leg.Flight, leg.Origin, leg.Destination)
	}
	if leg.Block != "8:30" || leg.Credit != "9:15" || leg.Duty != "9:45" {
		t.Errorf("leg durations = %s/%s/%s, want 8:30/9:15/9:45", leg.Block, leg.Credit, leg.Duty)
	}
	if dp1.Layover == nil || dp1.Layover.City != "ICN" {
		t.Fatalf("dp1 layover = %+v, want city ICN", dp1.Layover)
	}
	if dp1.Layover.Hotel != "SHERATON INCHEON" {
		t.Errorf("hotel = %q, want SHERATON INCHEON", dp1.Layover.Hotel)
	}
	if dp1.Layover.Duration != "24:25" {
		t.Errorf("layover duration = %q, want 24:25", dp1.Layover.Duration)
	}

	dp2 := p.DutyPeriods[1]
	if dp2.ReportLocal != "0800" || len(dp2.Legs) != 1 {
		t.Fatalf("dp2 = report %q with %d legs, want 0800 with 1", dp2.ReportLocal, len(dp2.Legs))
	}
	if dp2.Legs[0].ReleaseLocal != "1730" {
		t.Errorf("dp2 release = %q, want 1730", dp2.Legs[0].ReleaseLocal)
	}
}

func TestParsePageLongForm(t *testing.T) {
	lines := []string{
		"DFW 777",
		"COCKPIT CALENDAR 04/01−05/01",
		"SEQ 182 30 OPS POSN CA FO",
		"RPT 0915/0915 14 15",
		"1 1/2 83 281 DFW 1015/1015 L ICN 1530/0130 15.15",
		"ICN SHERATON INCHEON 82328351000 24.25",
		"RPT 0330/1730",
		"2 2/2 83 282 ICN 0430/1830 D DFW 1640/1640 12.40",
		"RLS 1655/1655 27.55 0.00 27.55 52.40 28.10",
	}
	res := ParsePage(7, lines)

	if len(res.Leading) != 2 {
		t.Fatalf("Leading = %d lines, want 2 markers", len(res.Leading))
	}
	if res.Leading[0].Kind != classify.SectionMarker || res.Leading[1].Kind != classify.CalendarMarker {
		t.Fatalf("leading kinds = %v,%v", res.Leading[0].Kind, res.Leading[1].Kind)
	}
	if len(res.Fragments) != 0 {
		t.Fatalf("Fragments = %d, want 0", len(res.Fragments))
	}
	if res.Carry == nil {
		t.Fatal("Carry = nil, want the pairing still open at page bottom")
	}

	p := Close(res.Carry)
	if p.AircraftType != "777" {
		t.Errorf("aircraft = %q, want 777 from leading marker", p.AircraftType)
	}
	if p.DutyPeriodCount != 2 {
		t.Errorf("duty period count = %d, want 2 from leg counters", p.DutyPeriodCount)
	}
	if p.StartDate != "04/14" {
		t.Errorf("start date = %q, want 04/14 from calendar month and date strip", p.StartDate)
	}
	if len(p.DutyPeriods) != 2 {
		t.Fatalf("duty periods = %d, want 2", len(p.DutyPeriods))
	}
	last := p.DutyPeriods[1].Legs[0]
	if last.ReleaseLocal != "1655" {
		t.Errorf("release = %q, want 1655", last.ReleaseLocal)
	}
	if last.Credit != "27:55" || last.Duty != "52:40" {
		t.Errorf("credit/duty = %s/%s, want 27:55/52:40", last.Credit, last.Duty)
	}
	if last.Block != "12:40" {
		t.Errorf("block = %q, want 12:40", last.Block)
	}
}

func TestParsePageWrappedArrival(t *testing.T) {
	lines := []string{
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700",
		"281  DFW  0900  1400L  ICN",
		"1630  B8:30  CR9:15  DT9:45",
	}
	res := ParsePage(3, lines)
	if res.Carry == nil {
		t.Fatal("Carry = nil, want open pairing")
	}
	leg := res.Carry.Open.DutyPeriods[0].Legs[0]
	if leg.ArrivalLocal != "1630" {
		t.Errorf("arrival = %q, want 1630 from wrapped line", leg.ArrivalLocal)
	}
	if leg.Block != "8:30" {
		t.Errorf("block = %q, want 8:30", leg.Block)
	}
	if res.Carry.AwaitArrival {
		t.Error("AwaitArrival still set after fill")
	}
}

// A bare HHMM line is a new report time only when no leg is waiting for its
// arrival; otherwise it completes that leg.
func TestParsePageBareTimeDisambiguation(t *testing.T) {
	lines := []string{
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700",
		"281  DFW  0900  1400L  ICN",
		"1630",
		"0800",
		"282  ICN  1000  1500  DFW  1700  B9:00",
	}
	res := ParsePage(3, lines)
	if res.Carry == nil {
		t.Fatal("Carry = nil, want open pairing")
	}
	p := res.Carry.Open
	if len(p.DutyPeriods) != 2 {
		t.Fatalf("duty periods = %d, want 2", len(p.DutyPeriods))
	}
	if got := p.DutyPeriods[0].Legs[0].ArrivalLocal; got != "1630" {
		t.Errorf("first leg arrival = %q, want 1630", got)
	}
	if got := p.DutyPeriods[1].ReportLocal; got != "0800" {
		t.Errorf("second report = %q, want 0800", got)
	}
}

func TestContinueStitchesAcrossPages(t *testing.T) {
	page1 := []string{
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700",
		"281  DFW  0900  1400L  ICN",
	}
	page2 := []string{
		"1630  B8:30",
		"ICN SHERATON INCHEON 82328351000 24.25",
		"0800",
		"282  ICN  1000  1500  DFW  1700  B9:00",
		"199  1DAYS  DP1  CA  03/20",
		"0600",
		"101  DFW  0700  0900  ELP  0800  B2:00",
		"RLS 0830",
	}

	res1 := ParsePage(1, page1)
	if res1.Carry == nil {
		t.Fatal("page 1 carry = nil")
	}
	res2 := ParsePage(2, page2)
	if !res2.SawHeader {
		t.Fatal("page 2 SawHeader = false")
	}

	frags, carry, unparsed := Continue(res1.Carry, res2.Leading)
	if len(frags) != 0 {
		t.Fatalf("Continue fragments = %d, want 0", len(frags))
	}
	if len(unparsed) != 0 {
		t.Fatalf("Continue unparsed = %v, want none", unparsed)
	}
	p := Close(carry)
	if p == nil {
		t.Fatal("Close(carry) = nil")
	}
	if p.Sequence != "182" {
		t.Fatalf("stitched sequence = %q, want 182", p.Sequence)
	}
	if len(p.DutyPeriods) != 2 {
		t.Fatalf("stitched duty periods = %d, want 2", len(p.DutyPeriods))
	}
	if got := p.DutyPeriods[0].Legs[0].ArrivalLocal; got != "1630" {
		t.Errorf("stitched arrival = %q, want 1630", got)
	}
	if p.DutyPeriods[0].Layover == nil || p.DutyPeriods[0].Layover.City != "ICN" {
		t.Errorf("stitched layover = %+v, want ICN", p.DutyPeriods[0].Layover)
	}
	if got := p.DutyPeriods[1].ReportLocal; got != "0800" {
		t.Errorf("stitched second report = %q, want 0800", got)
	}

	// Page 2's own body is untouched by the stitch.
	if len(res2.Fragments) != 0 || res2.Carry == nil || res2.Carry.Open.Sequence != "199" {
		t.Errorf("page 2 body: frags=%d carry=%+v", len(res2.Fragments), res2.Carry)
	}
}

func TestParsePageHotelWrap(t *testing.T) {
	lines := []string{
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700",
		"281  DFW  0900  1400L  ICN  1630  B8:30",
		"ICN SHERATON GRAND 24.25",
		"INCHEON AIRPORT",
	}
	res := ParsePage(5, lines)
	lay := res.Carry.Open.DutyPeriods[0].Layover
	if lay.Hotel != "SHERATON GRAND INCHEON AIRPORT" {
		t.Errorf("hotel = %q, want wrapped name merged", lay.Hotel)
	}
}

// A duration token can pass the line regex but fail numeric parse; the field
// degrades to empty and the token is reported as unparsed.
func TestParsePageMalformedDuration(t *testing.T) {
	lines := []string{
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700",
		"281  DFW  0900  1400L  ICN  1630  B9:75  CR9:15",
	}
	res := ParsePage(3, lines)
	if res.Carry == nil {
		t.Fatal("Carry = nil, want open pairing")
	}
	leg := res.Carry.Open.DutyPeriods[0].Legs[0]
	if leg.Block != "" {
		t.Errorf("block = %q, want empty for 9:75", leg.Block)
	}
	if leg.Credit != "9:15" {
		t.Errorf("credit = %q, want 9:15", leg.Credit)
	}
	if len(res.Unparsed) != 1 || res.Unparsed[0] != "9:75" {
		t.Errorf("Unparsed = %v, want the malformed token recorded", res.Unparsed)
	}
}

func TestParsePageUnattachedLines(t *testing.T) {
	lines := []string{
		"RLS 1730",
		"281  DFW  0900  1400L  ICN  1630  B8:30",
	}
	res := ParsePage(2, lines)
	if res.SawHeader {
		t.Fatal("SawHeader = true on headerless page")
	}
	if len(res.Leading) != 2 {
		t.Fatalf("Leading = %d, want 2", len(res.Leading))
	}
	// With no carry to attach to, both leading lines are unparsed.
	frags, carry, unparsed := Continue(nil, res.Leading)
	if len(frags) != 0 || carry != nil {
		t.Fatalf("Continue(nil) frags=%d carry=%+v, want none", len(frags), carry)
	}
	if len(unparsed) != 2 {
		t.Errorf("unparsed = %d lines, want 2", len(unparsed))
	}
}

func TestParsePageSectionMarkerClosesPairing(t *testing.T) {
	lines := []string{
		"182  1DAYS  DP1  CA  03/14",
		"0700",
		"281  DFW  0900  1400L  ELP  1000  B2:00",
		"RLS 1030",
		"DFW 787",
		"199  1DAYS  DP1  CA  03/20",
	}
	res := ParsePage(6, lines)
	if len(res.Fragments) != 2 {
		t.Fatalf("Fragments = %d, want pairing + marker", len(res.Fragments))
	}
	if res.Fragments[0].Kind != FragPairing || res.Fragments[0].Pairing.Sequence != "182" {
		t.Errorf("fragment 0 = %+v, want closed pairing 182", res.Fragments[0])
	}
	if res.Fragments[1].Kind != FragAircraft || res.Fragments[1].Aircraft != "787" {
		t.Errorf("fragment 1 = %+v, want aircraft 787", res.Fragments[1])
	}
	if res.Carry.Open.AircraftType != "787" {
		t.Errorf("carried aircraft = %q, want 787", res.Carry.Open.AircraftType)
	}
}
