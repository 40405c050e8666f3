package builder

import (
	"testing"

	"pairing_parser/internal/pageparser"
	"pairing_parser/internal/pairing"
)

func collect() (*[]*pairing.Pairing, Sink) {
	var out []*pairing.Pairing
	return &out, func(p *pairing.Pairing) error {
		out = append(out, p)
		return nil
	}
}

func ingestPages(t *testing.T, b *Builder, pages map[int][]string, order []int) {
	t.Helper()
	for _, page := range order {
		if err := b.Ingest(pageparser.ParsePage(page, pages[page])); err != nil {
			t.Fatalf("Ingest page %d: %v", page, err)
		}
	}
}

var twoPagePairing = map[int][]string{
	1: {
		"DFW 777",
		"COCKPIT CALENDAR 04/01−05/01",
		"182  2DAYS  DP2  CA/FO  03/14",
		"0700",
		"281  DFW  0900  1400L  ICN",
	},
	2: {
		"1630  B8:30",
		"ICN SHERATON INCHEON 82328351000 24.25",
		"0800",
		"282  ICN  1000  1500  DFW  1700  B9:00",
		"RLS 1730",
		"199  1DAYS  DP1  CA  03/20",
		"0600",
		"101  DFW  0700  0900  ELP  0800  B2:00",
		"RLS 0830",
	},
}

func TestBuilderStitchesAcrossPages(t *testing.T) {
	out, sink := collect()
	b := New(sink)
	ingestPages(t, b, twoPagePairing, []int{1, 2})
	sum, err := b.Close()
	if err != nil {
		t.Fatal(err)
	}

	if len(*out) != 2 {
		t.Fatalf("emitted %d pairings, want 2", len(*out))
	}
	p := (*out)[0]
	if p.Sequence != "182" {
		t.Fatalf("first pairing = %s, want 182", p.Sequence)
	}
	if len(p.DutyPeriods) != 2 {
		t.Fatalf("duty periods = %d, want 2", len(p.DutyPeriods))
	}
	if got := p.DutyPeriods[0].Legs[0].ArrivalLocal; got != "1630" {
		t.Errorf("stitched arrival = %q, want 1630", got)
	}
	if p.AircraftType != "777" {
		t.Errorf("aircraft = %q, want 777", p.AircraftType)
	}
	if p.Flagged {
		t.Error("clean pairing flagged")
	}
	if (*out)[1].Sequence != "199" {
		t.Errorf("second pairing = %s, want 199", (*out)[1].Sequence)
	}

	if sum.EmittedPairings != 2 || sum.FlaggedPairings != 0 || sum.FailedPages != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.EmittedRows != 3 {
		t.Errorf("rows = %d, want 3", sum.EmittedRows)
	}
}

// A document split across two pages yields the same pairings as the same
// lines on a single page.
func TestBuilderSplitEquivalence(t *testing.T) {
	var single []string
	single = append(single, twoPagePairing[1]...)
	single = append(single, twoPagePairing[2]...)

	outSplit, sinkSplit := collect()
	bs := New(sinkSplit)
	ingestPages(t, bs, twoPagePairing, []int{1, 2})
	if _, err := bs.Close(); err != nil {
		t.Fatal(err)
	}

	outOne, sinkOne := collect()
	bo := New(sinkOne)
	ingestPages(t, bo, map[int][]string{1: single}, []int{1})
	if _, err := bo.Close(); err != nil {
		t.Fatal(err)
	}

	if len(*outSplit) != len(*outOne) {
		t.Fatalf("split emitted %d, single emitted %d", len(*outSplit), len(*outOne))
	}
	for i := range *outSplit {
		sp, op := (*outSplit)[i], (*outOne)[i]
		if sp.Sequence != op.Sequence || len(sp.DutyPeriods) != len(op.DutyPeriods) {
			t.Errorf("pairing %d differs: split %s/%d dps, single %s/%d dps",
				i, sp.Sequence, len(sp.DutyPeriods), op.Sequence, len(op.DutyPeriods))
		}
		sr, or := sp.Rows(), op.Rows()
		if len(sr) != len(or) {
			t.Errorf("pairing %d rows differ: %d vs %d", i, len(sr), len(or))
			continue
		}
		for j := range sr {
			if sr[j] != or[j] {
				t.Errorf("pairing %d row %d differs:\nsplit:  %+v\nsingle: %+v", i, j, sr[j], or[j])
			}
		}
	}
}

func TestBuilderFlagsCountMismatch(t *testing.T) {
	pages := map[int][]string{
		1: {
			"182  3DAYS  DP3  CA/FO  03/14",
			"0700",
			"281  DFW  0900  1400L  ELP  1000  B2:00",
			"RLS 1030",
			"199  1DAYS  DP1  CA  03/20",
			"0600",
			"101  DFW  0700  0900  ELP  0800  B2:00",
			"RLS 0830",
		},
	}
	out, sink := collect()
	b := New(sink)
	ingestPages(t, b, pages, []int{1})
	sum, _ := b.Close()

	if len(*out) != 2 {
		t.Fatalf("emitted %d, want 2", len(*out))
	}
	if !(*out)[0].Flagged {
		t.Error("pairing 182 declared DP3 with one duty period, want flagged")
	}
	if (*out)[1].Flagged {
		t.Error("pairing 199 flagged, want clean")
	}
	if sum.FlaggedPairings != 1 {
		t.Errorf("FlaggedPairings = %d, want 1", sum.FlaggedPairings)
	}
}

func TestBuilderDropsZeroDutyPairing(t *testing.T) {
	pages := map[int][]string{
		1: {
			"182  2DAYS  DP2  CA/FO  03/14",
			"199  1DAYS  DP1  CA  03/20",
			"0600",
			"101  DFW  0700  0900  ELP  0800  B2:00",
		},
	}
	out, sink := collect()
	b := New(sink)
	ingestPages(t, b, pages, []int{1})
	sum, _ := b.Close()

	if len(*out) != 1 || (*out)[0].Sequence != "199" {
		t.Fatalf("emitted %v, want only 199", seqs(*out))
	}
	if sum.DroppedPairings != 1 {
		t.Errorf("DroppedPairings = %d, want 1", sum.DroppedPairings)
	}
}

func TestBuilderKeepsDeadheadDay(t *testing.T) {
	pages := map[int][]string{
		1: {
			"182  2DAYS  DP2  CA/FO  03/14",
			"0700",
			"ELP 17.06",
			"0800",
			"101  ELP  0900  1100  DFW  1200  B3:00",
			"RLS 1230",
		},
	}
	out, sink := collect()
	b := New(sink)
	ingestPages(t, b, pages, []int{1})
	if _, err := b.Close(); err != nil {
		t.Fatal(err)
	}

	if len(*out) != 1 {
		t.Fatalf("emitted %d, want 1", len(*out))
	}
	p := (*out)[0]
	if len(p.DutyPeriods) != 2 {
		t.Fatalf("duty periods = %d, want legless layover day kept", len(p.DutyPeriods))
	}
	if p.DutyPeriods[0].Layover == nil || p.DutyPeriods[0].Layover.City != "ELP" {
		t.Errorf("first duty period = %+v, want ELP layover", p.DutyPeriods[0])
	}
	if len(p.Rows()) != 1 {
		t.Errorf("rows = %d, want 1 (deadhead day has no legs)", len(p.Rows()))
	}
}

func TestBuilderGapForceClosesCarry(t *testing.T) {
	out, sink := collect()
	b := New(sink)
	if err := b.Ingest(pageparser.ParsePage(1, twoPagePairing[1])); err != nil {
		t.Fatal(err)
	}
	if err := b.IngestGap(2); err != nil {
		t.Fatal(err)
	}
	sum, err := b.Close()
	if err != nil {
		t.Fatal(err)
	}

	if len(*out) != 1 {
		t.Fatalf("emitted %d, want the truncated pairing", len(*out))
	}
	p := (*out)[0]
	if p.Sequence != "182" || !p.Flagged {
		t.Errorf("pairing = %s flagged=%v, want 182 flagged", p.Sequence, p.Flagged)
	}
	if sum.FailedPages != 1 {
		t.Errorf("FailedPages = %d, want 1", sum.FailedPages)
	}
}

// Leading lines after a gap have nothing to attach to and count as unparsed,
// but markers among them still move the document context.
func TestBuilderLeadingAfterGap(t *testing.T) {
	out, sink := collect()
	b := New(sink)
	if err := b.IngestGap(1); err != nil {
		t.Fatal(err)
	}
	page2 := []string{
		"RLS 1730",
		"DFW 787",
		"199  1DAYS  DP1  CA  03/20",
		"0600",
		"101  DFW  0700  0900  ELP  0800  B2:00",
	}
	if err := b.Ingest(pageparser.ParsePage(2, page2)); err != nil {
		t.Fatal(err)
	}
	sum, _ := b.Close()

	if len(*out) != 1 {
		t.Fatalf("emitted %d, want 1", len(*out))
	}
	if got := (*out)[0].AircraftType; got != "787" {
		t.Errorf("aircraft = %q, want 787 from post-gap marker", got)
	}
	if sum.UnparsedLines != 1 {
		t.Errorf("UnparsedLines = %d, want 1 (the orphaned release)", sum.UnparsedLines)
	}
}

func TestBuilderDefaultMonth(t *testing.T) {
	pages := map[int][]string{
		1: {
			"SEQ 182 30 OPS POSN CA FO",
			"RPT 0915/0915 14 15",
			"1 1/1 83 281 DFW 1015/1015 L ICN 1530/0130 15.15",
			"RLS 1600/0200 15.15 0.00 15.15 16.45 16.15",
		},
	}
	out, sink := collect()
	b := New(sink)
	ingestPages(t, b, pages, []int{1})
	if _, err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if len(*out) != 1 {
		t.Fatalf("emitted %d, want 1", len(*out))
	}
	if got := (*out)[0].StartDate; got != "04/14" {
		t.Errorf("start date = %q, want 04/14 via default month", got)
	}
}

func TestBuilderDuplicateSequencesStayDistinct(t *testing.T) {
	pages := map[int][]string{
		1: {
			"182  1DAYS  DP1  CA  03/14",
			"0700",
			"101  DFW  0900  1100  ELP  1000  B2:00",
			"RLS 1030",
			"182  1DAYS  DP1  CA  03/21",
			"0700",
			"101  DFW  0900  1100  ELP  1000  B2:00",
			"RLS 1030",
		},
	}
	out, sink := collect()
	b := New(sink)
	ingestPages(t, b, pages, []int{1})
	if _, err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if len(*out) != 2 {
		t.Fatalf("emitted %d, want both instances of sequence 182", len(*out))
	}
	if (*out)[0].StartDate == (*out)[1].StartDate {
		t.Error("instances collapsed: identical start dates")
	}
}

func TestBuilderRejectsOutOfOrderPages(t *testing.T) {
	_, sink := collect()
	b := New(sink)
	if err := b.Ingest(pageparser.ParsePage(2, nil)); err != nil {
		t.Fatal(err)
	}
	if err := b.Ingest(pageparser.ParsePage(1, nil)); err == nil {
		t.Fatal("Ingest accepted page 1 after page 2")
	}
}

func seqs(ps []*pairing.Pairing) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Sequence)
	}
	return out
}
