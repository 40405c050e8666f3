// Package builder merges per-page parse results, in strict page order, into a
// single stream of closed pairings. It owns the document-wide context
// (current aircraft section, bid month), stitches pairings that span page
// boundaries, and applies the drop/flag policies for malformed records.
package builder

import (
	"fmt"

	"pairing_parser/internal/pageparser"
	"pairing_parser/internal/pairing"
	"pairing_parser/internal/patterns"
)

// DefaultMonth is the bid month assumed until a calendar marker states one.
const DefaultMonth = "04"

// Sink receives each closed pairing, in document order.
type Sink func(*pairing.Pairing) error

// Summary is the diagnostic tally for one document run.
type Summary struct {
	PagesParsed     int `json:"pages_parsed"`
	FailedPages     int `json:"failed_pages"`
	UnparsedLines   int `json:"unparsed_lines"`
	DroppedPairings int `json:"dropped_pairings"` // closed with no usable duty periods
	FlaggedPairings int `json:"flagged_pairings"`
	EmittedPairings int `json:"emitted_pairings"`
	EmittedRows     int `json:"emitted_rows"`
}

// Builder consumes page results in ascending page order. It is not safe for
// concurrent use; the scheduler serializes delivery.
type Builder struct {
	sink     Sink
	aircraft string
	month    string
	carry    *pageparser.Carry
	lastPage int
	summary  Summary
}

// New returns a Builder feeding the given sink.
func New(sink Sink) *Builder {
	return &Builder{sink: sink, month: DefaultMonth}
}

// Ingest merges one page result. Pages must arrive in strictly ascending
// order; a skipped page must be reported through IngestGap first.
func (b *Builder) Ingest(res pageparser.Result) error {
	if res.Page <= b.lastPage {
		return fmt.Errorf("page %d delivered after page %d", res.Page, b.lastPage)
	}
	b.lastPage = res.Page
	b.summary.PagesParsed++

	// Replay the page's leading lines against the carried pairing. With no
	// carry they surface as unparsed; markers among them always advance the
	// document context.
	frags, carry, unparsed := pageparser.Continue(b.carry, res.Leading)
	b.summary.UnparsedLines += len(unparsed)
	if err := b.consume(frags); err != nil {
		return err
	}

	if carry != nil {
		if res.SawHeader {
			// The page opened a new pairing, so the stitched one is done.
			if err := b.emit(pageparser.Close(carry)); err != nil {
				return err
			}
			b.carry = nil
		} else {
			b.carry = carry
			return nil
		}
	} else {
		b.carry = nil
	}

	b.summary.UnparsedLines += len(res.Unparsed)
	if err := b.consume(res.Fragments); err != nil {
		return err
	}
	b.carry = res.Carry
	return nil
}

// IngestGap records a page that could not be parsed. The carried pairing, if
// any, is force-closed and flagged; whatever the missing page held is gone.
func (b *Builder) IngestGap(page int) error {
	if page <= b.lastPage {
		return fmt.Errorf("page %d delivered after page %d", page, b.lastPage)
	}
	b.lastPage = page
	b.summary.FailedPages++

	if b.carry != nil {
		p := pageparser.Close(b.carry)
		b.carry = nil
		if p != nil {
			p.Flagged = true
			return b.emit(p)
		}
	}
	return nil
}

// Close flushes the final carried pairing and returns the run summary.
func (b *Builder) Close() (Summary, error) {
	if b.carry != nil {
		p := pageparser.Close(b.carry)
		b.carry = nil
		if err := b.emit(p); err != nil {
			return b.summary, err
		}
	}
	return b.summary, nil
}

// Summary returns the tally so far.
func (b *Builder) Summary() Summary {
	return b.summary
}

func (b *Builder) consume(frags []pageparser.Fragment) error {
	for _, f := range frags {
		switch f.Kind {
		case pageparser.FragAircraft:
			b.aircraft = f.Aircraft
		case pageparser.FragCalendar:
			b.month = f.Month
		case pageparser.FragPairing:
			if err := b.emit(f.Pairing); err != nil {
				return err
			}
		}
	}
	return nil
}

// emit applies the close policies and hands the pairing to the sink:
// unresolved aircraft/month fields are filled from document context, duty
// periods with no content are dropped, pairings with nothing left are
// dropped, and declared-versus-actual count mismatches are flagged.
func (b *Builder) emit(p *pairing.Pairing) error {
	if p == nil {
		return nil
	}
	if p.AircraftType == "" {
		p.AircraftType = b.aircraft
	}
	if p.StartDate == "" && p.StartDay != "" {
		p.StartDate = patterns.FormatStartDate(b.month, p.StartDay)
	}

	// An empty duty period is a parse artifact unless a layover closed it;
	// a report-and-layover day with no legs is a real (deadhead) day.
	kept := p.DutyPeriods[:0]
	for _, dp := range p.DutyPeriods {
		if len(dp.Legs) == 0 && dp.Layover == nil {
			continue
		}
		dp.Index = len(kept) + 1
		kept = append(kept, dp)
	}
	p.DutyPeriods = kept

	if len(p.DutyPeriods) == 0 {
		b.summary.DroppedPairings++
		return nil
	}
	if p.DutyPeriodCount > 0 && p.DutyPeriodCount != len(p.DutyPeriods) {
		p.Flagged = true
	}
	if p.Flagged {
		b.summary.FlaggedPairings++
	}

	b.summary.EmittedPairings++
	b.summary.EmittedRows += len(p.Rows())
	return b.sink(p)
}
