// Package pairing provides the crew pairing data model shared across the
// parsing pipeline: pairings, duty periods, flight legs, layovers, and the
// flattened per-leg output row.
package pairing

import "strings"

// Pairing is one multi-day trip assignment (a "sequence") from a bid package.
// A Pairing only leaves the sequence builder once it is closed; while a page
// parse is still feeding it, it lives inside a pageparser carry.
type Pairing struct {
	Sequence        string       `json:"sequence"`
	Days            int          `json:"days"`
	DutyPeriodCount int          `json:"duty_period_count"` // declared count; 0 when the document never stated one
	Positions       []string     `json:"positions"`
	StartDate       string       `json:"start_date,omitempty"` // MM/DD
	StartDay        string       `json:"-"`                    // raw day number awaiting a calendar month
	AircraftType    string       `json:"aircraft_type,omitempty"`
	DutyPeriods     []*DutyPeriod `json:"duty_periods"`

	// Flagged marks a structural anomaly (declared duty-period count does
	// not match the duty periods actually collected, or a forced close at a
	// page gap). The pairing is still emitted.
	Flagged bool `json:"flagged,omitempty"`
}

// DutyPeriod is one continuous work block within a pairing, bounded by a
// report time and a release or layover.
type DutyPeriod struct {
	Index       int       `json:"index"` // 1-based within the pairing
	ReportLocal string    `json:"report_local,omitempty"`
	ReportBase  string    `json:"report_base,omitempty"`
	Legs        []*Leg    `json:"legs"`
	Layover     *Layover  `json:"layover,omitempty"`
}

// Leg is one flight segment. Durations are normalized to H:MM on capture;
// fields that failed to parse are empty, never fabricated.
type Leg struct {
	Flight         string `json:"flight"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination,omitempty"`
	DepartureLocal string `json:"departure_local,omitempty"`
	DepartureBase  string `json:"departure_base,omitempty"`
	ArrivalLocal   string `json:"arrival_local,omitempty"`
	Meal           string `json:"meal,omitempty"`
	Block          string `json:"block,omitempty"`
	Credit         string `json:"credit,omitempty"`
	Duty           string `json:"duty,omitempty"`
	ReleaseLocal   string `json:"release_local,omitempty"` // last leg of a duty period only
}

// Layover is the rest period closing a duty period at an away city.
type Layover struct {
	City     string `json:"city"`
	Hotel    string `json:"hotel,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Position joins the crew position codes the way the output reports them,
// e.g. "CA/FO".
func (p *Pairing) Position() string {
	return strings.Join(p.Positions, "/")
}

// Row is the flattened per-leg output record. Column order matches the
// published bid-package extract layout; gocsv emits headers from the tags.
type Row struct {
	Sequence        string `csv:"Sequence" json:"sequence"`
	Days            int    `csv:"Days" json:"days"`
	DutyPeriods     int    `csv:"Duty_Periods" json:"duty_periods"`
	Position        string `csv:"Position" json:"position"`
	StartDate       string `csv:"Start_Date" json:"start_date"`
	ReportLocal     string `csv:"Report_Local" json:"report_local"`
	Flight          string `csv:"Flight" json:"flight"`
	Origin          string `csv:"Origin" json:"origin"`
	DepartureLocal  string `csv:"Departure_Local" json:"departure_local"`
	DepartureBase   string `csv:"Departure_Base" json:"departure_base"`
	Meal            string `csv:"Meal" json:"meal"`
	Destination     string `csv:"Destination" json:"destination"`
	ArrivalLocal    string `csv:"Arrival_Local" json:"arrival_local"`
	Block           string `csv:"Block" json:"block"`
	ReleaseLocal    string `csv:"Release_Local" json:"release_local"`
	Credit          string `csv:"Credit" json:"credit"`
	Duty            string `csv:"Duty" json:"duty"`
	LayoverCity     string `csv:"Layover_City" json:"layover_city"`
	LayoverHotel    string `csv:"Layover_Hotel" json:"layover_hotel"`
	LayoverDuration string `csv:"Layover_Duration" json:"layover_duration"`
	AircraftType    string `csv:"Aircraft_Type" json:"aircraft_type"`
}

// Rows flattens a closed pairing into one row per leg. Layover columns are
// populated only on the last leg of a duty period that ends in a layover.
func (p *Pairing) Rows() []Row {
	declared := p.DutyPeriodCount
	if declared == 0 {
		declared = len(p.DutyPeriods)
	}

	var rows []Row
	for _, dp := range p.DutyPeriods {
		for i, leg := range dp.Legs {
			row := Row{
				Sequence:       p.Sequence,
				Days:           p.Days,
				DutyPeriods:    declared,
				Position:       p.Position(),
				StartDate:      p.StartDate,
				ReportLocal:    dp.ReportLocal,
				Flight:         leg.Flight,
				Origin:         leg.Origin,
				DepartureLocal: leg.DepartureLocal,
				DepartureBase:  leg.DepartureBase,
				Meal:           leg.Meal,
				Destination:    leg.Destination,
				ArrivalLocal:   leg.ArrivalLocal,
				Block:          leg.Block,
				ReleaseLocal:   leg.ReleaseLocal,
				Credit:         leg.Credit,
				Duty:           leg.Duty,
				AircraftType:   p.AircraftType,
			}
			if i == len(dp.Legs)-1 && dp.Layover != nil {
				row.LayoverCity = dp.Layover.City
				row.LayoverHotel = dp.Layover.Hotel
				row.LayoverDuration = dp.Layover.Duration
			}
			rows = append(rows, row)
		}
	}
	return rows
}
