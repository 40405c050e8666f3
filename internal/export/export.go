// Package export writes the flattened per-leg rows.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"pairing_parser/internal/pairing"
)

// WriteCSV writes rows as CSV with the published column layout. An empty row
// set still writes the header line.
func WriteCSV(w io.Writer, rows []pairing.Row) error {
	if rows == nil {
		rows = []pairing.Row{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
