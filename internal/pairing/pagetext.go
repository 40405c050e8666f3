package pairing

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PageProvider supplies the extracted text of one document page as an
// ordered sequence of lines. Pages are 1-indexed. Implementations must be
// safe for concurrent use; the scheduler calls them from multiple workers.
type PageProvider interface {
	PageText(ctx context.Context, page int) ([]string, error)
}

// PageText is one page of pre-extracted document text, as delivered by the
// external rendering collaborator. Input files are JSONL: one PageText
// object per line.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// MapProvider is an in-memory PageProvider backed by pre-loaded page texts.
type MapProvider map[int][]string

// PageText returns the lines of the given page, or an error for pages the
// input never supplied. A missing page is a per-page fault, not a fatal one;
// the scheduler turns it into a gap.
func (m MapProvider) PageText(_ context.Context, page int) ([]string, error) {
	lines, ok := m[page]
	if !ok {
		return nil, fmt.Errorf("page %d: no text available", page)
	}
	return lines, nil
}

// MaxPage returns the highest page number present, or 0 when empty.
func (m MapProvider) MaxPage() int {
	max := 0
	for p := range m {
		if p > max {
			max = p
		}
	}
	return max
}

// LoadJSONL reads a JSONL stream of PageText objects into a MapProvider.
// Blank lines are skipped; a malformed line or a non-positive page number is
// an error (the input as a whole is unusable, per the fatal-fault policy).
func LoadJSONL(r io.Reader) (MapProvider, error) {
	scanner := bufio.NewScanner(r)
	// Page texts can be long; bump the buffer well past the default.
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 16*1024*1024)

	provider := make(MapProvider)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var pt PageText
		if err := json.Unmarshal([]byte(raw), &pt); err != nil {
			return nil, fmt.Errorf("input line %d: %w", lineNo, err)
		}
		if pt.Page < 1 {
			return nil, fmt.Errorf("input line %d: invalid page number %d", lineNo, pt.Page)
		}
		provider[pt.Page] = strings.Split(pt.Text, "\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return provider, nil
}
