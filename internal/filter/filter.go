// Package filter selects pairings by aircraft/bid-status section tag.
package filter

import (
	"fmt"
	"strings"

	"pairing_parser/internal/pairing"
	"pairing_parser/internal/patterns"
)

// ParseTags parses a comma-separated tag list ("777,787") into a validated
// slice. An empty input means no filter and returns nil.
func ParseTags(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var tags []string
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if !patterns.IsAircraftTag(tag) {
			return nil, fmt.Errorf("unknown aircraft type %q (known: %s)",
				tag, strings.Join(patterns.AircraftTags, ", "))
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("no aircraft types in %q", s)
	}
	return tags, nil
}

// Keep reports whether the pairing's aircraft type is among the wanted tags.
// An empty tag list means no filter: everything is kept, including pairings
// whose section was never resolved. With a filter in place, an unresolved
// section matches nothing.
func Keep(p *pairing.Pairing, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, tag := range wanted {
		if p.AircraftType == tag {
			return true
		}
	}
	return false
}
