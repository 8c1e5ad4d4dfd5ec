package gapfill

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment tags the minutes of an hour that fall on a cadence of Divisor minutes.
type Segment struct {
	Divisor int    `json:"divisor"`
	Label   string `json:"label"`
}

// String renders the segment in the divisor=label form accepted by ParseSegment.
func (s Segment) String() string {
	return strconv.Itoa(s.Divisor) + "=" + s.Label
}

// Segments is an ordered segment set. Order decides label order in descriptions.
type Segments []Segment

// DefaultSegments returns the 2, 5, 10, 15 and 30 minute cadences.
func DefaultSegments() Segments {
	return Segments{
		{Divisor: 2, Label: "2min"},
		{Divisor: 5, Label: "5min"},
		{Divisor: 10, Label: "10min"},
		{Divisor: 15, Label: "15min"},
		{Divisor: 30, Label: "30min"},
	}
}

// ParseSegment parses "divisor=label", e.g. "15=15min".
func ParseSegment(s string) (Segment, error) {
	div, label, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return Segment{}, fmt.Errorf("%w: %q: expected divisor=label", ErrInvalidSegment, s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(div))
	if err != nil {
		return Segment{}, fmt.Errorf("%w: %q: divisor is not a number", ErrInvalidSegment, s)
	}
	seg := Segment{Divisor: n, Label: strings.TrimSpace(label)}
	if err := seg.validate(); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// ParseSegments parses each spec in order. Empty input yields DefaultSegments.
func ParseSegments(specs []string) (Segments, error) {
	if len(specs) == 0 {
		return DefaultSegments(), nil
	}
	out := make(Segments, 0, len(specs))
	for _, s := range specs {
		seg, err := ParseSegment(s)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s Segment) validate() error {
	if s.Divisor <= 0 {
		return fmt.Errorf("%w: divisor must be positive, got %d", ErrInvalidSegment, s.Divisor)
	}
	if s.Label == "" {
		return fmt.Errorf("%w: divisor %d has an empty label", ErrInvalidSegment, s.Divisor)
	}
	return nil
}

// Validate rejects empty sets, non-positive divisors, empty labels and duplicate divisors.
func (s Segments) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no segments configured", ErrInvalidSegment)
	}
	seen := make(map[int]bool, len(s))
	for _, seg := range s {
		if err := seg.validate(); err != nil {
			return err
		}
		if seen[seg.Divisor] {
			return fmt.Errorf("%w: duplicate divisor %d", ErrInvalidSegment, seg.Divisor)
		}
		seen[seg.Divisor] = true
	}
	return nil
}

// String renders the set as comma-separated divisor=label pairs.
func (s Segments) String() string {
	parts := make([]string, len(s))
	for i, seg := range s {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ",")
}

// Match returns the labels of the segments minute falls on, in set order.
// Minute 0 falls on every segment.
func (s Segments) Match(minute int) []string {
	var labels []string
	for _, seg := range s {
		if minute == 0 || (seg.Divisor > 0 && minute%seg.Divisor == 0) {
			labels = append(labels, seg.Label)
		}
	}
	return labels
}
