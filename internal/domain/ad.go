package domain

import (
	"fmt"
	"strings"
)

// SegmentCount is the fixed number of segments in every ad: hook, core
// message, call to action.
const SegmentCount = 3

// AdSegment is one narrated unit of an ad.
type AdSegment struct {
	Text                     string  `json:"text"`
	VisualKeywords           string  `json:"visualKeywords"`
	EstimatedDurationSeconds float64 `json:"estimatedDuration"`
}

// WithText returns a copy of the segment carrying the replacement text.
func (s AdSegment) WithText(text string) AdSegment {
	s.Text = text
	return s
}

// AdContent is the generated script for one day.
type AdContent struct {
	Theme    string      `json:"theme"`
	Segments []AdSegment `json:"segments"`
}

// Validate checks the segment count and that every segment carries text.
func (c AdContent) Validate() error {
	if len(c.Segments) != SegmentCount {
		return fmt.Errorf("%w: expected %d segments, got %d", ErrInvalidContent, SegmentCount, len(c.Segments))
	}
	for i, seg := range c.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			return fmt.Errorf("%w: segment %d has no text", ErrInvalidContent, i)
		}
	}
	return nil
}
