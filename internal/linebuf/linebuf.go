// Package linebuf cuts newline-terminated command lines out of a byte
// stream. It has no OS dependencies so the firmware build can use it.
package linebuf

import (
	"bytes"
	"strings"
)

// DefaultMaxLen is the longest line accepted, excluding the newline.
const DefaultMaxLen = 256

// Splitter accumulates bytes and hands out trimmed lines one at a time.
//
// A line longer than the limit is dropped whole: once the limit is passed
// everything up to and including the next newline is discarded, so the tail
// of an over-long line is never mistaken for a line of its own.
type Splitter struct {
	max        int
	pending    []byte
	discarding bool
	dropped    int
}

// New returns a Splitter for lines of at most max bytes.
// max <= 0 selects DefaultMaxLen.
func New(max int) *Splitter {
	if max <= 0 {
		max = DefaultMaxLen
	}
	return &Splitter{max: max}
}

// Feed appends received bytes.
func (s *Splitter) Feed(p []byte) {
	s.pending = append(s.pending, p...)
	if !s.discarding && bytes.IndexByte(s.pending, '\n') < 0 && len(s.pending) > s.max {
		s.startDiscard()
	}
	if s.discarding {
		// Only the part after the next newline can matter.
		if i := bytes.IndexByte(s.pending, '\n'); i < 0 {
			s.pending = s.pending[:0]
		}
	}
}

func (s *Splitter) startDiscard() {
	s.pending = s.pending[:0]
	s.discarding = true
	s.dropped++
}

// Next returns the next complete line, whitespace-trimmed.
// Lines still waiting stay buffered for later calls.
func (s *Splitter) Next() (string, bool) {
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			if !s.discarding && len(s.pending) > s.max {
				s.startDiscard()
			}
			return "", false
		}

		line := strings.TrimSpace(string(s.pending[:i]))
		skip := s.discarding || i > s.max
		if !s.discarding && i > s.max {
			s.dropped++
		}
		s.pending = append(s.pending[:0], s.pending[i+1:]...)
		s.discarding = false
		if skip {
			continue
		}
		return line, true
	}
}

// Rest returns an unterminated final line, e.g. at end of input.
func (s *Splitter) Rest() (string, bool) {
	if s.discarding || len(s.pending) == 0 || len(s.pending) > s.max {
		return "", false
	}
	line := strings.TrimSpace(string(s.pending))
	s.pending = s.pending[:0]
	return line, true
}

// Dropped returns how many over-long lines have been discarded.
func (s *Splitter) Dropped() int {
	return s.dropped
}
