package linebuf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s *Splitter) []string {
	var out []string
	for {
		l, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, l)
	}
}

func TestSplitterOneLineAtATime(t *testing.T) {
	s := New(0)
	s.Feed([]byte("S1E\r\n  SE \nX"))

	l, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "S1E", l)

	l, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, "SE", l)

	_, ok = s.Next()
	assert.False(t, ok, "X has no newline yet")

	s.Feed([]byte("\n"))
	l, ok = s.Next()
	require.True(t, ok)
	assert.Equal(t, "X", l)
}

func TestSplitterLineAcrossFeeds(t *testing.T) {
	s := New(0)
	s.Feed([]byte("S9"))
	s.Feed([]byte("0,1"))
	s.Feed([]byte("E\n"))

	assert.Equal(t, []string{"S90,1E"}, drain(s))
}

func TestSplitterDropsTailOfOverlongLine(t *testing.T) {
	s := New(0)
	s.Feed([]byte(strings.Repeat("x", 300)))
	assert.Empty(t, drain(s))

	// The rest of the same line looks like a frame but must not surface.
	s.Feed([]byte("S1,1,1,1,1,1,0,0,0E\n"))
	assert.Empty(t, drain(s))
	assert.Equal(t, 1, s.Dropped())

	s.Feed([]byte("SE\n"))
	assert.Equal(t, []string{"SE"}, drain(s))
}

func TestSplitterDropsOverlongTerminatedLine(t *testing.T) {
	s := New(8)
	s.Feed([]byte("123456789\nSE\n"))

	assert.Equal(t, []string{"SE"}, drain(s))
	assert.Equal(t, 1, s.Dropped())
}

func TestSplitterOverlongAfterCompleteLine(t *testing.T) {
	s := New(8)
	s.Feed([]byte("SE\n" + strings.Repeat("y", 20)))

	assert.Equal(t, []string{"SE"}, drain(s))
	s.Feed([]byte("S1E\nS2E\n"))
	assert.Equal(t, []string{"S2E"}, drain(s))
}

func TestSplitterExactlyMaxLen(t *testing.T) {
	s := New(4)
	s.Feed([]byte("S12E\n"))

	assert.Equal(t, []string{"S12E"}, drain(s))
	assert.Zero(t, s.Dropped())
}

func TestSplitterRest(t *testing.T) {
	s := New(0)
	s.Feed([]byte("S1E\nS2E "))
	drain(s)

	l, ok := s.Rest()
	require.True(t, ok)
	assert.Equal(t, "S2E", l)

	_, ok = s.Rest()
	assert.False(t, ok)
}

func TestSplitterRestWhileDiscarding(t *testing.T) {
	s := New(4)
	s.Feed([]byte("0123456789"))

	_, ok := s.Rest()
	assert.False(t, ok)
}
