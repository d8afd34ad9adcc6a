package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCommand renders f as a request line (without newline).
func FormatCommand(f Frame) string {
	var sb strings.Builder
	sb.WriteByte(StartMarker)
	for i, v := range f {
		if i > 0 {
			sb.WriteByte(Delimiter)
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte(EndMarker)
	return sb.String()
}

// ParseState parses a response frame produced by Encode.
// Unlike Decode, parsing is strict: every field must be a plain integer.
func ParseState(line string) (Snapshot, error) {
	var s Snapshot
	line = strings.TrimSpace(line)
	if line == ErrorResponse {
		return s, ErrInvalidFrame
	}
	if len(line) < 2 || line[0] != StartMarker || line[len(line)-1] != EndMarker {
		return s, ErrInvalidFrame
	}

	parts := strings.Split(line[1:len(line)-1], string(Delimiter))
	if len(parts) != StateCount {
		return s, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(parts), StateCount)
	}

	vals := make([]int, StateCount)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return s, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = n
	}

	copy(s.Angles[:], vals[:ServoCount])
	for i := range s.Outputs {
		s.Outputs[i] = vals[ServoCount+i] != 0
	}
	for i := range s.Inputs {
		s.Inputs[i] = vals[ServoCount+OutputCount+i] != 0
	}
	return s, nil
}
