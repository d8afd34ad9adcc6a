package protocol

import (
	"strconv"
	"strings"
)

// Decode validates the markers of line and splits its payload into a Frame.
//
// line must already be trimmed. A line shorter than two bytes, or one that
// does not start with StartMarker and end with EndMarker, returns
// ErrInvalidFrame. Otherwise decoding never fails: at most FieldCount tokens
// are taken from the payload, each parsed with parseField, and slots without
// a token stay 0. "SE" decodes to all zeros.
func Decode(line string) (Frame, error) {
	var f Frame
	if len(line) < 2 || line[0] != StartMarker || line[len(line)-1] != EndMarker {
		return f, ErrInvalidFrame
	}

	payload := line[1 : len(line)-1]
	if payload == "" {
		return f, nil
	}

	for i, tok := range strings.SplitN(payload, string(Delimiter), FieldCount+1) {
		if i == FieldCount {
			break
		}
		f[i] = parseField(tok)
	}
	return f, nil
}

// parseField reads a leading decimal integer from s the way a C atol does:
// leading whitespace is skipped, an optional sign is accepted, digits are read
// up to the first non-digit. A token without digits, or one that overflows,
// yields 0.
func parseField(s string) int {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
