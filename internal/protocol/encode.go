package protocol

import "strconv"

// Read takes a live snapshot of the bank.
func Read(r StateReader) Snapshot {
	var s Snapshot
	for ch := range s.Angles {
		s.Angles[ch] = r.Angle(ch)
	}
	for ch := range s.Outputs {
		s.Outputs[ch] = r.Output(ch)
	}
	for ch := range s.Inputs {
		s.Inputs[ch] = r.Input(ch)
	}
	return s
}

// Encode renders s as a response frame.
//
// Servo angles and output states are each followed by a delimiter; input
// states are only separated by one. Existing hosts parse exactly this layout.
func Encode(s Snapshot) string {
	b := make([]byte, 0, 2+StateCount*4)
	b = append(b, StartMarker)

	for _, a := range s.Angles {
		b = strconv.AppendInt(b, int64(a), 10)
		b = append(b, Delimiter)
	}
	for _, on := range s.Outputs {
		b = appendLevel(b, on)
		b = append(b, Delimiter)
	}
	for i, on := range s.Inputs {
		if i > 0 {
			b = append(b, Delimiter)
		}
		b = appendLevel(b, on)
	}

	b = append(b, EndMarker)
	return string(b)
}

func appendLevel(b []byte, on bool) []byte {
	if on {
		return append(b, '1')
	}
	return append(b, '0')
}
