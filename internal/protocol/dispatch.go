package protocol

// Dispatch applies f to the bank.
//
// Each servo field is written only when it lies in [MinAngle, MaxAngle];
// an out-of-range value leaves that servo untouched and does not affect the
// other channels. Output fields are written unconditionally, on when non-zero.
func Dispatch(f Frame, a Actuators) {
	for ch := 0; ch < ServoCount; ch++ {
		if v := f.Angle(ch); v >= MinAngle && v <= MaxAngle {
			a.SetAngle(ch, v)
		}
	}
	for ch := 0; ch < OutputCount; ch++ {
		a.SetOutput(ch, f.Output(ch))
	}
}
