package protocol

// State is the controller's processing state.
type State int

const (
	Idle State = iota
	Processing
)

func (s State) String() string {
	if s == Processing {
		return "PROCESSING"
	}
	return "IDLE"
}

// Result is the outcome of handling one line.
type Result struct {
	// Response is the line to write back: an encoded state frame, or
	// ErrorResponse when Err is set.
	Response string
	Frame    Frame
	Snapshot Snapshot
	Err      error
}

// Controller runs one line at a time through decode, dispatch and encode.
// It is not safe for concurrent use; the caller's poll loop owns it.
type Controller struct {
	dev   Device
	state State
}

// NewController creates a controller that drives dev.
func NewController(dev Device) *Controller {
	return &Controller{dev: dev}
}

// Handle processes one trimmed line to completion and returns to Idle.
// An invalid frame is answered with ErrorResponse and never reaches the bank.
func (c *Controller) Handle(line string) Result {
	c.state = Processing
	defer func() { c.state = Idle }()

	f, err := Decode(line)
	if err != nil {
		return Result{Response: ErrorResponse, Err: err}
	}

	Dispatch(f, c.dev)
	snap := Read(c.dev)
	return Result{
		Response: Encode(snap),
		Frame:    f,
		Snapshot: snap,
	}
}

// State returns the current processing state.
func (c *Controller) State() State {
	return c.state
}
