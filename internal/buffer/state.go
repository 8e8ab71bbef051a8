package buffer

// State classifies ring occupancy for pacing decisions. It is derived,
// never stored: recompute it from the current fill level.
type State int

const (
	// StateStarving means the ring is empty; the display has nothing to show.
	StateStarving State = iota
	// StateLow means occupancy is below the low-water mark; decode urgently.
	StateLow
	// StateHealthy means occupancy is between the low-water mark and capacity.
	StateHealthy
	// StateFull means occupancy is at capacity; pushing evicts.
	StateFull
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateStarving:
		return "starving"
	case StateLow:
		return "low"
	case StateHealthy:
		return "healthy"
	case StateFull:
		return "full"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so the state serializes as
// its name in JSON stats payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// stateFor classifies an occupancy count against the ring's watermarks.
func stateFor(count, lowWater, capacity int) State {
	switch {
	case count == 0:
		return StateStarving
	case count >= capacity:
		return StateFull
	case count < lowWater:
		return StateLow
	default:
		return StateHealthy
	}
}

// Stats is a snapshot of ring counters and health. Counters are cumulative
// for the life of the ring; Clear resets occupancy but not the counters.
type Stats struct {
	// FrameCount is the current number of buffered frames.
	FrameCount int `json:"frame_count"`

	// Capacity is the maximum number of buffered frames.
	Capacity int `json:"capacity"`

	// FramesDecoded counts every frame ever pushed.
	FramesDecoded uint64 `json:"frames_decoded"`

	// FramesDisplayed counts frames handed to the display.
	FramesDisplayed uint64 `json:"frames_displayed"`

	// FramesDropped counts frames skipped because the query time had
	// already advanced past them.
	FramesDropped uint64 `json:"frames_dropped"`

	// BufferDurationMs is the presentation span from the oldest frame's
	// start to the newest frame's end.
	BufferDurationMs float64 `json:"buffer_duration_ms"`

	// State is the current fill classification.
	State State `json:"state"`
}
