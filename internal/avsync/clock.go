// Package avsync tracks audio and video clock samples and recommends how
// the display loop should treat the next video frame. Drift is simply the
// latest video sample minus the latest audio sample; there is no smoothing
// or history, each report is authoritative.
package avsync

import "math"

// DefaultThresholdMs is the drift tolerance used when none is configured.
// Drift inside one frame interval at ~25fps is generally imperceptible.
const DefaultThresholdMs = 40.0

// Action is the recommended handling for the pending video frame.
type Action int

const (
	// ActionDisplay shows the frame normally.
	ActionDisplay Action = iota
	// ActionWait holds or repeats the current frame; video is ahead of audio.
	ActionWait
	// ActionDrop discards the pending frame to catch up; video is behind audio.
	ActionDrop
)

// String returns the lowercase name of the action.
func (a Action) String() string {
	switch a {
	case ActionDisplay:
		return "display"
	case ActionWait:
		return "wait"
	case ActionDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Clock holds the latest audio and video time samples and derives drift.
// Like the frame ring it has no internal locking; callers serialize access.
type Clock struct {
	thresholdMs float64
	audioTimeMs float64
	videoTimeMs float64
	driftMs     float64
}

// NewClock creates a sync clock with the given drift tolerance in
// milliseconds. Zero or negative thresholds fall back to the default.
func NewClock(thresholdMs float64) *Clock {
	if thresholdMs <= 0 {
		thresholdMs = DefaultThresholdMs
	}
	return &Clock{thresholdMs: thresholdMs}
}

// SetAudioTime records the current audio position in milliseconds.
func (c *Clock) SetAudioTime(timeMs float64) {
	c.audioTimeMs = timeMs
	c.driftMs = c.videoTimeMs - c.audioTimeMs
}

// SetVideoTime records the current video position in milliseconds.
func (c *Clock) SetVideoTime(timeMs float64) {
	c.videoTimeMs = timeMs
	c.driftMs = c.videoTimeMs - c.audioTimeMs
}

// AudioTime returns the latest audio sample.
func (c *Clock) AudioTime() float64 {
	return c.audioTimeMs
}

// VideoTime returns the latest video sample.
func (c *Clock) VideoTime() float64 {
	return c.videoTimeMs
}

// Drift returns video time minus audio time in milliseconds. Positive
// drift means video is ahead.
func (c *Clock) Drift() float64 {
	return c.driftMs
}

// Threshold returns the configured drift tolerance.
func (c *Clock) Threshold() float64 {
	return c.thresholdMs
}

// IsSynced reports whether drift is within the threshold, inclusive.
func (c *Clock) IsSynced() bool {
	return math.Abs(c.driftMs) <= c.thresholdMs
}

// Action recommends how to handle the pending video frame. Drift exactly
// at the threshold counts as synced and yields ActionDisplay.
func (c *Clock) Action() Action {
	switch {
	case c.driftMs > c.thresholdMs:
		return ActionWait
	case c.driftMs < -c.thresholdMs:
		return ActionDrop
	default:
		return ActionDisplay
	}
}

// Reset zeroes both clock samples and the derived drift.
func (c *Clock) Reset() {
	c.audioTimeMs = 0
	c.videoTimeMs = 0
	c.driftMs = 0
}
