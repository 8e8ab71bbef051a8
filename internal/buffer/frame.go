// Package buffer implements a bounded, presentation-time-ordered ring of
// decoded frame metadata. It decouples decode from display: a producer
// pushes frames as they become available, a consumer asks for the frame
// that should be showing at an arbitrary query time. Pixel data never
// enters the ring; frames carry an opaque handle into an external content
// store, and every handle that leaves the ring (eviction, catch-up drop,
// clear) is reported to the caller for release exactly once.
package buffer

// FrameInfo describes one decoded frame. The value is immutable once
// pushed; reads hand out copies.
type FrameInfo struct {
	// FrameNumber is the decoder-assigned sequence index, unique while
	// the frame is buffered.
	FrameNumber uint64 `json:"frame_number"`
	// PTS is the presentation timestamp in milliseconds. It is the sort
	// key inside the ring.
	PTS float64 `json:"pts_ms"`
	// Duration is the display duration in milliseconds.
	Duration float64 `json:"duration_ms"`
	// Width and Height are informational only.
	Width  int `json:"width"`
	Height int `json:"height"`
	// ContentHandle identifies the frame's pixel content in the external
	// store. The ring never dereferences it.
	ContentHandle uint64 `json:"content_handle"`
	// Keyframe reports whether the frame is an IDR/keyframe.
	Keyframe bool `json:"keyframe"`
}

// EndPTS returns the presentation time at which the frame stops being
// current.
func (f FrameInfo) EndPTS() float64 {
	return f.PTS + f.Duration
}
