package buffer

import "math"

// Default ring parameters.
const (
	// DefaultCapacity holds one second of video at 30fps.
	DefaultCapacity = 30
	// DefaultFrameRate is the assumed rate when none is configured.
	DefaultFrameRate = 30.0
)

// RingConfig configures a frame ring.
type RingConfig struct {
	// Capacity is the maximum number of buffered frames.
	Capacity int
	// FrameRate is the nominal video frame rate, used for clock arithmetic.
	// Must be positive; a zero or negative rate is a caller error and
	// produces degenerate presentation times.
	FrameRate float64
}

// DefaultRingConfig returns sensible defaults.
func DefaultRingConfig() RingConfig {
	return RingConfig{
		Capacity:  DefaultCapacity,
		FrameRate: DefaultFrameRate,
	}
}

// anchor pins media time to a single wall-clock sample taken when playback
// started. Zero value means playback is inactive.
type anchor struct {
	active      bool
	wallTimeMs  float64
	frameNumber uint64
}

// Ring is a bounded collection of FrameInfo kept in non-decreasing PTS
// order. Eviction is strictly oldest-PTS-first, not insertion order,
// because frames may arrive out of presentation order.
//
// Ring has no internal locking. All methods assume serialized access from
// a single control flow; hosts driving decode and display concurrently
// must wrap calls in their own mutex.
type Ring struct {
	config    RingConfig
	targetSize int
	lowWater   int

	frames []FrameInfo

	framesDecoded   uint64
	framesDisplayed uint64
	framesDropped   uint64

	lastDisplayed    uint64
	hasLastDisplayed bool

	playback anchor
}

// NewRing creates a frame ring. Zero or negative config values fall back
// to defaults.
func NewRing(config RingConfig) *Ring {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultFrameRate
	}

	return &Ring{
		config:     config,
		targetSize: config.Capacity * 3 / 4,
		lowWater:   config.Capacity / 4,
		frames:     make([]FrameInfo, 0, config.Capacity),
	}
}

// Push inserts a decoded frame at its PTS-ordered position. If the ring is
// at capacity the oldest frame is evicted first and its content handle is
// returned; the caller must release that handle against the content store.
func (r *Ring) Push(frame FrameInfo) (evicted uint64, didEvict bool) {
	r.framesDecoded++

	if len(r.frames) >= r.config.Capacity {
		evicted = r.frames[0].ContentHandle
		didEvict = true
		r.frames = r.frames[1:]
	}

	// First position whose PTS exceeds the new frame's PTS; append if none.
	pos := len(r.frames)
	for i, f := range r.frames {
		if f.PTS > frame.PTS {
			pos = i
			break
		}
	}

	r.frames = append(r.frames, FrameInfo{})
	copy(r.frames[pos+1:], r.frames[pos:])
	r.frames[pos] = frame

	return evicted, didEvict
}

// TakeForTime removes and returns the latest frame whose PTS is at or
// before queryTimeMs. Frames older than the selected one are removed and
// counted as dropped, so one call both advances the head and performs
// catch-up cleanup. The dropped frames' content handles are returned
// alongside the match; the caller must release them against the content
// store just like eviction handles.
//
// It returns false when the ring is empty, when every buffered frame is
// still in the future, or when the best match is the frame most recently
// displayed. In the repeat-match case the frame stays buffered and will be
// offered again on the next call; dropped is always nil when ok is false.
func (r *Ring) TakeForTime(queryTimeMs float64) (frame FrameInfo, dropped []uint64, ok bool) {
	bestIdx := -1
	bestPTS := math.Inf(-1)
	for i, f := range r.frames {
		if f.PTS <= queryTimeMs && f.PTS > bestPTS {
			bestPTS = f.PTS
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return FrameInfo{}, nil, false
	}

	frame = r.frames[bestIdx]
	if r.hasLastDisplayed && r.lastDisplayed == frame.FrameNumber {
		return FrameInfo{}, nil, false
	}

	// Everything strictly before the match was skipped over; its content
	// is handed back for release.
	if bestIdx > 0 {
		dropped = make([]uint64, 0, bestIdx)
		for _, f := range r.frames[:bestIdx] {
			dropped = append(dropped, f.ContentHandle)
		}
	}
	r.framesDropped += uint64(bestIdx)
	r.frames = r.frames[bestIdx+1:]

	r.lastDisplayed = frame.FrameNumber
	r.hasLastDisplayed = true
	r.framesDisplayed++

	return frame, dropped, true
}

// PeekByNumber returns the buffered frame with the exact frame number, if
// present. It never mutates occupancy, counters, or displayed-frame
// tracking, which makes it safe for scrubbing previews.
func (r *Ring) PeekByNumber(frameNumber uint64) (FrameInfo, bool) {
	for _, f := range r.frames {
		if f.FrameNumber == frameNumber {
			return f, true
		}
	}
	return FrameInfo{}, false
}

// StartPlayback anchors the presentation clock: wallTimeMs is the wall
// clock "now" and startFrame the frame that should display at that
// instant. Displayed-frame tracking is reset so the first TakeForTime
// after a restart is never suppressed by a stale match.
func (r *Ring) StartPlayback(startFrame uint64, wallTimeMs float64) {
	r.playback = anchor{
		active:      true,
		wallTimeMs:  wallTimeMs,
		frameNumber: startFrame,
	}
	r.hasLastDisplayed = false
}

// StopPlayback clears the anchor. Clock queries return their base answer
// until playback starts again.
func (r *Ring) StopPlayback() {
	r.playback.active = false
}

// Playing reports whether a playback anchor is set.
func (r *Ring) Playing() bool {
	return r.playback.active
}

// PresentationTime maps a wall-clock sample to media time: the anchor
// frame's PTS plus wall time elapsed since the anchor. Returns 0 while
// playback is inactive. The mapping is linear and drift-free; hosts should
// re-anchor if wall and media clocks diverge.
func (r *Ring) PresentationTime(wallTimeMs float64) float64 {
	if !r.playback.active {
		return 0
	}
	startPTS := float64(r.playback.frameNumber) * (1000.0 / r.config.FrameRate)
	return startPTS + (wallTimeMs - r.playback.wallTimeMs)
}

// TargetFrame returns the frame number that should be displaying at the
// given wall-clock time. While playback is inactive it returns the anchor
// frame number from the last StartPlayback (zero if never started).
func (r *Ring) TargetFrame(wallTimeMs float64) uint64 {
	if !r.playback.active {
		return r.playback.frameNumber
	}
	elapsed := wallTimeMs - r.playback.wallTimeMs
	if elapsed < 0 {
		// A sample taken before the anchor pins the target at the anchor
		// frame; a negative float to uint64 conversion is unspecified.
		return r.playback.frameNumber
	}
	framesElapsed := uint64(math.Floor(elapsed * r.config.FrameRate / 1000.0))
	return r.playback.frameNumber + framesElapsed
}

// Clear removes every buffered frame and returns their content handles for
// release. Counters survive; occupancy drops to zero and the state becomes
// starving.
func (r *Ring) Clear() []uint64 {
	handles := make([]uint64, 0, len(r.frames))
	for _, f := range r.frames {
		handles = append(handles, f.ContentHandle)
	}
	r.frames = r.frames[:0]
	r.hasLastDisplayed = false
	return handles
}

// NeedsFrames reports whether the decode producer should keep going:
// occupancy is below the 75% target.
func (r *Ring) NeedsFrames() bool {
	return len(r.frames) < r.targetSize
}

// IsFull reports whether the ring is at capacity.
func (r *Ring) IsFull() bool {
	return len(r.frames) >= r.config.Capacity
}

// NextDecodeFrame returns the frame number the decode loop should fetch
// next: one past the newest buffered frame, or the playback anchor frame
// when the ring is empty.
func (r *Ring) NextDecodeFrame() uint64 {
	if n := len(r.frames); n > 0 {
		return r.frames[n-1].FrameNumber + 1
	}
	return r.playback.frameNumber
}

// EarliestFrame returns the oldest buffered frame number.
func (r *Ring) EarliestFrame() (uint64, bool) {
	if len(r.frames) == 0 {
		return 0, false
	}
	return r.frames[0].FrameNumber, true
}

// LatestFrame returns the newest buffered frame number.
func (r *Ring) LatestFrame() (uint64, bool) {
	if len(r.frames) == 0 {
		return 0, false
	}
	return r.frames[len(r.frames)-1].FrameNumber, true
}

// Len returns current occupancy.
func (r *Ring) Len() int {
	return len(r.frames)
}

// Capacity returns the configured maximum occupancy.
func (r *Ring) Capacity() int {
	return r.config.Capacity
}

// FrameRate returns the configured frame rate.
func (r *Ring) FrameRate() float64 {
	return r.config.FrameRate
}

// TargetSize returns the healthy-fill target (75% of capacity).
func (r *Ring) TargetSize() int {
	return r.targetSize
}

// LowWaterMark returns the urgent-decode threshold (25% of capacity).
func (r *Ring) LowWaterMark() int {
	return r.lowWater
}

// State returns the current fill classification.
func (r *Ring) State() State {
	return stateFor(len(r.frames), r.lowWater, r.config.Capacity)
}

// Stats returns a snapshot of ring counters and health.
func (r *Ring) Stats() Stats {
	var duration float64
	if n := len(r.frames); n > 0 {
		first, last := r.frames[0], r.frames[n-1]
		duration = last.PTS - first.PTS + last.Duration
	}

	return Stats{
		FrameCount:       len(r.frames),
		Capacity:         r.config.Capacity,
		FramesDecoded:    r.framesDecoded,
		FramesDisplayed:  r.framesDisplayed,
		FramesDropped:    r.framesDropped,
		BufferDurationMs: duration,
		State:            r.State(),
	}
}
