// Package player hosts playback sessions: a decode producer feeding the
// frame ring and a presentation consumer draining it, with the sync clock
// gating frame advancement. The ring itself has no locking, so the session
// serializes all ring and clock access behind one mutex.
package player

import (
	"context"
	"encoding/binary"
	"errors"
)

// ErrEndOfStream is returned by a FrameSource when the requested frame is
// past the end of the stream.
var ErrEndOfStream = errors.New("end of stream")

// SourceFrame is one decoded frame as delivered by a FrameSource: the
// metadata the ring will keep plus the payload the content store will own.
type SourceFrame struct {
	PTS      float64
	Duration float64
	Width    int
	Height   int
	Keyframe bool
	Data     []byte
}

// FrameSource produces decoded frames by number. Implementations may
// block; they receive the session context and should honor cancellation.
type FrameSource interface {
	NextFrame(ctx context.Context, frameNumber uint64) (SourceFrame, error)
}

// syntheticPayloadSize is the opaque filler size per fabricated frame.
const syntheticPayloadSize = 4 << 10

// SyntheticSource fabricates frames at a fixed rate and geometry. The
// payload is opaque filler with the frame number encoded in the first
// eight bytes, which lets tests verify handle plumbing end to end.
type SyntheticSource struct {
	width            int
	height           int
	frameRate        float64
	keyframeInterval uint64
	frameLimit       uint64
}

// NewSyntheticSource creates a source producing width x height frames at
// the given rate. Keyframes are emitted every two seconds of media time.
func NewSyntheticSource(width, height int, frameRate float64) *SyntheticSource {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	interval := uint64(frameRate * 2)
	if interval == 0 {
		interval = 1
	}
	return &SyntheticSource{
		width:            width,
		height:           height,
		frameRate:        frameRate,
		keyframeInterval: interval,
	}
}

// WithFrameLimit bounds the stream: frame numbers at or past the limit
// return ErrEndOfStream. Zero means unbounded.
func (s *SyntheticSource) WithFrameLimit(limit uint64) *SyntheticSource {
	s.frameLimit = limit
	return s
}

// NextFrame fabricates the frame with the given number.
func (s *SyntheticSource) NextFrame(ctx context.Context, frameNumber uint64) (SourceFrame, error) {
	if err := ctx.Err(); err != nil {
		return SourceFrame{}, err
	}
	if s.frameLimit > 0 && frameNumber >= s.frameLimit {
		return SourceFrame{}, ErrEndOfStream
	}

	interval := 1000.0 / s.frameRate
	data := make([]byte, syntheticPayloadSize)
	binary.LittleEndian.PutUint64(data, frameNumber)

	return SourceFrame{
		PTS:      float64(frameNumber) * interval,
		Duration: interval,
		Width:    s.width,
		Height:   s.height,
		Keyframe: frameNumber%s.keyframeInterval == 0,
		Data:     data,
	}, nil
}
