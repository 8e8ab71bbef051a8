package player

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/framepace/internal/buffer"
	"github.com/jmylchreest/framepace/internal/store"
)

func TestSyntheticSource_NextFrame(t *testing.T) {
	src := NewSyntheticSource(640, 360, 25)

	sf, err := src.NextFrame(context.Background(), 10)
	require.NoError(t, err)
	assert.InDelta(t, 400.0, sf.PTS, 1e-9, "frame 10 at 25fps starts at 400ms")
	assert.InDelta(t, 40.0, sf.Duration, 1e-9)
	assert.Equal(t, 640, sf.Width)
	assert.Equal(t, 360, sf.Height)
	assert.Equal(t, uint64(10), binary.LittleEndian.Uint64(sf.Data))

	// Keyframe cadence: every two seconds of media time.
	kf, err := src.NextFrame(context.Background(), 50)
	require.NoError(t, err)
	assert.True(t, kf.Keyframe)
	assert.False(t, sf.Keyframe)
}

func TestSyntheticSource_FrameLimit(t *testing.T) {
	src := NewSyntheticSource(640, 360, 30).WithFrameLimit(5)

	_, err := src.NextFrame(context.Background(), 4)
	require.NoError(t, err)

	_, err = src.NextFrame(context.Background(), 5)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestSyntheticSource_ContextCanceled(t *testing.T) {
	src := NewSyntheticSource(640, 360, 30)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.NextFrame(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSession(t *testing.T) {
	s := NewSession(Config{
		Ring:            buffer.RingConfig{Capacity: 10, FrameRate: 30},
		SyncThresholdMs: 40,
	}, NewSyntheticSource(640, 360, 30), nil)

	require.NotEmpty(t, s.ID())

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.False(t, snap.Playing)
	assert.Equal(t, buffer.StateStarving, snap.Buffer.State)
	assert.Equal(t, "display", snap.SyncAction)
	assert.Zero(t, snap.StoreFrames)
}

func TestSession_RunReleasesEveryHandle(t *testing.T) {
	// High rate and a bounded stream keep the test fast while still
	// exercising decode pacing, display, and the shutdown flush.
	s := NewSession(Config{
		Ring:            buffer.RingConfig{Capacity: 8, FrameRate: 500},
		SyncThresholdMs: 40,
		TickInterval:    2 * time.Millisecond,
	}, NewSyntheticSource(320, 180, 500).WithFrameLimit(100), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	snap := s.Snapshot()
	assert.Positive(t, snap.Buffer.FramesDecoded)
	assert.Positive(t, snap.Buffer.FramesDisplayed)
	assert.False(t, snap.Playing, "playback stops on shutdown")

	// Exactly-once release: every decoded frame was put once and released
	// once, whether presented, dropped, evicted, or flushed.
	assert.Equal(t, 0, s.store.Len(), "store drained after run")
	assert.Equal(t, snap.Buffer.FramesDecoded, s.store.Released())
}

func TestSession_LateTickReleasesSkippedFrames(t *testing.T) {
	s := NewSession(Config{
		Ring:            buffer.RingConfig{Capacity: 10, FrameRate: 30},
		SyncThresholdMs: 40,
	}, NewSyntheticSource(640, 360, 30), nil)

	// Seed five frames and anchor playback 110ms in the past so the next
	// tick has to catch up past frames 0..2.
	const interval = 1000.0 / 30.0
	for n := uint64(0); n < 5; n++ {
		handle := s.store.Put(store.Content{Data: []byte{byte(n)}})
		s.ring.Push(buffer.FrameInfo{
			FrameNumber:   n,
			PTS:           float64(n) * interval,
			Duration:      interval,
			ContentHandle: handle,
		})
	}
	s.ring.StartPlayback(0, s.nowMs()-110)

	s.displayTick()

	// The tick consumed frame 3 and skipped 0..2; all four handles must
	// leave the store whichever way their frames departed.
	assert.Equal(t, 1, s.store.Len(), "only the future frame remains held")
	assert.Equal(t, uint64(3), s.ring.Stats().FramesDropped)

	released := s.Clear()
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, s.store.Len(), "no handle outlives take plus clear")
}

func TestSession_PeekAndClear(t *testing.T) {
	s := NewSession(Config{
		Ring: buffer.RingConfig{Capacity: 10, FrameRate: 30},
	}, NewSyntheticSource(640, 360, 30), nil)

	// Seed the ring directly; tests share the package.
	for n := uint64(0); n < 3; n++ {
		handle := s.store.Put(store.Content{Data: []byte{byte(n)}})
		s.ring.Push(buffer.FrameInfo{
			FrameNumber:   n,
			PTS:           float64(n) * 33.3,
			Duration:      33.3,
			ContentHandle: handle,
		})
	}

	f, ok := s.PeekFrame(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), f.FrameNumber)
	assert.Equal(t, 3, s.store.Len(), "peek must not consume")

	released := s.Clear()
	assert.Equal(t, 3, released)
	assert.Equal(t, 0, s.store.Len())

	_, ok = s.PeekFrame(1)
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	cfg := Config{Ring: buffer.RingConfig{Capacity: 5, FrameRate: 30}}

	a := NewSession(cfg, NewSyntheticSource(64, 36, 30), nil)
	b := NewSession(cfg, NewSyntheticSource(64, 36, 30), nil)
	r.Add(a)
	r.Add(b)

	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	list := r.List()
	require.Len(t, list, 2)
	assert.True(t, list[0].ID() < list[1].ID(), "list sorted by ID")

	assert.True(t, r.Remove(a.ID()))
	assert.False(t, r.Remove(a.ID()))
	assert.Equal(t, 1, r.Len())
}
