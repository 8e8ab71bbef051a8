package player

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/framepace/internal/avsync"
	"github.com/jmylchreest/framepace/internal/buffer"
	"github.com/jmylchreest/framepace/internal/observability"
	"github.com/jmylchreest/framepace/internal/store"
)

// Config configures a playback session.
type Config struct {
	// Ring configures the frame ring.
	Ring buffer.RingConfig

	// SyncThresholdMs is the tolerated audio/video drift.
	SyncThresholdMs float64

	// TickInterval is the display tick period. Zero derives one frame
	// interval from the ring's frame rate.
	TickInterval time.Duration

	// StartFrame is the frame number playback begins at.
	StartFrame uint64
}

// Session drives one frame ring from a decode goroutine and a display
// ticker. It owns the content store for its frames and guarantees every
// handle the ring reports leaving (eviction, sync drop, clear, shutdown)
// is released against the store exactly once.
type Session struct {
	id     string
	config Config
	logger *slog.Logger
	source FrameSource
	store  *store.Store

	// epoch anchors the session's millisecond wall clock.
	epoch time.Time

	// mu serializes ring and clock access between the decode and display
	// sides; the ring itself is lock-free by contract.
	mu    sync.Mutex
	ring  *buffer.Ring
	clock *avsync.Clock

	startedAt time.Time
	syncWaits atomic.Uint64
	syncDrops atomic.Uint64
}

// NewSession creates a playback session over the given source.
func NewSession(config Config, source FrameSource, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := ulid.Make().String()

	return &Session{
		id:     id,
		config: config,
		logger: observability.WithSession(observability.WithComponent(logger, "player"), id),
		source: source,
		store:  store.New(),
		epoch:  time.Now(),
		ring:   buffer.NewRing(config.Ring),
		clock:  avsync.NewClock(config.SyncThresholdMs),
	}
}

// ID returns the session's ULID.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when Run anchored playback. Zero before Run.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// nowMs returns milliseconds elapsed since the session epoch.
func (s *Session) nowMs() float64 {
	return float64(time.Since(s.epoch)) / float64(time.Millisecond)
}

// Run anchors playback and drives the decode and display loops until the
// context is canceled or the source ends. On return the ring is flushed
// and every outstanding handle released.
func (s *Session) Run(ctx context.Context) error {
	tick := s.config.TickInterval
	if tick <= 0 {
		tick = time.Duration(float64(time.Second) / s.ring.FrameRate())
	}

	s.startedAt = time.Now()
	s.mu.Lock()
	s.ring.StartPlayback(s.config.StartFrame, s.nowMs())
	s.mu.Unlock()

	s.logger.Info("playback started",
		slog.Uint64("start_frame", s.config.StartFrame),
		slog.Float64("frame_rate", s.ring.FrameRate()),
		slog.Int("capacity", s.ring.Capacity()),
		slog.Duration("tick", tick),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		s.decodeLoop(runCtx, tick)
	}()

	s.displayLoop(runCtx, tick)

	cancel()
	wg.Wait()

	// Flush: stop the clock, drain the ring, release everything.
	s.mu.Lock()
	s.ring.StopPlayback()
	handles := s.ring.Clear()
	stats := s.ring.Stats()
	s.mu.Unlock()
	s.store.ReleaseAll(handles)

	s.logger.Info("playback stopped",
		slog.Uint64("frames_decoded", stats.FramesDecoded),
		slog.Uint64("frames_displayed", stats.FramesDisplayed),
		slog.Uint64("frames_dropped", stats.FramesDropped),
		slog.Uint64("sync_waits", s.syncWaits.Load()),
		slog.Uint64("sync_drops", s.syncDrops.Load()),
	)

	return ctx.Err()
}

// decodeLoop fetches frames while the ring wants them, pacing itself off
// NeedsFrames and IsFull.
func (s *Session) decodeLoop(ctx context.Context, tick time.Duration) {
	idle := tick / 2
	if idle <= 0 {
		idle = time.Millisecond
	}

	for {
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		wants := s.ring.NeedsFrames() && !s.ring.IsFull()
		next := s.ring.NextDecodeFrame()
		s.mu.Unlock()

		if !wants {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idle):
			}
			continue
		}

		sf, err := s.source.NextFrame(ctx, next)
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				s.logger.Debug("source ended", slog.Uint64("frame", next))
				return
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			s.logger.Warn("decode failed",
				slog.Uint64("frame", next),
				slog.String("error", err.Error()),
			)
			return
		}

		handle := s.store.Put(store.Content{Data: sf.Data, Width: sf.Width, Height: sf.Height})
		info := buffer.FrameInfo{
			FrameNumber:   next,
			PTS:           sf.PTS,
			Duration:      sf.Duration,
			Width:         sf.Width,
			Height:        sf.Height,
			ContentHandle: handle,
			Keyframe:      sf.Keyframe,
		}

		s.mu.Lock()
		evicted, didEvict := s.ring.Push(info)
		s.mu.Unlock()

		if didEvict {
			if err := s.store.Release(evicted); err != nil {
				s.logger.Warn("releasing evicted handle",
					slog.Uint64("handle", evicted),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// displayLoop consumes one frame per tick, gated by the sync clock.
func (s *Session) displayLoop(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.displayTick()
		}
	}
}

// displayTick advances the presentation clock by one sample and acts on
// the sync recommendation: hold the current frame, drop the pending one,
// or present normally.
func (s *Session) displayTick() {
	now := s.nowMs()

	s.mu.Lock()
	pts := s.ring.PresentationTime(now)
	// The simulated audio subsystem tracks the anchored presentation
	// clock; a real host reports its audio device position here.
	s.clock.SetAudioTime(pts)
	action := s.clock.Action()
	if action == avsync.ActionWait {
		s.mu.Unlock()
		s.syncWaits.Add(1)
		return
	}

	frame, skipped, ok := s.ring.TakeForTime(pts)
	if ok {
		s.clock.SetVideoTime(frame.PTS)
	}
	s.mu.Unlock()

	// Frames the take skipped over during catch-up leave the ring here and
	// nowhere else, so their content is released now.
	if released := s.store.ReleaseAll(skipped); released < len(skipped) {
		s.logger.Warn("catch-up drop released fewer handles than expected",
			slog.Int("expected", len(skipped)),
			slog.Int("released", released),
		)
	}

	if !ok {
		return
	}

	if action == avsync.ActionDrop {
		s.syncDrops.Add(1)
		if err := s.store.Release(frame.ContentHandle); err != nil {
			s.logger.Warn("releasing dropped handle",
				slog.Uint64("handle", frame.ContentHandle),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Debug("frame dropped for sync", slog.Uint64("frame", frame.FrameNumber))
		return
	}

	s.present(frame)
}

// present hands the frame to the display. There is no real renderer; the
// content is fetched to model the display reading it, then released.
func (s *Session) present(frame buffer.FrameInfo) {
	if _, ok := s.store.Get(frame.ContentHandle); !ok {
		s.logger.Warn("presenting frame with missing content",
			slog.Uint64("frame", frame.FrameNumber),
			slog.Uint64("handle", frame.ContentHandle),
		)
		return
	}

	s.logger.Debug("frame presented",
		slog.Uint64("frame", frame.FrameNumber),
		slog.Float64("pts_ms", frame.PTS),
		slog.Bool("keyframe", frame.Keyframe),
	)

	if err := s.store.Release(frame.ContentHandle); err != nil {
		s.logger.Warn("releasing presented handle",
			slog.Uint64("handle", frame.ContentHandle),
			slog.String("error", err.Error()),
		)
	}
}

// PeekFrame returns buffered frame metadata by number without consuming
// it. Used for scrub previews.
func (s *Session) PeekFrame(frameNumber uint64) (buffer.FrameInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.PeekByNumber(frameNumber)
}

// Clear flushes the ring and releases the returned handles. It reports
// how many frames were flushed.
func (s *Session) Clear() int {
	s.mu.Lock()
	handles := s.ring.Clear()
	s.mu.Unlock()
	return s.store.ReleaseAll(handles)
}

// TargetFrame returns the frame number that should be displaying now.
func (s *Session) TargetFrame() uint64 {
	now := s.nowMs()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.TargetFrame(now)
}

// Snapshot is a point-in-time view of session health for telemetry.
type Snapshot struct {
	ID              string       `json:"id"`
	StartedAt       time.Time    `json:"started_at"`
	Playing         bool         `json:"playing"`
	Buffer          buffer.Stats `json:"buffer"`
	NextDecodeFrame uint64       `json:"next_decode_frame"`
	TargetFrame     uint64       `json:"target_frame"`
	DriftMs         float64      `json:"drift_ms"`
	Synced          bool         `json:"synced"`
	SyncAction      string       `json:"sync_action"`
	SyncWaits       uint64       `json:"sync_waits"`
	SyncDrops       uint64       `json:"sync_drops"`
	StoreFrames     int          `json:"store_frames"`
	StoreBytes      int64        `json:"store_bytes"`
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	now := s.nowMs()

	s.mu.Lock()
	snap := Snapshot{
		ID:              s.id,
		StartedAt:       s.startedAt,
		Playing:         s.ring.Playing(),
		Buffer:          s.ring.Stats(),
		NextDecodeFrame: s.ring.NextDecodeFrame(),
		TargetFrame:     s.ring.TargetFrame(now),
		DriftMs:         s.clock.Drift(),
		Synced:          s.clock.IsSynced(),
		SyncAction:      s.clock.Action().String(),
	}
	s.mu.Unlock()

	snap.SyncWaits = s.syncWaits.Load()
	snap.SyncDrops = s.syncDrops.Load()
	snap.StoreFrames = s.store.Len()
	snap.StoreBytes = s.store.BytesHeld()
	return snap
}
