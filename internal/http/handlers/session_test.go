package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/framepace/internal/buffer"
	"github.com/jmylchreest/framepace/internal/player"
)

func newTestRegistry(t *testing.T) (*player.Registry, *player.Session) {
	t.Helper()
	registry := player.NewRegistry()
	session := player.NewSession(player.Config{
		Ring:            buffer.RingConfig{Capacity: 10, FrameRate: 30},
		SyncThresholdMs: 40,
	}, player.NewSyntheticSource(640, 360, 30), nil)
	registry.Add(session)
	return registry, session
}

func TestSessionHandler_ListSessions(t *testing.T) {
	registry, session := newTestRegistry(t)
	h := NewSessionHandler(registry)

	out, err := h.ListSessions(context.Background(), &ListSessionsInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Body.Count)
	assert.Equal(t, session.ID(), out.Body.Sessions[0].ID)
}

func TestSessionHandler_GetSession(t *testing.T) {
	registry, session := newTestRegistry(t)
	h := NewSessionHandler(registry)

	out, err := h.GetSession(context.Background(), &GetSessionInput{ID: session.ID()})
	require.NoError(t, err)
	assert.Equal(t, session.ID(), out.Body.ID)
	assert.Equal(t, buffer.StateStarving, out.Body.Buffer.State)

	_, err = h.GetSession(context.Background(), &GetSessionInput{ID: "missing"})
	assert.Error(t, err)
}

func TestSessionHandler_GetFrame(t *testing.T) {
	registry, session := newTestRegistry(t)
	h := NewSessionHandler(registry)

	// Nothing buffered yet.
	_, err := h.GetFrame(context.Background(), &GetFrameInput{ID: session.ID(), Number: 0})
	assert.Error(t, err)

	_, err = h.GetFrame(context.Background(), &GetFrameInput{ID: "missing", Number: 0})
	assert.Error(t, err)
}

func TestSessionHandler_ClearSession(t *testing.T) {
	registry, session := newTestRegistry(t)
	h := NewSessionHandler(registry)

	out, err := h.ClearSession(context.Background(), &ClearSessionInput{ID: session.ID()})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Body.ReleasedFrames, "empty ring flushes nothing")

	_, err = h.ClearSession(context.Background(), &ClearSessionInput{ID: "missing"})
	assert.Error(t, err)
}
