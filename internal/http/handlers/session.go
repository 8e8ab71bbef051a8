package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/framepace/internal/buffer"
	"github.com/jmylchreest/framepace/internal/player"
)

// SessionHandler exposes playback session telemetry and control.
type SessionHandler struct {
	registry *player.Registry
}

// NewSessionHandler creates a session handler over the given registry.
func NewSessionHandler(registry *player.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// ListSessionsInput is the input for the session list endpoint.
type ListSessionsInput struct{}

// ListSessionsOutput is the output for the session list endpoint.
type ListSessionsOutput struct {
	Body ListSessionsResponse
}

// ListSessionsResponse is the session list payload.
type ListSessionsResponse struct {
	Sessions []player.Snapshot `json:"sessions"`
	Count    int               `json:"count"`
}

// GetSessionInput identifies one session.
type GetSessionInput struct {
	ID string `path:"id" doc:"Session ULID"`
}

// GetSessionOutput is the output for the single-session endpoint.
type GetSessionOutput struct {
	Body player.Snapshot
}

// GetFrameInput identifies one buffered frame in one session.
type GetFrameInput struct {
	ID     string `path:"id" doc:"Session ULID"`
	Number uint64 `path:"number" doc:"Frame number"`
}

// GetFrameOutput is the output for the frame peek endpoint.
type GetFrameOutput struct {
	Body buffer.FrameInfo
}

// ClearSessionInput identifies the session to flush.
type ClearSessionInput struct {
	ID string `path:"id" doc:"Session ULID"`
}

// ClearSessionOutput is the output for the flush endpoint.
type ClearSessionOutput struct {
	Body ClearSessionResponse
}

// ClearSessionResponse reports the result of a flush.
type ClearSessionResponse struct {
	ReleasedFrames int `json:"released_frames"`
}

// Register registers the session routes with the API.
func (h *SessionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listSessions",
		Method:      "GET",
		Path:        "/api/v1/sessions",
		Summary:     "List playback sessions",
		Tags:        []string{"Sessions"},
	}, h.ListSessions)

	huma.Register(api, huma.Operation{
		OperationID: "getSession",
		Method:      "GET",
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session buffer and sync state",
		Tags:        []string{"Sessions"},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "getSessionFrame",
		Method:      "GET",
		Path:        "/api/v1/sessions/{id}/frames/{number}",
		Summary:     "Peek a buffered frame by number",
		Description: "Read-only lookup for scrubbing; never consumes the frame.",
		Tags:        []string{"Sessions"},
	}, h.GetFrame)

	huma.Register(api, huma.Operation{
		OperationID: "clearSession",
		Method:      "POST",
		Path:        "/api/v1/sessions/{id}/clear",
		Summary:     "Flush a session's frame buffer",
		Tags:        []string{"Sessions"},
	}, h.ClearSession)
}

// ListSessions returns a snapshot of every registered session.
func (h *SessionHandler) ListSessions(_ context.Context, _ *ListSessionsInput) (*ListSessionsOutput, error) {
	sessions := h.registry.List()
	snapshots := make([]player.Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snapshots = append(snapshots, s.Snapshot())
	}

	return &ListSessionsOutput{
		Body: ListSessionsResponse{
			Sessions: snapshots,
			Count:    len(snapshots),
		},
	}, nil
}

// GetSession returns one session's snapshot.
func (h *SessionHandler) GetSession(_ context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	s, ok := h.registry.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return &GetSessionOutput{Body: s.Snapshot()}, nil
}

// GetFrame returns buffered frame metadata without consuming it.
func (h *SessionHandler) GetFrame(_ context.Context, input *GetFrameInput) (*GetFrameOutput, error) {
	s, ok := h.registry.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	frame, ok := s.PeekFrame(input.Number)
	if !ok {
		return nil, huma.Error404NotFound("frame not buffered")
	}
	return &GetFrameOutput{Body: frame}, nil
}

// ClearSession flushes the session's ring and releases the frame content.
func (h *SessionHandler) ClearSession(_ context.Context, input *ClearSessionInput) (*ClearSessionOutput, error) {
	s, ok := h.registry.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return &ClearSessionOutput{
		Body: ClearSessionResponse{ReleasedFrames: s.Clear()},
	}, nil
}
