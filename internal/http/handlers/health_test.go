package handlers

import (
	"context"
	"testing"
)

func TestHealthHandler_GetHealth(t *testing.T) {
	handler := NewHealthHandler("1.0.0")

	output, err := handler.GetHealth(context.Background(), &HealthInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output == nil {
		t.Fatal("expected non-nil output")
	}

	if output.Body.Status != "healthy" {
		t.Errorf("status = %q, want healthy", output.Body.Status)
	}
	if output.Body.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", output.Body.Version)
	}
	if output.Body.CPU.Cores < 1 {
		t.Errorf("cores = %d, want >= 1", output.Body.CPU.Cores)
	}
	if output.Body.UptimeSeconds < 0 {
		t.Errorf("uptime_seconds = %v, want >= 0", output.Body.UptimeSeconds)
	}
}
