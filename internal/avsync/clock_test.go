package avsync

import "testing"

func TestNewClock(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "explicit threshold", threshold: 25, want: 25},
		{name: "zero uses default", threshold: 0, want: DefaultThresholdMs},
		{name: "negative uses default", threshold: -5, want: DefaultThresholdMs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(tt.threshold)
			if got := c.Threshold(); got != tt.want {
				t.Errorf("Threshold = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClock_DriftAndAction(t *testing.T) {
	c := NewClock(40)

	c.SetAudioTime(1000)
	c.SetVideoTime(1000)
	if got := c.Drift(); got != 0 {
		t.Errorf("Drift = %v, want 0", got)
	}
	if !c.IsSynced() {
		t.Error("equal clocks should be synced")
	}
	if got := c.Action(); got != ActionDisplay {
		t.Errorf("Action = %v, want display", got)
	}

	// Video ahead: hold the frame.
	c.SetVideoTime(1100)
	if got := c.Drift(); got != 100 {
		t.Errorf("Drift = %v, want 100", got)
	}
	if c.IsSynced() {
		t.Error("drift 100 over threshold 40 should not be synced")
	}
	if got := c.Action(); got != ActionWait {
		t.Errorf("Action = %v, want wait", got)
	}

	// Video behind: drop to catch up.
	c.SetVideoTime(900)
	if got := c.Drift(); got != -100 {
		t.Errorf("Drift = %v, want -100", got)
	}
	if got := c.Action(); got != ActionDrop {
		t.Errorf("Action = %v, want drop", got)
	}
}

func TestClock_ThresholdBoundaryIsSynced(t *testing.T) {
	tests := []struct {
		name  string
		video float64
	}{
		{name: "exactly +threshold", video: 1040},
		{name: "exactly -threshold", video: 960},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(40)
			c.SetAudioTime(1000)
			c.SetVideoTime(tt.video)
			if !c.IsSynced() {
				t.Error("boundary drift should count as synced")
			}
			if got := c.Action(); got != ActionDisplay {
				t.Errorf("Action = %v, want display", got)
			}
		})
	}
}

func TestClock_Reset(t *testing.T) {
	c := NewClock(40)
	c.SetAudioTime(500)
	c.SetVideoTime(800)

	c.Reset()
	if c.AudioTime() != 0 || c.VideoTime() != 0 || c.Drift() != 0 {
		t.Errorf("Reset left audio=%v video=%v drift=%v", c.AudioTime(), c.VideoTime(), c.Drift())
	}
}

func TestAction_String(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionDisplay, "display"},
		{ActionWait, "wait"},
		{ActionDrop, "drop"},
		{Action(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}
