package speech

import (
	"testing"
)

type fakeEngine struct {
	events  Events
	started int
	stopped int
}

func (e *fakeEngine) Start(events Events) error {
	e.events = events
	e.started++
	return nil
}

func (e *fakeEngine) Stop() {
	e.stopped++
	if e.events.End != nil {
		e.events.End()
	}
}

func TestStartWithoutCapability(t *testing.T) {
	capture := NewCapture(nil, nil, nil)

	if err := capture.Start(); err != ErrUnsupported {
		t.Fatalf("Expected ErrUnsupported, got %v", err)
	}
	if capture.State() != StateIdle {
		t.Errorf("Expected state to stay idle, got %v", capture.State())
	}
}

func TestTranscriptOverwritesSink(t *testing.T) {
	var transcript string
	engine := &fakeEngine{}
	capture := NewCapture(engine, func(text string) { transcript = text }, nil)

	if err := capture.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if capture.State() != StateListening {
		t.Fatalf("Expected listening state, got %v", capture.State())
	}

	engine.events.Result("first take")
	engine.events.Result("second take")

	if transcript != "second take" {
		t.Errorf("Expected transcript overwritten, got %q", transcript)
	}
	// A finalized result does not end the session; the platform does.
	if capture.State() != StateListening {
		t.Errorf("Expected still listening after result, got %v", capture.State())
	}
}

func TestPlatformEndTransitionsToIdle(t *testing.T) {
	var states []State
	engine := &fakeEngine{}
	capture := NewCapture(engine, nil, func(s State) { states = append(states, s) })

	capture.Start()
	engine.events.End()

	if capture.State() != StateIdle {
		t.Errorf("Expected idle after platform end, got %v", capture.State())
	}
	if len(states) != 2 || states[0] != StateListening || states[1] != StateIdle {
		t.Errorf("Expected listening then idle notifications, got %v", states)
	}
}

func TestStopWhileIdleIsNoOp(t *testing.T) {
	engine := &fakeEngine{}
	capture := NewCapture(engine, nil, nil)

	capture.Stop()

	if engine.stopped != 0 {
		t.Errorf("Expected engine untouched, got %d stops", engine.stopped)
	}
	if capture.State() != StateIdle {
		t.Errorf("Expected idle state, got %v", capture.State())
	}
}

func TestStartWhileListeningIsNoOp(t *testing.T) {
	engine := &fakeEngine{}
	capture := NewCapture(engine, nil, nil)

	capture.Start()
	if err := capture.Start(); err != nil {
		t.Fatalf("Second start should be a no-op, got %v", err)
	}

	if engine.started != 1 {
		t.Errorf("Expected one engine start, got %d", engine.started)
	}
}

func TestExplicitStop(t *testing.T) {
	engine := &fakeEngine{}
	capture := NewCapture(engine, nil, nil)

	capture.Start()
	capture.Stop()

	if capture.State() != StateIdle {
		t.Errorf("Expected idle after stop, got %v", capture.State())
	}
	if engine.stopped != 1 {
		t.Errorf("Expected one engine stop, got %d", engine.stopped)
	}

	// The engine's End callback fired during Stop is stale and must not
	// re-notify.
	capture.Stop()
	if engine.stopped != 1 {
		t.Errorf("Expected stop while idle to be a no-op, got %d", engine.stopped)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		available bool
	}{
		{"empty command", "", false},
		{"missing binary", "definitely-not-a-real-recognizer-binary", false},
		{"present binary", "sh -c 'echo hi'", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := Detect(tc.command)
			if (engine != nil) != tc.available {
				t.Errorf("Detect(%q): expected available=%v, got %v", tc.command, tc.available, engine != nil)
			}
		})
	}
}
