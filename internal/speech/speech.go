package speech

import (
	"errors"
	"sync"
)

// State of a capture adapter.
type State int

const (
	StateIdle State = iota
	StateListening
)

// ErrUnsupported is reported when no speech backend is available on this
// system. Typing keeps working; the widget just tells the user.
var ErrUnsupported = errors.New("speech: recognition is not supported on this system")

// Events are the callbacks a backend fires during one capture session.
type Events struct {
	// Result delivers a finalized transcript. May fire zero or more times
	// per session and does not end it.
	Result func(transcript string)
	// End fires exactly once when the session stops, whether the backend
	// ended it naturally or Stop aborted it.
	End func()
}

// Engine abstracts the platform speech-recognition capability so the widget
// runs against any backend, including a test double.
type Engine interface {
	// Start begins one capture session and returns once the microphone is
	// live. Callbacks arrive later, possibly from other goroutines.
	Start(events Events) error
	// Stop aborts the current session.
	Stop()
}

// Capture toggles a single microphone session and hands finalized
// transcripts to the sink. Only one session is live at a time: Start while
// listening and Stop while idle are both no-ops.
type Capture struct {
	mu     sync.Mutex
	engine Engine
	state  State
	gen    int // bumped per session so stale callbacks are dropped

	onFinal func(transcript string)
	onState func(State)
}

// NewCapture wraps an engine. A nil engine means the capability is absent;
// Start then reports ErrUnsupported. Either callback may be nil.
func NewCapture(engine Engine, onFinal func(string), onState func(State)) *Capture {
	return &Capture{
		engine:  engine,
		onFinal: onFinal,
		onState: onState,
	}
}

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start activates the microphone and transitions to listening.
func (c *Capture) Start() error {
	c.mu.Lock()
	if c.engine == nil {
		c.mu.Unlock()
		return ErrUnsupported
	}
	if c.state == StateListening {
		c.mu.Unlock()
		return nil
	}

	c.state = StateListening
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	events := Events{
		Result: func(transcript string) { c.deliver(gen, transcript) },
		End:    func() { c.ended(gen) },
	}

	if err := c.engine.Start(events); err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state = StateIdle
		}
		c.mu.Unlock()
		return err
	}

	c.notifyState(StateListening)
	return nil
}

// Stop aborts the current capture session.
func (c *Capture) Stop() {
	c.mu.Lock()
	if c.state != StateListening {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.gen++ // late engine callbacks from this session are now stale
	engine := c.engine
	c.mu.Unlock()

	engine.Stop()
	c.notifyState(StateIdle)
}

func (c *Capture) deliver(gen int, transcript string) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if c.onFinal != nil {
		c.onFinal(transcript)
	}
}

// ended handles the backend finishing on its own.
func (c *Capture) ended(gen int) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateListening {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.mu.Unlock()

	c.notifyState(StateIdle)
}

func (c *Capture) notifyState(state State) {
	if c.onState != nil {
		c.onState(state)
	}
}
