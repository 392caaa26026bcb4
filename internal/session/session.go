package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatwidget/internal/models"
	"chatwidget/internal/speech"
)

// ErrReplyPending is returned when a turn is submitted while the previous
// one has not finished: either the relay call or its reveal is still in
// flight. Turns stay strictly serialized.
var ErrReplyPending = errors.New("session: a reply is already pending")

// ErrClosed is returned for submissions after teardown.
var ErrClosed = errors.New("session: closed")

// Sender is the one outbound dependency of a session: something that turns
// the full conversation history into an assistant reply.
type Sender interface {
	Send(ctx context.Context, history []models.ChatMessage) (string, error)
}

// Snapshot is an immutable view of the session state, safe to render from
// any goroutine.
type Snapshot struct {
	History       []models.ChatMessage
	PendingInput  string
	AwaitingReply bool   // relay call in flight
	RevealBuffer  string // partially revealed assistant reply, empty otherwise
	CaptureActive bool
	Busy          bool   // true until the reply is committed or fails
	LastError     string // last turn failure, cleared on the next submission
}

// Controller owns the conversational session state: the committed history,
// the input buffer under composition, the pending-request flag, the reveal
// in progress, and the speech capture. All mutations are serialized through
// its mutex; observers receive snapshots through the notify callback.
type Controller struct {
	id       string
	sender   Sender
	engine   speech.Engine
	interval time.Duration
	notify   func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	history       []models.ChatMessage
	pendingInput  string
	awaitingReply bool
	revealBuffer  string
	captureActive bool
	lastError     string
	closed        bool
	current       *Reveal // in-flight reveal, nil otherwise

	capture *speech.Capture
}

type Option func(*Controller)

// WithRevealInterval overrides the per-character reveal pacing.
func WithRevealInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithNotify registers a callback invoked with a fresh snapshot after every
// state change.
func WithNotify(fn func(Snapshot)) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithSpeechEngine injects the platform speech capability. A nil engine
// means dictation is unavailable.
func WithSpeechEngine(engine speech.Engine) Option {
	return func(c *Controller) { c.engine = engine }
}

func New(sender Sender, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		id:       uuid.New().String(),
		sender:   sender,
		interval: DefaultRevealInterval,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.capture = speech.NewCapture(c.engine, c.setTranscript, c.setCaptureState)
	return c
}

func (c *Controller) ID() string {
	return c.id
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]models.ChatMessage, len(c.history))
	copy(history, c.history)

	return Snapshot{
		History:       history,
		PendingInput:  c.pendingInput,
		AwaitingReply: c.awaitingReply,
		RevealBuffer:  c.revealBuffer,
		CaptureActive: c.captureActive,
		Busy:          c.awaitingReply || c.current != nil,
		LastError:     c.lastError,
	}
}

// SetPendingInput replaces the input buffer under composition (the typing
// path; dictation goes through the capture callback).
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	if c.closed || c.pendingInput == text {
		c.mu.Unlock()
		return
	}
	c.pendingInput = text
	c.mu.Unlock()

	c.changed()
}

func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingInput
}

// SubmitTurn commits text as a user turn and dispatches exactly one relay
// call carrying the full history. Whitespace-only input is a no-op. The user
// turn is appended and visible before the call goes out; on failure it stays
// in history and the user resubmits.
func (c *Controller) SubmitTurn(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.awaitingReply || c.current != nil {
		c.mu.Unlock()
		return ErrReplyPending
	}

	c.history = append(c.history, models.ChatMessage{Role: models.RoleUser, Content: text})
	c.pendingInput = ""
	c.awaitingReply = true
	c.lastError = ""

	history := make([]models.ChatMessage, len(c.history))
	copy(history, c.history)
	c.mu.Unlock()

	c.changed()
	go c.requestReply(history)
	return nil
}

func (c *Controller) requestReply(history []models.ChatMessage) {
	reply, err := c.sender.Send(c.ctx, history)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.awaitingReply = false
	if err != nil {
		c.lastError = err.Error()
		c.mu.Unlock()
		c.changed()
		return
	}

	c.revealBuffer = ""
	c.current = startReveal(reply, c.interval, c.revealStep, c.revealDone)
	c.mu.Unlock()

	c.changed()
}

// revealStep publishes the next prefix, unless this reveal was superseded or
// the session was torn down in the meantime.
func (c *Controller) revealStep(r *Reveal, prefix string) {
	c.mu.Lock()
	if c.closed || c.current != r {
		c.mu.Unlock()
		return
	}
	c.revealBuffer = prefix
	c.mu.Unlock()

	c.changed()
}

// revealDone commits the fully revealed reply as an assistant turn and
// clears the buffer, atomically with respect to further submissions.
func (c *Controller) revealDone(r *Reveal, full string) {
	c.mu.Lock()
	if c.closed || c.current != r {
		c.mu.Unlock()
		return
	}
	c.history = append(c.history, models.ChatMessage{Role: models.RoleAssistant, Content: full})
	c.revealBuffer = ""
	c.current = nil
	c.mu.Unlock()

	c.changed()
}

// StartCapture begins a dictation session; the finalized transcript replaces
// the pending input. Reports speech.ErrUnsupported when no recognizer is
// available.
func (c *Controller) StartCapture() error {
	return c.capture.Start()
}

// StopCapture aborts an active dictation session.
func (c *Controller) StopCapture() {
	c.capture.Stop()
}

// ToggleCapture flips the microphone, mirroring the widget's single mic
// button.
func (c *Controller) ToggleCapture() error {
	if c.capture.State() == speech.StateListening {
		c.capture.Stop()
		return nil
	}
	return c.capture.Start()
}

// setTranscript is the capture sink: dictation overwrites whatever is in the
// input buffer, and never touches history directly.
func (c *Controller) setTranscript(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingInput = text
	c.mu.Unlock()

	c.changed()
}

func (c *Controller) setCaptureState(state speech.State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.captureActive = state == speech.StateListening
	c.mu.Unlock()

	c.changed()
}

// Close tears the session down: the in-flight relay call is cancelled, any
// running reveal is stopped before it can mutate freed state, and an active
// capture session is released. History is process-lifetime only and is
// simply dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	current := c.current
	c.current = nil
	c.mu.Unlock()

	c.cancel()
	if current != nil {
		current.Stop()
	}
	c.capture.Stop()
}

func (c *Controller) changed() {
	if c.notify == nil {
		return
	}
	c.notify(c.Snapshot())
}
