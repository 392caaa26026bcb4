package session

import (
	"sync"
	"time"
)

// DefaultRevealInterval paces the assistant reply animation.
const DefaultRevealInterval = 20 * time.Millisecond

// Reveal is one in-flight typewriter animation over a reply. It owns a timer
// goroutine, emits rune prefixes of the text one character longer each step,
// and hands the full text to done at the end. It is one-shot: a reveal is
// never restarted, and must be stopped if its session goes away first.
type Reveal struct {
	text     string
	interval time.Duration
	step     func(r *Reveal, prefix string)
	done     func(r *Reveal, full string)

	stop chan struct{}
	once sync.Once
}

func startReveal(text string, interval time.Duration, step func(*Reveal, string), done func(*Reveal, string)) *Reveal {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	r := &Reveal{
		text:     text,
		interval: interval,
		step:     step,
		done:     done,
		stop:     make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Reveal) run() {
	runes := []rune(r.text)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-ticker.C:
			r.step(r, string(runes[:i]))
		case <-r.stop:
			return
		}
	}

	select {
	case <-r.stop:
	default:
		r.done(r, r.text)
	}
}

// Stop cancels the remaining animation steps. The reply is not committed;
// the owner decides what happens to it.
func (r *Reveal) Stop() {
	r.once.Do(func() { close(r.stop) })
}
