package main

import (
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chatwidget/internal/config"
	"chatwidget/internal/relay"
	"chatwidget/internal/session"
	"chatwidget/internal/speech"
)

func main() {
	cfg := config.LoadWidget()

	client := relay.NewClient(relay.Config{BaseURL: cfg.RelayURL})
	engine := speech.Detect(cfg.SpeechCommand)

	updates := make(chan session.Snapshot, 64)
	ctrl := session.New(client,
		session.WithRevealInterval(time.Duration(cfg.RevealIntervalMs)*time.Millisecond),
		session.WithSpeechEngine(engine),
		session.WithNotify(func(s session.Snapshot) { pushUpdate(updates, s) }),
	)
	defer ctrl.Close()

	p := tea.NewProgram(newWidget(ctrl, updates, engine != nil), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Printf("widget error: %v", err)
		os.Exit(1)
	}
}

// pushUpdate never blocks the session: when the UI falls behind, the oldest
// snapshot is dropped since the newest one supersedes it anyway.
func pushUpdate(ch chan session.Snapshot, s session.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
