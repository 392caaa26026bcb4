package speech

import (
	"bufio"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandEngine runs an external speech-to-text command and treats the first
// line it prints as the finalized transcript. Any CLI recognizer works as
// long as it records until silence and prints the result to stdout.
type CommandEngine struct {
	mu   sync.Mutex
	name string
	args []string
	cmd  *exec.Cmd
}

// Detect feature-detects the speech capability: a configured recognizer
// command whose binary is on PATH. Returns nil when the capability is
// absent.
func Detect(command string) Engine {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil
	}
	return &CommandEngine{name: fields[0], args: fields[1:]}
}

func (e *CommandEngine) Start(events Events) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil {
		return errors.New("speech: capture already running")
	}

	cmd := exec.Command(e.name, e.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("speech: failed to open recognizer output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("speech: failed to start recognizer: %w", err)
	}
	e.cmd = cmd

	go func() {
		scanner := bufio.NewScanner(stdout)
		if scanner.Scan() {
			if text := strings.TrimSpace(scanner.Text()); text != "" && events.Result != nil {
				events.Result(text)
			}
		}
		cmd.Wait()

		e.mu.Lock()
		e.cmd = nil
		e.mu.Unlock()

		if events.End != nil {
			events.End()
		}
	}()

	return nil
}

func (e *CommandEngine) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	e.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}
