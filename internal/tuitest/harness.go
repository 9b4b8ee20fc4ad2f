// Package tuitest drives the pagewright binary inside a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 40
	defaultTimeout = 10 * time.Second
)

// Step is one scripted key press written after Delay.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Config describes one editor session.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
	// Terminal sets the colours reported to the program; dark by default.
	Terminal Terminal
	Steps    []Step
	Timeout  time.Duration
}

// Recording contains the raw terminal stream plus parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

type session struct {
	cmd  *exec.Cmd
	ptmx *os.File
	out  bytes.Buffer
	done chan struct{}
}

// Run starts the command inside a PTY, replays the steps and waits for the
// program to exit on its own. Exiting is part of the script: a session that
// is still running at the timeout is an error.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(cfg.Timeout, defaultTimeout))
	defer cancel()

	s, err := start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.ptmx.Close() }()

	began := time.Now()
	if err := s.play(ctx, cfg.Steps); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	raw := s.out.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(began)}, nil
}

func start(ctx context.Context, cfg Config) (*session, error) {
	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	size := &pty.Winsize{
		Rows: uint16(orDefault(cfg.Height, defaultHeight)),
		Cols: uint16(orDefault(cfg.Width, defaultWidth)),
	}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	s := &session{cmd: cmd, ptmx: ptmx, done: make(chan struct{})}
	go s.record(newTerminalResponder(ptmx, cfg.Terminal))
	return s, nil
}

// record copies everything the program draws until the PTY closes.
func (s *session) record(responder *terminalResponder) {
	defer close(s.done)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			responder.Process(buf[:n])
			_, _ = s.out.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func (s *session) play(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: context cancelled before script finished: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) == 0 {
			continue
		}
		if _, err := s.ptmx.Write(step.Input); err != nil {
			return fmt.Errorf("tuitest: write input: %w", err)
		}
	}
	return nil
}

func (s *session) wait(ctx context.Context) error {
	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()
	select {
	case err := <-exited:
		if err != nil {
			return fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}
	// closing the PTY ends record once the remaining output is drained
	_ = s.ptmx.Close()
	<-s.done
	return nil
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	// KeyEnter sends a carriage return to the PTY.
	KeyEnter = []byte{'\r'}
	// KeyBackspace sends DEL, which terminals report for backspace.
	KeyBackspace = []byte{127}
	// KeyCtrlD toggles dark mode in the editor.
	KeyCtrlD = []byte{4}
	// KeyCtrlE exports the open document.
	KeyCtrlE = []byte{5}
	// KeyCtrlS saves the open document.
	KeyCtrlS = []byte{19}
	// KeyEsc asks the editor to quit.
	KeyEsc = []byte{27}
	// KeyPgDown moves to the next page.
	KeyPgDown = []byte("\x1b[6~")
)

// Type returns one step per rune so the program sees individual key presses
// rather than a paste.
func Type(text string, gap time.Duration) []Step {
	steps := make([]Step, 0, len(text))
	for _, r := range text {
		steps = append(steps, Step{Delay: gap, Input: []byte(string(r))})
	}
	return steps
}

// Press is a single step that writes input after delay.
func Press(delay time.Duration, input []byte) Step {
	return Step{Delay: delay, Input: input}
}
