// Package teleop drives the robot by hand from a terminal, one confirmed move
// at a time, and redraws the discovered map after every command.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beka-birhanu/vinom-maze/explorer"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh/terminal"
)

const (
	clearScreen = "\033[H\033[2J"
	help        = "arrows or h/j/k/l move, s senses, q quits"
)

// Session turns key presses into navigator commands.
type Session struct {
	nav    *explorer.Navigator
	out    io.Writer
	logger *logrus.Entry
	status string
}

// NewSession creates a Session writing its screen to out.
func NewSession(nav *explorer.Navigator, out io.Writer, logger *logrus.Entry) *Session {
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = logrus.NewEntry(silent)
	}
	return &Session{nav: nav, out: out, logger: logger, status: help}
}

// Drive puts the terminal behind fd in raw mode, when it is one, and runs the
// session until the user quits, input ends or ctx is done.
func Drive(ctx context.Context, nav *explorer.Navigator, fd int, in io.Reader, out io.Writer, logger *logrus.Entry) error {
	if terminal.IsTerminal(fd) {
		state, err := terminal.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer func() {
			_ = terminal.Restore(fd, state)
		}()
	}
	return NewSession(nav, out, logger).Run(ctx, in)
}

// Run reads keys from in until a quit key, EOF or cancellation.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.render()

	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := in.Read(buf)
		for _, key := range ParseKeys(buf[:n]) {
			quit, herr := s.Handle(ctx, key)
			if herr != nil {
				return herr
			}
			if quit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading keys: %w", err)
		}
	}
}

// Handle executes one key and redraws the screen. It reports true when the
// session should end. Robot failures are returned; everything else only
// updates the status line.
func (s *Session) Handle(ctx context.Context, key Key) (bool, error) {
	switch key.Cmd {
	case CmdQuit:
		return true, nil

	case CmdSense:
		if err := s.senseAll(ctx); err != nil {
			return false, err
		}
		s.status = fmt.Sprintf("sensed %s", s.nav.Position())

	case CmdMove:
		from := s.nav.Position()
		if !s.nav.Map().InBound(from.Step(key.Dir)) {
			s.status = fmt.Sprintf("%s of %s is outside the maze", key.Dir, from)
			break
		}
		outcome, err := s.nav.Move(ctx, key.Dir)
		if err != nil {
			return false, err
		}
		s.status = fmt.Sprintf("%s %s: %s", key.Dir, from, outcome)
		s.logger.WithFields(logrus.Fields{"from": from, "dir": key.Dir, "outcome": outcome}).Debug("Manual move")
	}

	s.render()
	return false, nil
}

func (s *Session) senseAll(ctx context.Context) error {
	for _, d := range maze.Directions {
		if _, err := s.nav.Sense(ctx, d); err != nil {
			return err
		}
	}
	s.nav.Map().MarkVisited(s.nav.Position())
	return nil
}

// render redraws the map. Raw mode needs explicit carriage returns.
func (s *Session) render() {
	screen := s.nav.Map().Render(s.nav.Position()) + "\n" + s.status + "\n"
	_, _ = io.WriteString(s.out, clearScreen+strings.ReplaceAll(screen, "\n", "\r\n"))
}
