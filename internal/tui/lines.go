package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
	"github.com/smartbotics/automate-web/internal/widget"
)

// Line mode reports a desktop-sized viewport so focus and scrolling happen
// immediately.
const (
	lineModeWidth  = 1024
	lineModeHeight = 768
)

// RunLines drives the widget from a line-oriented reader, one message per
// line, printing bot turns to out. It is used when stdout is not a terminal.
func RunLines(ctx context.Context, in io.Reader, out io.Writer, sender widget.Sender, fragment string, opts ...widget.Option) error {
	ls := &lineSurface{out: out, fragment: fragment}

	ctrl, err := widget.Mount(ls.elements(), ls, sender, opts...)
	if err != nil {
		return errors.Wrap(err, "mount widget")
	}
	defer ctrl.Teardown()

	ctrl.Open()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ls.setInput(scanner.Text())
		ctrl.Send(ctx)
	}
	return errors.Wrap(scanner.Err(), "read input")
}

type lineSurface struct {
	mu       sync.Mutex
	out      io.Writer
	fragment string
	input    string
}

func (l *lineSurface) elements() widget.Elements {
	return widget.Elements{
		Toggle:   lineNoop{},
		Window:   lineNoop{},
		Close:    trigger("close"),
		Form:     trigger("form"),
		Input:    lineInput{l},
		Messages: lineMessages{l},
		Send:     lineNoop{},
	}
}

func (l *lineSurface) setInput(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.input = v
}

func (l *lineSurface) ViewportWidth() int       { return lineModeWidth }
func (l *lineSurface) ViewportHeight() int      { return lineModeHeight }
func (l *lineSurface) Fragment() string         { return l.fragment }
func (l *lineSurface) UserAgent() string        { return UserAgent }
func (l *lineSurface) Sections() []page.Section { return nil }
func (l *lineSurface) SetScrollLocked(bool)     {}

type lineNoop struct{}

func (lineNoop) SetActive(bool)   {}
func (lineNoop) SetHeight(int)    {}
func (lineNoop) SetDisabled(bool) {}

type lineInput struct{ l *lineSurface }

func (i lineInput) Value() string {
	i.l.mu.Lock()
	defer i.l.mu.Unlock()
	return i.l.input
}

func (i lineInput) SetValue(v string) { i.l.setInput(v) }
func (i lineInput) Focus()            {}
func (i lineInput) SetHeight(int)     {}
func (i lineInput) ScrollHeight() int { return cellHeight }

type lineMessages struct{ l *lineSurface }

// Append prints bot turns; the visitor's own lines are already on screen.
func (m lineMessages) Append(turn chat.Turn) {
	if turn.Origin == chat.User {
		return
	}
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	fmt.Fprintf(m.l.out, "bot> %s\n", turn.Text)
}

func (m lineMessages) AppendTyping()      {}
func (m lineMessages) RemoveTyping() bool { return true }
func (m lineMessages) ScrollToBottom()    {}
