// Package console is the terminal side of the client: it shows
// notifications, asks for confirmation and renders the booking list.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var ErrNoInput = errors.New("no more input")

// Console reads answers line by line from one input and writes prompts to
// one output. Prompts and other output are serialized; nothing is printed
// while a question is open.
type Console struct {
	in   io.Reader
	inFd int // -1 when input is not a terminal
	out  *termenv.Output
	loc  *time.Location

	prompt sync.Mutex

	startLines sync.Once
	lines      chan string
}

type Option func(*Console)

func WithLocation(loc *time.Location) Option {
	return func(c *Console) { c.loc = loc }
}

func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:    in,
		inFd:  -1,
		out:   termenv.NewOutput(out),
		loc:   time.Local,
		lines: make(chan string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Std is a console on the process's stdin and stdout.
func Std(opts ...Option) *Console {
	c := New(os.Stdin, os.Stdout, opts...)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		c.inFd = fd
	}
	return c
}

func (c *Console) Printf(format string, args ...any) {
	c.prompt.Lock()
	defer c.prompt.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// readLines feeds c.lines until the input ends. Blocking reads cannot be
// interrupted, so a single reader serves every prompt.
func (c *Console) readLines() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	close(c.lines)
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	c.startLines.Do(func() { go c.readLines() })

	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", ErrNoInput
		}
		return strings.TrimSpace(line), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Present shows a notification and waits for the user to press Enter.
func (c *Console) Present(ctx context.Context, title, message string) (bool, error) {
	c.prompt.Lock()
	defer c.prompt.Unlock()

	bold := c.out.String(title).Bold()
	fmt.Fprintf(c.out, "\n%s\n%s\n[press Enter to mark as read] ", bold, message)

	if _, err := c.readLine(ctx); err != nil {
		fmt.Fprintln(c.out)
		return false, err
	}
	return true, nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	c.prompt.Lock()
	defer c.prompt.Unlock()

	fmt.Fprintf(c.out, "%s [y/N] ", question)
	answer, err := c.readLine(ctx)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Ask reads one line of free text.
func (c *Console) Ask(ctx context.Context, label string) (string, error) {
	c.prompt.Lock()
	defer c.prompt.Unlock()

	fmt.Fprintf(c.out, "%s: ", label)
	return c.readLine(ctx)
}

// Password reads a secret without echo when the input is a terminal.
func (c *Console) Password(ctx context.Context, label string) (string, error) {
	if c.inFd < 0 {
		return c.Ask(ctx, label)
	}

	c.prompt.Lock()
	defer c.prompt.Unlock()

	fmt.Fprintf(c.out, "%s: ", label)
	b, err := term.ReadPassword(c.inFd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
