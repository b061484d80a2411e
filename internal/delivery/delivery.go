package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrPermission means the channel exists but cannot be posted to.
	ErrPermission = errors.New("delivery permission denied")

	// ErrNotFound means the channel does not exist.
	ErrNotFound = errors.New("delivery channel not found")
)

// Deliverer posts messages to one channel.
type Deliverer interface {
	// Check verifies the channel is reachable before the run starts.
	Check(ctx context.Context) error
	// Send posts one message.
	Send(ctx context.Context, text string) error
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// Unreachable reports whether err means the channel cannot be used at all.
func Unreachable(err error) bool {
	return errors.Is(err, ErrPermission) || errors.Is(err, ErrNotFound)
}

// Console writes every message as a line to w. It backs dry runs.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Check always succeeds while the console is open.
func (c *Console) Check(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("console: %w", ErrNotFound)
	}
	return nil
}

// Send writes text followed by a newline.
func (c *Console) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("console: %w", ErrNotFound)
	}
	_, err := fmt.Fprintln(c.w, text)
	return err
}

// Close marks the console closed.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
