// Package events delivers domain events (orders placed, menu commits) to
// Kafka, Telegram or the console.
package events

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/multierr"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// ConsoleOutput prints every message prefixed by its topic.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}

// FanOut writes each message to every destination and reports all failures.
type FanOut []OutputDestination

func (f FanOut) WriteMessage(topic string, msg []byte) error {
	var err error
	for _, out := range f {
		err = multierr.Append(err, out.WriteMessage(topic, msg))
	}
	return err
}

func (f FanOut) Close() error {
	var err error
	for _, out := range f {
		err = multierr.Append(err, out.Close())
	}
	return err
}

// Discard drops every message.
type Discard struct{}

func (Discard) WriteMessage(string, []byte) error { return nil }
func (Discard) Close() error                      { return nil }
