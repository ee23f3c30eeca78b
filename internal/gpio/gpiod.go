//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/warthog618/gpiod"

	"github.com/figadore/go-blinker/internal/log"
)

const consumer = "blinker"

// Chip is the gpiod backend: lines requested from a Linux GPIO character
// device such as gpiochip0.
type Chip struct {
	chip *gpiod.Chip

	mu    sync.Mutex
	lines []*gpiod.Line
}

func openGpiod(name string) (Backend, error) {
	c, err := OpenGpiod(name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// OpenGpiod opens the named chip, gpiochip0 if name is empty.
func OpenGpiod(name string) (*Chip, error) {
	if name == "" {
		name = "gpiochip0"
	}
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", name, err)
	}
	log.Debugf("Opened %s for %s", name, consumer)
	return &Chip{chip: c}, nil
}

func (c *Chip) track(l *gpiod.Line) {
	c.mu.Lock()
	c.lines = append(c.lines, l)
	c.mu.Unlock()
}

func (c *Chip) RequestOutput(offset int) (Output, error) {
	l, err := c.chip.RequestLine(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output %d: %w", offset, err)
	}
	c.track(l)
	return l, nil
}

func (c *Chip) RequestInput(offset int) (Input, error) {
	l, err := c.chip.RequestLine(offset, gpiod.AsInput, gpiod.WithPullDown)
	if err != nil {
		if errors.Is(err, syscall.Errno(22)) {
			log.Println("Note that the WithPullDown option requires kernel V5.5 or later - check your kernel version.")
		}
		return nil, fmt.Errorf("request input %d: %w", offset, err)
	}
	c.track(l)
	return l, nil
}

// Watch requests offset for edge events in both directions and calls
// handler for each one. debounce is skipped when zero.
func (c *Chip) Watch(offset int, debounce time.Duration, handler func(gpiod.LineEvent)) error {
	opts := []gpiod.LineReqOption{
		gpiod.WithBothEdges,
		gpiod.WithEventHandler(handler),
	}
	if debounce > 0 {
		opts = append(opts, gpiod.WithDebounce(debounce))
	}
	l, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		if debounce > 0 && errors.Is(err, syscall.Errno(22)) {
			log.Println("Note that the WithDebounce option requires kernel V5.10 or later - check your kernel version.")
		}
		return fmt.Errorf("watch %d: %w", offset, err)
	}
	c.track(l)
	return nil
}

// Close releases every requested line, then the chip.
func (c *Chip) Close() error {
	c.mu.Lock()
	lines := c.lines
	c.lines = nil
	c.mu.Unlock()

	var errs []error
	for _, l := range lines {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", l.Offset(), err))
		}
	}
	if err := c.chip.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
