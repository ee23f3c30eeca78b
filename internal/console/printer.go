// Package console serializes status output from concurrent workers.
package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/figadore/go-blinker/internal/semaphore"
)

// Locker is the binary semaphore guarding the console.
type Locker interface {
	Acquire(ctx context.Context) error
	Release()
}

// Printer writes to a shared writer while holding a semaphore, so lines
// from different workers never interleave. After each write the semaphore
// is held for a fixed time before release.
type Printer struct {
	out  io.Writer
	lock Locker
	hold time.Duration
}

func NewPrinter(out io.Writer, lock Locker, hold time.Duration) *Printer {
	if out == nil || lock == nil {
		panic("console: nil writer or lock")
	}
	return &Printer{
		out:  out,
		lock: lock,
		hold: hold,
	}
}

// NewRegistryPrinter takes the print semaphore id from r.
func NewRegistryPrinter(out io.Writer, r *semaphore.Registry, id int, hold time.Duration) (*Printer, error) {
	b, err := r.Semaphore(id)
	if err != nil {
		return nil, fmt.Errorf("print semaphore: %w", err)
	}
	return NewPrinter(out, b, hold), nil
}

// Do runs fn inside the critical section. fn is not run if ctx ends while
// waiting for the semaphore. The hold is cut short when ctx ends, but the
// semaphore is always released.
func (p *Printer) Do(ctx context.Context, fn func(w io.Writer)) error {
	if err := p.lock.Acquire(ctx); err != nil {
		return err
	}
	defer p.lock.Release()
	fn(p.out)
	if p.hold > 0 {
		t := time.NewTimer(p.hold)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return nil
}

// Printf writes one formatted line inside the critical section.
func (p *Printer) Printf(ctx context.Context, format string, args ...interface{}) error {
	return p.Do(ctx, func(w io.Writer) {
		fmt.Fprintf(w, format, args...)
	})
}
