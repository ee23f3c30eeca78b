// Package gpio is the line layer the blinker drives. A Backend hands out
// input and output lines by offset; the station only ever talks to the
// Input and Output interfaces below.
package gpio

import (
	"errors"
	"fmt"
)

// Input is a line configured as an input.
type Input interface {
	Value() (int, error)
	Offset() int
}

// Output is a line configured as an output.
type Output interface {
	SetValue(value int) error
	Offset() int
}

// Backend requests lines from a GPIO implementation. Close releases every
// line it handed out.
type Backend interface {
	RequestInput(offset int) (Input, error)
	RequestOutput(offset int) (Output, error)
	Close() error
}

const (
	BackendGpiod  = "gpiod"
	BackendPeriph = "periph"
	BackendFake   = "fake"
)

var (
	ErrUnknownBackend = errors.New("unknown gpio backend")
	ErrUnsupported    = errors.New("gpio backend not supported on this platform")
	ErrLineBusy       = errors.New("line already requested")
)

// Open returns the named backend. chip is only used by the gpiod backend.
func Open(backend, chip string) (Backend, error) {
	switch backend {
	case BackendGpiod, "":
		return openGpiod(chip)
	case BackendPeriph:
		p, err := OpenPeriph()
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendFake:
		return NewFake(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Edge selects which transitions EventDetected reports.
type Edge int

const (
	RisingEdge Edge = iota + 1
	FallingEdge
	BothEdges
)

func (e Edge) String() string {
	switch e {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	case BothEdges:
		return "both"
	default:
		return fmt.Sprintf("Edge(%d)", int(e))
	}
}

// EventDetected samples in and reports whether the transition from
// *previous to the new sample matches edge. The new sample is stored in
// *previous, so holding a button reports a single event. On a read error
// *previous is left untouched.
func EventDetected(in Input, edge Edge, previous *int) (bool, error) {
	v, err := in.Value()
	if err != nil {
		return false, err
	}
	if v != 0 {
		v = 1
	}
	last := *previous
	*previous = v
	switch edge {
	case RisingEdge:
		return last == 0 && v == 1, nil
	case FallingEdge:
		return last == 1 && v == 0, nil
	case BothEdges:
		return last != v, nil
	default:
		return false, nil
	}
}
