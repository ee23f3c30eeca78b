package gpio

import (
	"fmt"
	"sync"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Periph is the periph.io backend. Pins are addressed by their BCM numbers,
// which on a Raspberry Pi match the gpiochip0 offsets.
type Periph struct {
	mu   sync.Mutex
	pins map[int]pgpio.PinIO
}

// OpenPeriph initialises the periph host drivers. host.Init can safely be
// called more than once.
func OpenPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return &Periph{pins: make(map[int]pgpio.PinIO)}, nil
}

func (p *Periph) pin(offset int) (pgpio.PinIO, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pins[offset]; ok {
		return nil, fmt.Errorf("%w: GPIO%d", ErrLineBusy, offset)
	}
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", offset))
	if pin == nil {
		return nil, fmt.Errorf("no such pin GPIO%d", offset)
	}
	p.pins[offset] = pin
	return pin, nil
}

func (p *Periph) RequestOutput(offset int) (Output, error) {
	pin, err := p.pin(offset)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(pgpio.Low); err != nil {
		return nil, fmt.Errorf("request output %d: %w", offset, err)
	}
	return &periphLine{pin: pin, offset: offset}, nil
}

func (p *Periph) RequestInput(offset int) (Input, error) {
	pin, err := p.pin(offset)
	if err != nil {
		return nil, err
	}
	if err := pin.In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("request input %d: %w", offset, err)
	}
	return &periphLine{pin: pin, offset: offset}, nil
}

// Close halts every pin handed out.
func (p *Periph) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for offset, pin := range p.pins {
		if err := pin.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("halt GPIO%d: %w", offset, err)
		}
		delete(p.pins, offset)
	}
	return firstErr
}

type periphLine struct {
	pin    pgpio.PinIO
	offset int
}

func (l *periphLine) Value() (int, error) {
	if l.pin.Read() == pgpio.High {
		return 1, nil
	}
	return 0, nil
}

func (l *periphLine) SetValue(value int) error {
	return l.pin.Out(pgpio.Level(value != 0))
}

func (l *periphLine) Offset() int {
	return l.offset
}
