package station

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/figadore/go-blinker/internal/gpio"
	"github.com/figadore/go-blinker/internal/log"
)

// ledPair drives two LEDs so that at most one is lit: every phase turns
// the lit LED off before lighting the other.
type ledPair struct {
	a, b gpio.Output
	key  string
}

// newLedPair keys its error limiter by worker id and offsets.
func newLedPair(id xid.ID, a, b gpio.Output) *ledPair {
	return &ledPair{
		a:   a,
		b:   b,
		key: fmt.Sprintf("%v/leds-%d-%d", id, a.Offset(), b.Offset()),
	}
}

func (p *ledPair) set(line gpio.Output, value int) {
	if err := line.SetValue(value); err != nil {
		log.Limitedf(p.key, "Error setting LED on pin %d to %d: %v", line.Offset(), value, err)
	}
}

// showA lights A only.
func (p *ledPair) showA() {
	p.set(p.b, 0)
	p.set(p.a, 1)
}

// showB lights B only.
func (p *ledPair) showB() {
	p.set(p.a, 0)
	p.set(p.b, 1)
}

func (p *ledPair) off() {
	p.set(p.a, 0)
	p.set(p.b, 0)
}
