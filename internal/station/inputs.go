package station

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/figadore/go-blinker/internal/gpio"
	"github.com/figadore/go-blinker/internal/log"
)

// button is a polled push button. A press is a rising edge between two
// samples, so holding the button down counts once.
type button struct {
	line     gpio.Input
	previous int
	key      string
}

func newButton(id xid.ID, line gpio.Input) *button {
	return &button{
		line: line,
		key:  fmt.Sprintf("%v/button-%d", id, line.Offset()),
	}
}

// pressed samples the line. Read errors are logged and count as no press.
func (b *button) pressed() bool {
	ok, err := gpio.EventDetected(b.line, gpio.RisingEdge, &b.previous)
	if err != nil {
		log.Limitedf(b.key, "Error reading button on pin %d: %v", b.line.Offset(), err)
		return false
	}
	return ok
}
