package station

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/figadore/go-blinker/internal/config"
	"github.com/figadore/go-blinker/internal/console"
	"github.com/figadore/go-blinker/internal/gpio"
	"github.com/figadore/go-blinker/internal/log"
)

const (
	enabledMsg  = "Leds connected to pin %d and %d now enabled!\n"
	disabledMsg = "Leds connected to pin %d and %d now disabled!\n"
)

// Worker polls one button and blinks one LED pair. Each press flips the
// pair between idle and blinking and prints the new state.
type Worker struct {
	Id     xid.ID
	Pair   config.Pair
	Status *Status
	// Poll is the pause between samples while idle.
	Poll time.Duration

	leds    *ledPair
	button  *button
	printer *console.Printer
}

// NewWorker gives the worker a fresh xid. The id tags its debug logs and
// keys its rate-limited error logs.
func NewWorker(pair config.Pair, ledA, ledB gpio.Output, btn gpio.Input, printer *console.Printer) *Worker {
	id := xid.New()
	return &Worker{
		Id:      id,
		Pair:    pair,
		Status:  &Status{state: StateIdle},
		Poll:    config.DefaultPoll,
		leds:    newLedPair(id, ledA, ledB),
		button:  newButton(id, btn),
		printer: printer,
	}
}

// Run loops until ctx is cancelled, then turns both LEDs off.
func (w *Worker) Run(ctx context.Context, wg *sync.WaitGroup) {
	log.Debugf("worker %v: enter, pins %d/%d, button %d, interval %v",
		w.Id, w.Pair.LedA, w.Pair.LedB, w.Pair.Button, w.Pair.Interval)
	defer log.Debugf("worker %v: exit", w.Id)
	defer wg.Done()
	defer w.leds.off()
	for w.step(ctx) {
	}
}

// step runs one loop iteration and reports whether to keep going.
func (w *Worker) step(ctx context.Context) bool {
	if w.button.pressed() {
		if err := w.toggle(ctx); err != nil {
			log.Debugf("worker %v: toggle: %v", w.Id, err)
			return false
		}
	}

	if w.Status.Get() == StateBlinking {
		w.leds.showA()
		if !sleep(ctx, w.Pair.Interval) {
			return false
		}
		w.leds.showB()
		return sleep(ctx, w.Pair.Interval)
	}
	w.leds.off()
	return sleep(ctx, w.Poll)
}

// toggle flips the state and prints it while holding the print semaphore.
func (w *Worker) toggle(ctx context.Context) error {
	return w.printer.Do(ctx, func(out io.Writer) {
		msg := disabledMsg
		if w.Status.Toggle() == StateBlinking {
			msg = enabledMsg
		}
		fmt.Fprintf(out, msg, w.leds.a.Offset(), w.leds.b.Offset())
	})
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
