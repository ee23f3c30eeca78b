package station

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/figadore/go-blinker/internal/config"
	"github.com/figadore/go-blinker/internal/console"
	"github.com/figadore/go-blinker/internal/gpio"
	"github.com/figadore/go-blinker/internal/log"
	"github.com/figadore/go-blinker/internal/semaphore"
)

// PrintSemaphore is the registry slot guarding console output.
const PrintSemaphore = 0

type Station struct {
	Workers    []*Worker
	Printer    *console.Printer
	Semaphores *semaphore.Registry
}

// New requests every line in cfg from backend and builds one worker per
// pair. Lines are owned by backend; close it to release them.
func New(cfg *config.Config, backend gpio.Backend, out io.Writer) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry := semaphore.NewRegistry()
	printer, err := console.NewRegistryPrinter(out, registry, PrintSemaphore, cfg.PrintHold)
	if err != nil {
		return nil, err
	}
	station := Station{
		Printer:    printer,
		Semaphores: registry,
	}

	for i, pair := range cfg.Pairs {
		log.Printf("Pair %d: leds on pins %d and %d, button on pin %d, blinking every %v",
			i+1, pair.LedA, pair.LedB, pair.Button, pair.Interval)
		ledA, err := backend.RequestOutput(pair.LedA)
		if err != nil {
			return nil, fmt.Errorf("pair %d led a: %w", i+1, err)
		}
		ledB, err := backend.RequestOutput(pair.LedB)
		if err != nil {
			return nil, fmt.Errorf("pair %d led b: %w", i+1, err)
		}
		btn, err := backend.RequestInput(pair.Button)
		if err != nil {
			return nil, fmt.Errorf("pair %d button: %w", i+1, err)
		}
		worker := NewWorker(pair, ledA, ledB, btn, printer)
		worker.Poll = cfg.Poll
		station.Workers = append(station.Workers, worker)
	}
	return &station, nil
}

// Run starts every worker in its own goroutine and waits for all of them.
// It returns once ctx is cancelled and the workers have turned their LEDs
// off.
func (s *Station) Run(ctx context.Context) {
	log.Println("Station.Run: enter")
	defer log.Println("Station.Run: exit")
	var wg sync.WaitGroup
	for _, w := range s.Workers {
		wg.Add(1)
		go w.Run(ctx, &wg)
	}
	wg.Wait()
}

// States returns the current state of each pair, in config order.
func (s *Station) States() []State {
	states := make([]State, len(s.Workers))
	for i, w := range s.Workers {
		states[i] = w.Status.Get()
	}
	return states
}
