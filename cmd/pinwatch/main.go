//go:build linux

// A diagnostic that watches the configured button pins and reports edge
// events, for checking the wiring before running the blinker.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/warthog618/gpiod"

	"github.com/figadore/go-blinker/internal/config"
	"github.com/figadore/go-blinker/internal/gpio"
)

// edgeOf maps a kernel line event onto the edge names the blinker uses.
func edgeOf(evt gpiod.LineEvent) gpio.Edge {
	if evt.Type == gpiod.LineEventFallingEdge {
		return gpio.FallingEdge
	}
	return gpio.RisingEdge
}

// reporter returns a Watch handler that writes one line per event. The
// timestamp is the kernel's, so debounce gaps are visible between lines.
func reporter(out io.Writer, chip string) func(gpiod.LineEvent) {
	var mu sync.Mutex
	return func(evt gpiod.LineEvent) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "%s:%d %s edge at %v\n", chip, evt.Offset, edgeOf(evt), evt.Timestamp)
	}
}

func run(args []string) int {
	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file with the pin layout")
	chip := fs.String("chip", "", "gpio chip, overrides GPIO_CHIP")
	debounce := fs.Duration("debounce", 30*time.Millisecond, "debounce period, 0 to disable")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Printf("Unable to load config: %s\n", err)
		return 1
	}
	if fs.Changed("chip") {
		cfg.Chip = *chip
	}

	c, err := gpio.OpenGpiod(cfg.Chip)
	if err != nil {
		fmt.Printf("Opening chip returned error: %s\n", err)
		return 1
	}
	defer c.Close()

	handler := reporter(os.Stdout, cfg.Chip)
	for _, pair := range cfg.Pairs {
		if err := c.Watch(pair.Button, *debounce, handler); err != nil {
			fmt.Printf("Watching line %d returned error: %s\n", pair.Button, err)
			return 1
		}
		fmt.Printf("Watching Pin %s:%d...\n", cfg.Chip, pair.Button)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	<-quit
	fmt.Println("exiting...")
	return 0
}

func main() {
	os.Exit(run(os.Args))
}
