package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/figadore/go-blinker/internal/config"
	"github.com/figadore/go-blinker/internal/gpio"
	"github.com/figadore/go-blinker/internal/log"
	"github.com/figadore/go-blinker/internal/station"
)

// options are the command line overrides for the dotenv file
type options struct {
	envFile  string
	chip     string
	backend  string
	debug    bool
	duration time.Duration
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	opts := options{}
	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.StringVar(&opts.envFile, "env", ".env", "dotenv file with the pin layout")
	fs.StringVar(&opts.chip, "chip", "", "gpio chip, overrides GPIO_CHIP")
	fs.StringVar(&opts.backend, "backend", "", "gpio backend: gpiod, periph or fake, overrides GPIO_BACKEND")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logs")
	fs.DurationVar(&opts.duration, "duration", 0, "stop cleanly after this long, 0 to run until signalled")
	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return &opts, fs, nil
}

func loadConfig(opts *options, fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if fs.Changed("chip") {
		cfg.Chip = opts.chip
	}
	if fs.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if opts.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func run(args []string) int {
	opts, fs, err := parseFlags(args)
	if err != nil {
		return 1
	}
	cfg, err := loadConfig(opts, fs)
	if err != nil {
		log.Printf("Unable to load config: %v", err)
		return 1
	}
	if cfg.Debug {
		log.EnableDebug()
	}

	// Handle externally generated OS exit signals
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var (
		mainContext context.Context
		cancel      context.CancelFunc
	)
	if opts.duration > 0 {
		mainContext, cancel = context.WithTimeout(context.Background(), opts.duration)
	} else {
		mainContext, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	backend, err := gpio.Open(cfg.Backend, cfg.Chip)
	if err != nil {
		log.Printf("Unable to open gpio: %v", err)
		return 1
	}
	defer log.Debugln("main: Closed gpio")
	defer backend.Close()

	blinker, err := station.New(cfg, backend, os.Stdout)
	if err != nil {
		log.Printf("Unable to set up station: %v", err)
		return 1
	}

	done := make(chan struct{})
	go func() {
		blinker.Run(mainContext)
		close(done)
	}()

	// Run until --duration elapses or an OS signal arrives
	var msg string
	var exitCode int
	select {
	case <-done:
		msg = fmt.Sprintf("Main context cancelled: %v", mainContext.Err())
		exitCode = 0
	case sig := <-sigCh:
		msg = fmt.Sprintf("Received system signal: %v", sig)
		exitCode = 2
		// In a separate goroutine, listen for a second OS signal
		go func() {
			<-sigCh
			fmt.Println("Error: Received 2nd system signal, hard exit")
			os.Exit(2)
		}()
	}
	log.Println(msg)
	// Workers turn their LEDs off on the way out; wait for that before
	// the deferred backend.Close releases the lines
	cancel()
	<-done
	return exitCode
}

func main() {
	os.Exit(run(os.Args))
}
