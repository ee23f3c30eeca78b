// Package config loads the pin layout and timing of a blinker from a
// dotenv file. Keys missing from the file keep their defaults, which match
// the two-pair reference wiring on a Raspberry Pi.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DefaultChip      = "gpiochip0"
	DefaultBackend   = "gpiod"
	DefaultPrintHold = 10 * time.Millisecond
	DefaultPoll      = time.Millisecond
)

var ErrInvalid = errors.New("invalid config")

// Pair is two LEDs blinked in turn and the button that toggles them.
type Pair struct {
	LedA     int
	LedB     int
	Button   int
	Interval time.Duration
}

type Config struct {
	Chip    string
	Backend string
	Pairs   []Pair
	// PrintHold is how long a status line keeps the print semaphore.
	PrintHold time.Duration
	// Poll is the pause between button samples while a pair is idle.
	Poll  time.Duration
	Debug bool
}

// Default returns the reference wiring: LEDs 17/22 with button 27 at
// 100ms, LEDs 23/24 with button 25 at 500ms.
func Default() *Config {
	return &Config{
		Chip:    DefaultChip,
		Backend: DefaultBackend,
		Pairs: []Pair{
			{LedA: 17, LedB: 22, Button: 27, Interval: 100 * time.Millisecond},
			{LedA: 23, LedB: 24, Button: 25, Interval: 500 * time.Millisecond},
		},
		PrintHold: DefaultPrintHold,
		Poll:      DefaultPoll,
	}
}

// Load reads path with godotenv and applies it over Default. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	dotEnv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		dotEnv = map[string]string{}
	}
	return FromEnv(dotEnv)
}

// FromEnv applies dotEnv over Default and validates the result.
func FromEnv(dotEnv map[string]string) (*Config, error) {
	c := Default()
	if v, ok := dotEnv["GPIO_CHIP"]; ok && v != "" {
		c.Chip = v
	}
	if v, ok := dotEnv["GPIO_BACKEND"]; ok && v != "" {
		c.Backend = v
	}

	p := &envParser{env: dotEnv}
	p.pin("LED1_PIN", &c.Pairs[0].LedA)
	p.pin("LED2_PIN", &c.Pairs[0].LedB)
	p.pin("BUTTON1_PIN", &c.Pairs[0].Button)
	p.millis("BLINK1_MS", &c.Pairs[0].Interval)
	p.pin("LED3_PIN", &c.Pairs[1].LedA)
	p.pin("LED4_PIN", &c.Pairs[1].LedB)
	p.pin("BUTTON2_PIN", &c.Pairs[1].Button)
	p.millis("BLINK2_MS", &c.Pairs[1].Interval)
	p.millis("PRINT_HOLD_MS", &c.PrintHold)
	p.millis("POLL_MS", &c.Poll)
	p.flag("DEBUG", &c.Debug)
	if p.err != nil {
		return nil, p.err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every pin is used once and every interval is usable.
func (c *Config) Validate() error {
	if len(c.Pairs) == 0 {
		return fmt.Errorf("%w: no pairs", ErrInvalid)
	}
	used := make(map[int]string)
	claim := func(pin int, name string) error {
		if pin < 0 {
			return fmt.Errorf("%w: %s pin %d is negative", ErrInvalid, name, pin)
		}
		if other, ok := used[pin]; ok {
			return fmt.Errorf("%w: pin %d used by both %s and %s", ErrInvalid, pin, other, name)
		}
		used[pin] = name
		return nil
	}
	for i, p := range c.Pairs {
		n := i + 1
		if err := claim(p.LedA, fmt.Sprintf("pair %d led a", n)); err != nil {
			return err
		}
		if err := claim(p.LedB, fmt.Sprintf("pair %d led b", n)); err != nil {
			return err
		}
		if err := claim(p.Button, fmt.Sprintf("pair %d button", n)); err != nil {
			return err
		}
		if p.Interval <= 0 {
			return fmt.Errorf("%w: pair %d blink interval %v", ErrInvalid, n, p.Interval)
		}
	}
	if c.PrintHold < 0 {
		return fmt.Errorf("%w: print hold %v", ErrInvalid, c.PrintHold)
	}
	if c.Poll < 0 {
		return fmt.Errorf("%w: poll %v", ErrInvalid, c.Poll)
	}
	return nil
}

// envParser records the first conversion error and skips every key after it.
type envParser struct {
	env map[string]string
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.env[key]
	return v, ok && v != ""
}

// decimal strips leading zeros so cast does not read "017" as octal or
// reject "09". Pins and intervals in a dotenv file are always base 10.
func decimal(v string) string {
	v = strings.TrimSpace(v)
	sign := ""
	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		sign, v = v[:1], v[1:]
	}
	v = strings.TrimLeft(v, "0")
	if v == "" {
		v = "0"
	}
	return sign + v
}

func (p *envParser) pin(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := cast.ToIntE(decimal(v))
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		return
	}
	*dst = n
}

func (p *envParser) millis(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := cast.ToInt64E(decimal(v))
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		return
	}
	*dst = time.Duration(n) * time.Millisecond
}

func (p *envParser) flag(key string, dst *bool) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		return
	}
	*dst = b
}
