package station

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figadore/go-blinker/internal/config"
	"github.com/figadore/go-blinker/internal/console"
	"github.com/figadore/go-blinker/internal/gpio"
	"github.com/figadore/go-blinker/internal/semaphore"
)

const (
	pinA      = 17
	pinB      = 22
	pinButton = 27
)

func newTestWorker(t *testing.T) (*Worker, *gpio.Fake, *bytes.Buffer) {
	var (
		require = require.New(t)
		fake    = gpio.NewFake()
		out     = new(bytes.Buffer)
	)

	a, err := fake.RequestOutput(pinA)
	require.NoError(err)
	b, err := fake.RequestOutput(pinB)
	require.NoError(err)
	btn, err := fake.RequestInput(pinButton)
	require.NoError(err)
	printer, err := console.NewRegistryPrinter(out, semaphore.NewRegistry(), PrintSemaphore, 0)
	require.NoError(err)

	w := NewWorker(config.Pair{LedA: pinA, LedB: pinB, Button: pinButton, Interval: time.Millisecond}, a, b, btn, printer)
	w.Poll = 0
	return w, fake, out
}

func lines(out *bytes.Buffer) []string {
	s := strings.TrimSpace(out.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestWorkerInitialState(t *testing.T) {
	w, _, out := newTestWorker(t)
	assert.Equal(t, StateIdle, w.Status.Get())
	assert.Empty(t, out.String())
	assert.NotEqual(t, xid.ID{}, w.Id)
}

func TestWorkerLogKeys(t *testing.T) {
	var (
		assert  = assert.New(t)
		w, _, _ = newTestWorker(t)
		other   = xid.New()
	)

	assert.Equal(w.Id.String()+"/leds-17-22", w.leds.key)
	assert.Equal(w.Id.String()+"/button-27", w.button.key)

	// same offsets on another worker get their own limiter
	assert.NotEqual(w.leds.key, newLedPair(other, w.leds.a, w.leds.b).key)
	assert.NotEqual(w.button.key, newButton(other, w.button.line).key)
}

func TestWorkerHeldButtonTogglesOnce(t *testing.T) {
	var (
		assert  = assert.New(t)
		ctx     = context.Background()
		w, f, o = newTestWorker(t)
	)

	f.Set(pinButton, 1)
	for i := 0; i < 5; i++ {
		assert.True(w.step(ctx))
	}

	assert.Equal(StateBlinking, w.Status.Get())
	assert.Equal([]string{"Leds connected to pin 17 and 22 now enabled!"}, lines(o))
}

func TestWorkerPressRelease(t *testing.T) {
	var (
		require = require.New(t)
		ctx     = context.Background()
		w, f, o = newTestWorker(t)
	)

	f.Set(pinButton, 1)
	require.True(w.step(ctx))
	require.Equal(StateBlinking, w.Status.Get())
	require.Equal([]string{"Leds connected to pin 17 and 22 now enabled!"}, lines(o))

	f.Set(pinButton, 0)
	require.True(w.step(ctx))
	require.Equal(StateBlinking, w.Status.Get())

	f.Set(pinButton, 1)
	require.True(w.step(ctx))
	require.Equal(StateIdle, w.Status.Get())
	require.Equal([]string{
		"Leds connected to pin 17 and 22 now enabled!",
		"Leds connected to pin 17 and 22 now disabled!",
	}, lines(o))
}

func TestWorkerBlinkAlternates(t *testing.T) {
	var (
		assert  = assert.New(t)
		ctx     = context.Background()
		w, f, _ = newTestWorker(t)
	)

	f.Set(pinButton, 1)
	for i := 0; i < 10; i++ {
		assert.True(w.step(ctx))
	}

	levels := map[int]int{}
	litA, litB := 0, 0
	for i, write := range f.Writes() {
		levels[write.Offset] = write.Value
		assert.False(levels[pinA] == 1 && levels[pinB] == 1, "both LEDs lit after write %d", i)
		if write.Value == 1 && write.Offset == pinA {
			litA++
		}
		if write.Value == 1 && write.Offset == pinB {
			litB++
		}
	}
	assert.Equal(10, litA)
	assert.Equal(10, litB)
}

func TestWorkerIdleHoldsLow(t *testing.T) {
	var (
		assert  = assert.New(t)
		w, f, o = newTestWorker(t)
	)

	f.Set(pinA, 1)
	f.Set(pinB, 1)
	assert.True(w.step(context.Background()))
	assert.Zero(f.Level(pinA))
	assert.Zero(f.Level(pinB))
	assert.Empty(o.String())
}

func TestWorkerReadError(t *testing.T) {
	var (
		assert  = assert.New(t)
		w, f, o = newTestWorker(t)
	)

	f.Set(pinButton, 1)
	f.FailRead(pinButton, errors.New("line gone"))
	assert.True(w.step(context.Background()))
	assert.Equal(StateIdle, w.Status.Get())
	assert.Empty(o.String())

	f.FailRead(pinButton, nil)
	assert.True(w.step(context.Background()))
	assert.Equal(StateBlinking, w.Status.Get())
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	var (
		require     = require.New(t)
		w, f, _     = newTestWorker(t)
		ctx, cancel = context.WithCancel(context.Background())
		wg          sync.WaitGroup
		done        = make(chan struct{})
	)

	f.Set(pinButton, 1)
	wg.Add(1)
	go w.Run(ctx, &wg)
	go func() {
		wg.Wait()
		close(done)
	}()

	require.Eventually(func() bool {
		return w.Status.Get() == StateBlinking
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.Fail("worker did not stop")
	}
	require.Zero(f.Level(pinA))
	require.Zero(f.Level(pinB))
}

func TestWorkerToggleCancelledWhileWaiting(t *testing.T) {
	var (
		assert      = assert.New(t)
		fake        = gpio.NewFake()
		registry    = semaphore.NewRegistry()
		ctx, cancel = context.WithCancel(context.Background())
	)

	a, _ := fake.RequestOutput(pinA)
	b, _ := fake.RequestOutput(pinB)
	btn, _ := fake.RequestInput(pinButton)
	printer, err := console.NewRegistryPrinter(new(bytes.Buffer), registry, PrintSemaphore, 0)
	require.NoError(t, err)
	w := NewWorker(config.Pair{LedA: pinA, LedB: pinB, Button: pinButton, Interval: time.Millisecond}, a, b, btn, printer)

	// another holder keeps the console busy
	require.True(t, registry.Reserve(PrintSemaphore))
	fake.Set(pinButton, 1)
	cancel()

	assert.False(w.step(ctx))
	assert.Equal(StateIdle, w.Status.Get())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "blinking", StateBlinking.String())
}
