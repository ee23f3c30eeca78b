//go:build linux

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warthog618/gpiod"

	"github.com/figadore/go-blinker/internal/gpio"
)

func TestEdgeOf(t *testing.T) {
	assert.Equal(t, gpio.RisingEdge, edgeOf(gpiod.LineEvent{Type: gpiod.LineEventRisingEdge}))
	assert.Equal(t, gpio.FallingEdge, edgeOf(gpiod.LineEvent{Type: gpiod.LineEventFallingEdge}))
}

func TestReporter(t *testing.T) {
	var (
		assert = assert.New(t)
		out    = new(bytes.Buffer)
		report = reporter(out, "gpiochip0")
	)

	report(gpiod.LineEvent{Offset: 27, Type: gpiod.LineEventRisingEdge, Timestamp: 1500 * time.Millisecond})
	report(gpiod.LineEvent{Offset: 25, Type: gpiod.LineEventFallingEdge, Timestamp: 2 * time.Second})

	assert.Equal("gpiochip0:27 rising edge at 1.5s\n"+
		"gpiochip0:25 falling edge at 2s\n", out.String())
}
