package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebug(t *testing.T) {
	var (
		assert = assert.New(t)
		out    bytes.Buffer
	)
	SetOutput(&out)
	defer SetOutput(os.Stderr)

	Debugf("hidden %d", 1)
	Debugln("hidden")
	assert.Empty(out.String())

	Println("shown")
	assert.Contains(out.String(), "shown")

	EnableDebug()
	assert.True(DebugEnabled())
	Debugf("visible %d", 2)
	assert.Contains(out.String(), "visible 2")
}

func TestLimiterRegisteredOnce(t *testing.T) {
	assert.Equal(t, "button-27", limiter("button-27"))
	assert.Equal(t, "button-27", limiter("button-27"))

	limitsMu.Lock()
	defer limitsMu.Unlock()
	assert.Len(t, limits, 1)
}
