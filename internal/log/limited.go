package log

import (
	"fmt"
	"sync"
	"time"

	"github.com/jar-o/limlog"
)

var (
	limited  = limlog.NewLimlog()
	limitsMu sync.Mutex
	limits   = make(map[string]struct{})
)

// limiter registers a limiter for key on first use: a burst of 6, then one
// line per second
func limiter(key string) string {
	limitsMu.Lock()
	defer limitsMu.Unlock()
	if _, ok := limits[key]; !ok {
		limited.SetLimiter(key, 1, 1*time.Second, 6)
		limits[key] = struct{}{}
	}
	return key
}

// Limitedf logs an error under key, dropping lines once key exceeds its rate.
// Use it for failures that repeat on every poll, like a line that stopped
// answering.
func Limitedf(key string, format string, args ...interface{}) {
	limited.ErrorL(limiter(key), fmt.Sprintf(format, args...))
}
