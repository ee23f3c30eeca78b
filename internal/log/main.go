package log

import (
	"io"
	l "log"
	"sync/atomic"
)

var debugEnabled atomic.Bool

func EnableDebug() {
	debugEnabled.Store(true)
}

func DebugEnabled() bool {
	return debugEnabled.Load()
}

// SetOutput redirects every log line, limited ones excepted
func SetOutput(w io.Writer) {
	l.SetOutput(w)
}

func Printf(format string, args ...interface{}) {
	l.Printf(format, args...)
}

func Println(args ...interface{}) {
	l.Println(args...)
}

func Debugf(format string, args ...interface{}) {
	if debugEnabled.Load() {
		l.Printf(format, args...)
	}
}

func Debugln(args ...interface{}) {
	if debugEnabled.Load() {
		l.Println(args...)
	}
}
