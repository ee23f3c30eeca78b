package gpio

import (
	"fmt"
	"sync"
)

// Write records one SetValue call on a Fake output.
type Write struct {
	Offset int
	Value  int
}

// Fake is an in-memory backend. It lets the blinker run on a machine
// without GPIO hardware and lets tests drive buttons and inspect LEDs.
type Fake struct {
	mu       sync.Mutex
	levels   map[int]int
	lines    map[int]bool
	writes   []Write
	failRead map[int]error
}

func NewFake() *Fake {
	return &Fake{
		levels:   make(map[int]int),
		lines:    make(map[int]bool),
		failRead: make(map[int]error),
	}
}

func (f *Fake) request(offset int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lines[offset] {
		return fmt.Errorf("%w: %d", ErrLineBusy, offset)
	}
	f.lines[offset] = true
	return nil
}

func (f *Fake) RequestOutput(offset int) (Output, error) {
	if err := f.request(offset); err != nil {
		return nil, err
	}
	f.Set(offset, 0)
	return &fakeLine{fake: f, offset: offset}, nil
}

func (f *Fake) RequestInput(offset int) (Input, error) {
	if err := f.request(offset); err != nil {
		return nil, err
	}
	return &fakeLine{fake: f, offset: offset}, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.lines = make(map[int]bool)
	f.mu.Unlock()
	return nil
}

// Set drives the level seen on offset, as a button press or an external
// pull would. It is not recorded in Writes.
func (f *Fake) Set(offset, value int) {
	f.mu.Lock()
	f.levels[offset] = value
	f.mu.Unlock()
}

// Level returns the current level of offset.
func (f *Fake) Level(offset int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[offset]
}

// Writes returns every SetValue made through the outputs, oldest first.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// FailRead makes reads of offset return err until called again with nil.
func (f *Fake) FailRead(offset int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failRead, offset)
		return
	}
	f.failRead[offset] = err
}

type fakeLine struct {
	fake   *Fake
	offset int
}

func (l *fakeLine) Value() (int, error) {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()
	if err := l.fake.failRead[l.offset]; err != nil {
		return 0, err
	}
	return l.fake.levels[l.offset], nil
}

func (l *fakeLine) SetValue(value int) error {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()
	l.fake.levels[l.offset] = value
	l.fake.writes = append(l.fake.writes, Write{Offset: l.offset, Value: value})
	return nil
}

func (l *fakeLine) Offset() int {
	return l.offset
}
