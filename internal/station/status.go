package station

import (
	"sync"

	"github.com/figadore/go-blinker/internal/log"
)

type State int

const (
	StateIdle State = iota
	StateBlinking
)

func (s State) String() string {
	if s == StateBlinking {
		return "blinking"
	}
	return "idle"
}

// Status is a pair's blink state. Only its worker changes it, but it may be
// read from any goroutine.
type Status struct {
	sync.Mutex
	state State
}

func (s *Status) Get() State {
	s.Lock()
	defer s.Unlock()
	return s.state
}

func (s *Status) Toggle() State {
	s.Lock()
	if s.state == StateBlinking {
		s.state = StateIdle
	} else {
		s.state = StateBlinking
	}
	state := s.state
	s.Unlock()
	log.Debugln("Toggled status: ", state)
	return state
}
