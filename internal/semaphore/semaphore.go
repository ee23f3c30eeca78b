// Package semaphore provides a fixed table of binary semaphores addressed
// by small integer IDs.
//
// Every slot in a Registry exists for the lifetime of the Registry. A slot
// is either free or held, and at most one caller holds a slot at a time.
// Reservation blocks until the slot is free; release frees it and wakes at
// most one blocked caller.
package semaphore

import (
	"context"
	"errors"
	"fmt"
)

const (
	// MinID is the lowest valid semaphore ID.
	MinID = 0
	// MaxID is the highest valid semaphore ID.
	MaxID = 31
	// Size is the number of slots in a Registry.
	Size = MaxID - MinID + 1
)

var (
	// ErrInvalidID is returned when an ID falls outside [MinID, MaxID].
	ErrInvalidID = errors.New("invalid semaphore id")
)

// Registry is a table of Size binary semaphores. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	slots [Size]chan struct{}
}

// NewRegistry returns a Registry with every slot free.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.slots {
		r.slots[i] = make(chan struct{}, 1)
	}
	return r
}

func valid(id int) bool {
	return id >= MinID && id <= MaxID
}

func (r *Registry) slot(id int) (chan struct{}, error) {
	if !valid(id) {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidID, id, MinID, MaxID)
	}
	return r.slots[id-MinID], nil
}

// Reserve blocks until the semaphore with the given id is free and marks it
// held. It returns false without blocking if id is out of range.
func (r *Registry) Reserve(id int) bool {
	s, err := r.slot(id)
	if err != nil {
		return false
	}
	s <- struct{}{}
	return true
}

// ReserveCtx is Reserve with cancellation. It returns ErrInvalidID for an
// out of range id and ctx.Err() if the context ends before the semaphore is
// acquired.
func (r *Registry) ReserveCtx(ctx context.Context, id int) error {
	s, err := r.slot(id)
	if err != nil {
		return err
	}
	// prefer an already cancelled context over a free slot
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryReserve marks the semaphore held if it is free and reports whether it
// did so.
func (r *Registry) TryReserve(id int) bool {
	s, err := r.slot(id)
	if err != nil {
		return false
	}
	select {
	case s <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the semaphore with the given id, waking at most one caller
// blocked in Reserve. Releasing a free semaphore is a no-op. It returns
// false if id is out of range.
func (r *Registry) Release(id int) bool {
	s, err := r.slot(id)
	if err != nil {
		return false
	}
	select {
	case <-s:
	default:
	}
	return true
}

// Held reports whether the semaphore with the given id is currently held.
// Out of range ids are never held.
func (r *Registry) Held(id int) bool {
	s, err := r.slot(id)
	if err != nil {
		return false
	}
	return len(s) == 1
}

// Semaphore returns a handle bound to a single id, so holders do not carry
// the id around. The id is validated once here.
func (r *Registry) Semaphore(id int) (*Binary, error) {
	if _, err := r.slot(id); err != nil {
		return nil, err
	}
	return &Binary{registry: r, id: id}, nil
}

// Binary is a validated handle to one semaphore in a Registry.
type Binary struct {
	registry *Registry
	id       int
}

// ID returns the registry slot this handle refers to.
func (b *Binary) ID() int {
	return b.id
}

// Acquire blocks until the semaphore is held by the caller or ctx ends.
func (b *Binary) Acquire(ctx context.Context) error {
	return b.registry.ReserveCtx(ctx, b.id)
}

// Release frees the semaphore.
func (b *Binary) Release() {
	b.registry.Release(b.id)
}
