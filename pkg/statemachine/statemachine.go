package statemachine

import (
	"sync"
)

// StateFn is a state in Rob Pike's state-function pattern: the function is
// the state, and running it returns the next state (or nil to terminate).
type StateFn[T any] func(*T) StateFn[T]

// StateMachine drives an entity through StateFn transitions. It is safe for
// concurrent use; the entity itself is expected to be guarded by its owner.
type StateMachine[T any] struct {
	entity  *T
	stateFn StateFn[T]
	mu      sync.RWMutex
}

// New creates a state machine for entity starting at initial.
func New[T any](entity *T, initial StateFn[T]) *StateMachine[T] {
	return &StateMachine[T]{
		entity:  entity,
		stateFn: initial,
	}
}

// Dispatch sets stateFn as the current state, runs it once, and stores the
// state it returns. A nil stateFn terminates the machine.
func (sm *StateMachine[T]) Dispatch(stateFn StateFn[T]) {
	sm.mu.Lock()
	sm.stateFn = stateFn
	sm.mu.Unlock()

	if stateFn == nil {
		return
	}

	next := stateFn(sm.entity)

	sm.mu.Lock()
	sm.stateFn = next
	sm.mu.Unlock()
}

// Current returns the current state function.
func (sm *StateMachine[T]) Current() StateFn[T] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stateFn
}

// SetState replaces the current state without running it.
func (sm *StateMachine[T]) SetState(stateFn StateFn[T]) {
	sm.mu.Lock()
	sm.stateFn = stateFn
	sm.mu.Unlock()
}
