// Package event provides a minimal typed publish/subscribe emitter.
// Handlers are fire-and-forget: emitters never wait on acknowledgement
// and subscribers detach through the handle returned at registration.
package event

import "sync"

// Subscription detaches its handler from the emitter. Safe to call
// more than once.
type Subscription struct {
	once   sync.Once
	detach func()
}

// Unsubscribe removes the handler. Events emitted afterwards are not
// delivered to it.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.detach)
}

// Emitter dispatches values of type T to subscribed handlers.
// The zero value is ready to use.
type Emitter[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
}

// Subscribe registers fn and returns a handle to remove it.
func (e *Emitter[T]) Subscribe(fn func(T)) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[int]func(T))
	}
	id := e.nextID
	e.nextID++
	e.handlers[id] = fn

	return &Subscription{detach: func() {
		e.mu.Lock()
		delete(e.handlers, id)
		e.mu.Unlock()
	}}
}

// Emit delivers v to every current subscriber. Handlers run on the
// calling goroutine, outside the emitter lock so they may subscribe or
// unsubscribe reentrantly.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	fns := make([]func(T), 0, len(e.handlers))
	for _, fn := range e.handlers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
