package kstor

import "sync"

// Event names emitted by the store. A Set additionally emits an event named
// after the exact key that changed.
const (
	EventLoaded    = "loaded"    // payload: new document, previous cache
	EventPersisted = "persisted" // payload: new document, previous cache
	EventChanged   = "changed"   // payload: new value, old value
	EventDeleted   = "deleted"   // payload: nil, old value
	EventCleared   = "cleared"   // payload: empty document, nil
)

// Listener receives an event payload, new value first.
type Listener func(newValue, oldValue any)

// emitter is the in-process event dispatch collaborator: a name-to-listeners
// registry with synchronous delivery. Listeners are invoked after the store
// operation that produced the event has released its lock, so they may call
// back into the store.
type emitter struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// On registers a listener for an event name.
func (e *emitter) On(event string, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[event] = append(e.listeners[event], fn)
}

// Off removes every listener registered for an event name.
func (e *emitter) Off(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, event)
}

// hasListener reports whether any listener is registered under the name.
func (e *emitter) hasListener(event string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event]) > 0
}

// eventRec is an event recorded during a locked store operation and
// dispatched once the lock is released.
type eventRec struct {
	name     string
	newValue any
	oldValue any
}

// dispatch delivers recorded events in order.
func (e *emitter) dispatch(events []eventRec) {
	for _, ev := range events {
		e.mu.RLock()
		fns := append([]Listener(nil), e.listeners[ev.name]...)
		e.mu.RUnlock()
		for _, fn := range fns {
			fn(ev.newValue, ev.oldValue)
		}
	}
}
