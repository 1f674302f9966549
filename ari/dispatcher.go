package ari

import (
	"reflect"
	"runtime/debug"
	"sync"
)

// EventHandler receives raw event records from the dispatcher.
type EventHandler interface {
	HandleEvent(e Record)
}

// EventHandlerFunc adapts a function to an EventHandler.
//
// Handler identity for de-duplication is the function's code pointer, so two
// EventHandlerFunc values built from the same function literal compare
// equal; use a dedicated handler type when separate registrations of the
// same literal are needed.
type EventHandlerFunc func(Record)

func (f EventHandlerFunc) HandleEvent(e Record) { f(e) }

// PanicHandler is called when a listener panics during dispatch. The default
// logs with the panicking stack and continues; a listener failure never
// prevents delivery to subsequent listeners and never aborts the receive
// loop.
type PanicHandler func(eventType string, recovered interface{})

type registration struct {
	eventType string
	handler   EventHandler
}

// eventDispatcher routes decoded event messages to the listeners registered
// for the message's declared type. Listeners run in registration order, from
// a snapshot taken under the lock, so a callback unsubscribing during
// dispatch does not affect delivery for the in-flight message.
type eventDispatcher struct {
	mtx       sync.Mutex
	listeners map[string][]*registration
	onPanic   PanicHandler
	log       logger
}

func newEventDispatcher(log logger) *eventDispatcher {
	d := &eventDispatcher{
		listeners: make(map[string][]*registration),
		log:       log,
	}
	d.onPanic = func(eventType string, recovered interface{}) {
		log.Errorf("listener for %q panicked: %v\n%s", eventType, recovered, debug.Stack())
	}
	return d
}

func (d *eventDispatcher) setPanicHandler(h PanicHandler) {
	if h == nil {
		return
	}
	d.mtx.Lock()
	d.onPanic = h
	d.mtx.Unlock()
}

// on registers handler for eventType. A previous registration of the same
// handler under the same type is removed first, so the newest registration
// wins and a handler is never invoked twice for one message.
func (d *eventDispatcher) on(eventType string, handler EventHandler) *Subscription {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	regs := d.listeners[eventType]
	for i, reg := range regs {
		if sameHandler(reg.handler, handler) {
			regs = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	reg := &registration{eventType: eventType, handler: handler}
	d.listeners[eventType] = append(regs, reg)
	return &Subscription{dispatcher: d, reg: reg}
}

func (d *eventDispatcher) off(reg *registration) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	regs := d.listeners[reg.eventType]
	for i, r := range regs {
		if r == reg {
			d.listeners[reg.eventType] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// dispatch delivers one message to every listener registered for its type.
// Messages without a type field are logged and dropped.
func (d *eventDispatcher) dispatch(e Record) {
	typ, err := stringField(e, "type")
	if err != nil {
		d.log.Errorf("invalid event, no type: %v", e)
		return
	}

	d.mtx.Lock()
	snapshot := make([]*registration, len(d.listeners[typ]))
	copy(snapshot, d.listeners[typ])
	onPanic := d.onPanic
	d.mtx.Unlock()

	for _, reg := range snapshot {
		deliver(typ, reg.handler, e, onPanic)
	}
}

func deliver(eventType string, h EventHandler, e Record, onPanic PanicHandler) {
	defer func() {
		if r := recover(); r != nil {
			onPanic(eventType, r)
		}
	}()
	h.HandleEvent(e)
}

// sameHandler reports whether two handlers are the same registration target:
// pointer identity for pointer handlers, code-pointer identity for function
// handlers, value equality for other comparable handlers.
func sameHandler(a, b EventHandler) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Func || vb.Kind() == reflect.Func {
		return va.Kind() == vb.Kind() && va.Pointer() == vb.Pointer()
	}
	if va.Type() != vb.Type() || !va.Type().Comparable() {
		return false
	}
	return a == b
}

// Subscription is the capability to undo one listener registration.
type Subscription struct {
	dispatcher *eventDispatcher
	reg        *registration
}

// Close removes the registration. It is idempotent: removing a registration
// that is already gone is a no-op.
func (s *Subscription) Close() {
	s.dispatcher.off(s.reg)
}
