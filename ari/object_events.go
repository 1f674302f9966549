package ari

// ObjectEvent is one event delivered to an object-event listener, together
// with the domain objects extracted from its payload.
//
// When the event schema declares exactly one field of the subscribed kind,
// Object carries the promoted value and Fields is nil. When it declares
// several, Fields maps field name to promoted object. Both are nil when none
// of the declared fields are present in this particular event.
type ObjectEvent struct {
	Type   string
	Event  Record
	Object *Object
	Fields map[string]*Object
}

// ObjectEventHandler receives events with their extracted domain objects.
type ObjectEventHandler interface {
	HandleObjectEvent(e ObjectEvent)
}

// ObjectEventFunc adapts a function to an ObjectEventHandler.
type ObjectEventFunc func(ObjectEvent)

func (f ObjectEventFunc) HandleObjectEvent(e ObjectEvent) { f(e) }

// objectExtractor promotes the fields of one event type that carry a given
// kind and forwards the result. It implements EventHandler so it registers
// with the dispatcher directly.
type objectExtractor struct {
	client    *Client
	eventType string
	kind      string
	fields    []string
	next      ObjectEventHandler
}

// newObjectExtractor resolves the declared fields at registration time, so a
// subscription that can never match is reported immediately instead of
// silently swallowing events later.
func newObjectExtractor(c *Client, eventType, kind string, next ObjectEventHandler) (*objectExtractor, error) {
	if !c.index.knows(eventType) {
		return nil, newErrorf(ErrCodeSchemaMismatch, "cannot find event model %q", eventType)
	}
	fields := c.index.fields(eventType, kind)
	if len(fields) == 0 {
		return nil, newErrorf(ErrCodeSchemaMismatch,
			"event model %q has no fields of type %s", eventType, kind)
	}
	return &objectExtractor{
		client:    c,
		eventType: eventType,
		kind:      kind,
		fields:    fields,
		next:      next,
	}, nil
}

func (x *objectExtractor) HandleEvent(e Record) {
	var fields map[string]*Object
	for _, name := range x.fields {
		v, ok := e[name]
		if !ok || v == nil {
			continue
		}
		rec, ok := v.(map[string]interface{})
		if !ok {
			x.client.log.Errorf("event %s field %q is not a record: %T", x.eventType, name, v)
			continue
		}
		obj, err := x.client.newObject(x.kind, Record(rec))
		if err != nil {
			x.client.log.Errorf("cannot promote %s field %q to %s: %v", x.eventType, name, x.kind, err)
			continue
		}
		if fields == nil {
			fields = make(map[string]*Object, len(x.fields))
		}
		fields[name] = obj
	}

	ev := ObjectEvent{Type: x.eventType, Event: e}
	if len(x.fields) == 1 {
		// Single declared field: unwrap to the bare object.
		for _, obj := range fields {
			ev.Object = obj
		}
	} else {
		ev.Fields = fields
	}
	x.next.HandleObjectEvent(ev)
}

// objectFilter forwards object events whose extracted objects include the
// target identity. It holds the filter state explicitly so the lifetime of a
// per-object subscription is visible in one place.
type objectFilter struct {
	id   string
	next ObjectEventHandler
}

func (f *objectFilter) HandleObjectEvent(e ObjectEvent) {
	if e.Object != nil {
		if e.Object.ID() == f.id {
			f.next.HandleObjectEvent(e)
		}
		return
	}
	for _, obj := range e.Fields {
		if obj.ID() == f.id {
			f.next.HandleObjectEvent(e)
			return
		}
	}
}
