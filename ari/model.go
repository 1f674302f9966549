package ari

import (
	"context"
	"fmt"
	"sort"
)

// Record is the raw representation of one resource instance or one event, as
// received from the transport. The client never mutates a Record after
// receiving it.
type Record map[string]interface{}

// Params are operation parameters keyed by declared parameter name.
type Params map[string]interface{}

// kindSpec ties a domain-object kind to its repository, identity strategy
// and event capability.
type kindSpec struct {
	name   string
	repo   string
	ids    idStrategy
	events bool
}

// kindRegistry lists every kind the promotion engine can construct. A
// response or event field referencing a kind absent here passes through
// promotion as raw data.
var kindRegistry = map[string]kindSpec{
	"Channel":         {name: "Channel", repo: "channels", ids: fieldID{param: "channelId"}, events: true},
	"Bridge":          {name: "Bridge", repo: "bridges", ids: fieldID{param: "bridgeId"}, events: true},
	"Playback":        {name: "Playback", repo: "playbacks", ids: fieldID{param: "playbackId"}, events: true},
	"LiveRecording":   {name: "LiveRecording", repo: "recordings", ids: fieldID{param: "recordingName", field: "name"}, events: true},
	"StoredRecording": {name: "StoredRecording", repo: "recordings", ids: fieldID{param: "recordingName", field: "name"}, events: true},
	"Endpoint":        {name: "Endpoint", repo: "endpoints", ids: endpointID{}, events: true},
	"DeviceState":     {name: "DeviceState", repo: "deviceStates", ids: fieldID{param: "deviceName", field: "name"}, events: true},
	"Sound":           {name: "Sound", repo: "sounds", ids: fieldID{param: "soundId"}, events: true},
	"Mailbox":         {name: "Mailbox", repo: "mailboxes", ids: fieldID{param: "mailboxName", field: "name"}, events: false},
}

func kindNames() []string {
	names := make([]string, 0, len(kindRegistry))
	for name := range kindRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Repository exposes the collection-level operations of one resource, with
// results promoted to domain objects.
type Repository struct {
	client   *Client
	name     string
	resource *Resource
}

func (r *Repository) Name() string { return r.name }

func (r *Repository) String() string { return fmt.Sprintf("Repository(%s)", r.name) }

// Call invokes the named collection operation and promotes the result.
// Unknown operation names fail with an ErrCodeNoSuchOperation error;
// parameter validation is the transport's concern.
func (r *Repository) Call(ctx context.Context, name string, params Params) (interface{}, error) {
	op, ok := r.resource.Operations[name]
	if !ok {
		return nil, newErrorf(ErrCodeNoSuchOperation, "repository %q has no operation %q", r.name, name)
	}
	res, err := r.client.transport.Do(ctx, op, params)
	if err != nil {
		return nil, err
	}
	return r.client.promote(res, op), nil
}

// Object is one first-class domain object: a raw record bound to its kind,
// its identity and the session that produced it. Operations that change
// server-side state return a fresh Object promoted from the response; the
// record held here is never mutated.
type Object struct {
	client *Client
	kind   kindSpec
	repo   *Repository
	id     string
	record Record
}

func (c *Client) newObject(kindName string, rec Record) (*Object, error) {
	kind, ok := kindRegistry[kindName]
	if !ok {
		return nil, newErrorf(ErrCodeSchemaMismatch, "unknown kind %q", kindName)
	}
	return c.newObjectOf(kind, rec)
}

func (c *Client) newObjectOf(kind kindSpec, rec Record) (*Object, error) {
	id, err := kind.ids.id(rec)
	if err != nil {
		return nil, err
	}
	return &Object{
		client: c,
		kind:   kind,
		repo:   c.repos[kind.repo],
		id:     id,
		record: rec,
	}, nil
}

// Kind returns the object's kind name, e.g. "Channel".
func (o *Object) Kind() string { return o.kind.name }

// ID returns the stable identity derived from the record at construction.
func (o *Object) ID() string { return o.id }

// Record returns the raw record this object was promoted from.
func (o *Object) Record() Record { return o.record }

func (o *Object) String() string { return fmt.Sprintf("%s(%s)", o.kind.name, o.id) }

// Call invokes an instance-scoped operation of the object's kind. The
// object's identity parameters are merged over the caller's, so the call
// always targets this instance.
func (o *Object) Call(ctx context.Context, name string, params Params) (interface{}, error) {
	if o.repo == nil {
		return nil, newErrorf(ErrCodeNoSuchOperation, "%s has no repository", o.kind.name)
	}
	op, ok := o.repo.resource.Operations[name]
	if !ok {
		return nil, newErrorf(ErrCodeNoSuchOperation, "%s has no operation %q", o.kind.name, name)
	}
	ids, err := o.kind.ids.params(o.record)
	if err != nil {
		return nil, err
	}
	merged := make(Params, len(params)+len(ids))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range ids {
		merged[k] = v
	}
	res, err := o.client.transport.Do(ctx, op, merged)
	if err != nil {
		return nil, err
	}
	return o.client.promote(res, op), nil
}

// OnEvent registers h for events of eventType that reference this object,
// filtered by identity. Kinds without event models fail with an
// ErrCodeNoEvents error.
func (o *Object) OnEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	if !o.kind.events {
		return nil, newErrorf(ErrCodeNoEvents, "no events available for kind %s", o.kind.name)
	}
	return o.client.OnObjectEvent(eventType, o.kind.name, &objectFilter{id: o.id, next: h})
}
