package ari

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/arilabs/ari-go/ari/internal/ariutil"
)

// APIProvider loads the API description a client is built from. Failure to
// fetch or parse the description is fatal to client construction.
type APIProvider interface {
	Load(ctx context.Context, opts *ClientOptions) (*API, error)
}

// Client is an ARI session: it owns the resource repositories, the event
// model index, the event dispatcher and the message receive loop.
//
// A Client is driven from a single goroutine: Run blocks the caller for the
// lifetime of one event socket connection and dispatches every listener for
// a message before reading the next one. Close may be called from any
// context, including from inside a listener.
type Client struct {
	opts      *ClientOptions
	api       *API
	transport RequestTransport
	dial      func(ctx context.Context, url string) (MessageConn, error)
	repos     map[string]*Repository
	index     eventModelIndex
	events    *eventDispatcher
	log       logger

	connMtx sync.Mutex
	conns   map[MessageConn]struct{}
	closed  bool
}

// NewClient loads the API description from the configured base URL and
// builds a session from it.
func NewClient(ctx context.Context, opts *ClientOptions) (*Client, error) {
	if opts == nil || opts.URL == "" {
		return nil, newErrorf(ErrCodeBadRequest, "missing base URL")
	}
	log := opts.logger()

	provider := opts.Provider
	if provider == nil {
		provider = swaggerProvider{}
	}
	api, err := provider.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	transport := opts.Transport
	if transport == nil {
		transport = newHTTPTransport(opts, log)
	}
	dial := opts.Dial
	if dial == nil {
		dial = dialWebsocket
	}

	c := &Client{
		opts:      opts,
		api:       api,
		transport: transport,
		dial:      dial,
		index:     newEventModelIndex(api, kindNames()),
		events:    newEventDispatcher(log),
		conns:     make(map[MessageConn]struct{}),
		log:       log,
	}
	c.repos = make(map[string]*Repository, len(api.Resources))
	for name, res := range api.Resources {
		c.repos[name] = &Repository{client: c, name: name, resource: res}
	}
	return c, nil
}

// GetRepo returns the named resource repository, or nil when the API
// description does not declare it.
func (c *Client) GetRepo(name string) *Repository { return c.repos[name] }

func (c *Client) Channels() *Repository     { return c.repos["channels"] }
func (c *Client) Bridges() *Repository      { return c.repos["bridges"] }
func (c *Client) Playbacks() *Repository    { return c.repos["playbacks"] }
func (c *Client) Recordings() *Repository   { return c.repos["recordings"] }
func (c *Client) Endpoints() *Repository    { return c.repos["endpoints"] }
func (c *Client) DeviceStates() *Repository { return c.repos["deviceStates"] }
func (c *Client) Sounds() *Repository       { return c.repos["sounds"] }
func (c *Client) Mailboxes() *Repository    { return c.repos["mailboxes"] }
func (c *Client) Applications() *Repository { return c.repos["applications"] }

// OnEvent registers h for all events of the given type and returns the
// capability to undo the registration.
func (c *Client) OnEvent(eventType string, h EventHandler) *Subscription {
	return c.events.on(eventType, h)
}

// SetPanicHandler replaces the handler invoked when a listener panics during
// dispatch.
func (c *Client) SetPanicHandler(h PanicHandler) {
	c.events.setPanicHandler(h)
}

// OnObjectEvent registers h for events of eventType, with every event field
// declared as the given kind promoted to a domain object. An event model
// with no field of that kind is a configuration error, reported here rather
// than silently at dispatch time.
func (c *Client) OnObjectEvent(eventType, kind string, h ObjectEventHandler) (*Subscription, error) {
	x, err := newObjectExtractor(c, eventType, kind, h)
	if err != nil {
		return nil, err
	}
	return c.events.on(eventType, x), nil
}

// OnChannelEvent registers h for Channel related events.
func (c *Client) OnChannelEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "Channel", h)
}

// OnBridgeEvent registers h for Bridge related events.
func (c *Client) OnBridgeEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "Bridge", h)
}

// OnPlaybackEvent registers h for Playback related events.
func (c *Client) OnPlaybackEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "Playback", h)
}

// OnLiveRecordingEvent registers h for LiveRecording related events.
func (c *Client) OnLiveRecordingEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "LiveRecording", h)
}

// OnStoredRecordingEvent registers h for StoredRecording related events.
func (c *Client) OnStoredRecordingEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "StoredRecording", h)
}

// OnEndpointEvent registers h for Endpoint related events.
func (c *Client) OnEndpointEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "Endpoint", h)
}

// OnDeviceStateEvent registers h for DeviceState related events.
func (c *Client) OnDeviceStateEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "DeviceState", h)
}

// OnSoundEvent registers h for Sound related events.
func (c *Client) OnSoundEvent(eventType string, h ObjectEventHandler) (*Subscription, error) {
	return c.OnObjectEvent(eventType, "Sound", h)
}

// Run connects the event socket for the given applications and dispatches
// messages until the stream ends or the client is closed. It blocks the
// calling goroutine; messages are dispatched strictly in arrival order.
func (c *Client) Run(ctx context.Context, apps ...string) error {
	u, err := c.opts.websocketURL(strings.Join(apps, ","))
	if err != nil {
		return err
	}
	c.log.Infof("connecting event socket %s", u)
	conn, err := c.dial(ctx, u)
	if err != nil {
		return newError(ErrCodeInternal, err)
	}
	if !c.track(conn) {
		conn.Close()
		return newErrorf(ErrCodeInternal, "client is closed")
	}
	defer c.untrack(conn)
	return c.drain(ctx, conn)
}

func (c *Client) drain(ctx context.Context, conn MessageConn) error {
	for {
		data, err := conn.Receive(ctx)
		if err != nil {
			if err == io.EOF || c.isClosed() {
				return nil
			}
			return newError(ErrCodeInternal, err)
		}
		var msg map[string]interface{}
		if err := ariutil.Unmarshal(data, &msg); err != nil {
			c.log.Errorf("invalid event %q: %v", data, err)
			continue
		}
		c.events.dispatch(Record(msg))
	}
}

func (c *Client) track(conn MessageConn) bool {
	c.connMtx.Lock()
	defer c.connMtx.Unlock()
	if c.closed {
		return false
	}
	c.conns[conn] = struct{}{}
	return true
}

// untrack closes conn and drops it from the open set; it runs on every loop
// exit so a failure never leaks a tracked connection.
func (c *Client) untrack(conn MessageConn) {
	if err := conn.Close(); err != nil {
		c.log.Warnf("error closing event socket: %v", err)
	}
	c.connMtx.Lock()
	delete(c.conns, conn)
	c.connMtx.Unlock()
}

func (c *Client) isClosed() bool {
	c.connMtx.Lock()
	defer c.connMtx.Unlock()
	return c.closed
}

// Close closes every open event socket and releases the request transport.
// Each socket is closed independently, best-effort. Close is safe to call
// from inside a listener: the in-progress dispatch finishes and the receive
// loop observes end-of-stream on its next read.
func (c *Client) Close() error {
	c.connMtx.Lock()
	c.closed = true
	conns := make([]MessageConn, 0, len(c.conns))
	for conn := range c.conns {
		conns = append(conns, conn)
	}
	c.connMtx.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			c.log.Warnf("error closing event socket: %v", err)
		}
	}
	return c.transport.Close()
}
