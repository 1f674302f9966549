package ari

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// testAPI builds a trimmed ARI description covering the shapes the client
// has to handle: lists and single references, void operations, primitive
// and unmodeled payloads, and event models with one or several object
// fields.
func testAPI() *API {
	channels := &Resource{Name: "channels", Operations: map[string]*Operation{
		"list": {
			Nickname: "list", Method: "GET", Path: "/channels",
			Responses: map[string]Shape{"200": ParseShape("List[Channel]")},
		},
		"get": {
			Nickname: "get", Method: "GET", Path: "/channels/{channelId}",
			Params: []Param{
				{Name: "channelId", Location: paramPath, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("Channel")},
		},
		"originate": {
			Nickname: "originate", Method: "POST", Path: "/channels",
			Params: []Param{
				{Name: "endpoint", Location: paramQuery, DataType: "string", Required: true},
				{Name: "app", Location: paramQuery, DataType: "string"},
			},
			Responses: map[string]Shape{"200": ParseShape("Channel")},
		},
		"answer": {
			Nickname: "answer", Method: "POST", Path: "/channels/{channelId}/answer",
			Params: []Param{
				{Name: "channelId", Location: paramPath, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("void")},
		},
		"getChannelVar": {
			Nickname: "getChannelVar", Method: "GET", Path: "/channels/{channelId}/variable",
			Params: []Param{
				{Name: "channelId", Location: paramPath, DataType: "string", Required: true},
				{Name: "variable", Location: paramQuery, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("Variable")},
		},
	}}
	bridges := &Resource{Name: "bridges", Operations: map[string]*Operation{
		"list": {
			Nickname: "list", Method: "GET", Path: "/bridges",
			Responses: map[string]Shape{"200": ParseShape("List[Bridge]")},
		},
		"get": {
			Nickname: "get", Method: "GET", Path: "/bridges/{bridgeId}",
			Params: []Param{
				{Name: "bridgeId", Location: paramPath, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("Bridge")},
		},
	}}
	endpoints := &Resource{Name: "endpoints", Operations: map[string]*Operation{
		"get": {
			Nickname: "get", Method: "GET", Path: "/endpoints/{tech}/{resource}",
			Params: []Param{
				{Name: "tech", Location: paramPath, DataType: "string", Required: true},
				{Name: "resource", Location: paramPath, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("Endpoint")},
		},
	}}
	mailboxes := &Resource{Name: "mailboxes", Operations: map[string]*Operation{
		"get": {
			Nickname: "get", Method: "GET", Path: "/mailboxes/{mailboxName}",
			Params: []Param{
				{Name: "mailboxName", Location: paramPath, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("Mailbox")},
		},
	}}
	asterisk := &Resource{Name: "asterisk", Operations: map[string]*Operation{
		"getInfo": {
			Nickname: "getInfo", Method: "GET", Path: "/asterisk/info",
			Responses: map[string]Shape{"200": ParseShape("AsteriskInfo")},
		},
		"getGlobalVar": {
			Nickname: "getGlobalVar", Method: "GET", Path: "/asterisk/variable",
			Params: []Param{
				{Name: "variable", Location: paramQuery, DataType: "string", Required: true},
			},
			Responses: map[string]Shape{"200": ParseShape("string")},
		},
	}}

	models := map[string]*Model{
		"Channel": {ID: "Channel", Properties: map[string]Property{
			"id": {Type: "string"}, "name": {Type: "string"}, "state": {Type: "string"},
		}},
		"Bridge": {ID: "Bridge", Properties: map[string]Property{
			"id": {Type: "string"}, "technology": {Type: "string"},
		}},
		"Endpoint": {ID: "Endpoint", Properties: map[string]Property{
			"technology": {Type: "string"}, "resource": {Type: "string"}, "state": {Type: "string"},
		}},
		"Mailbox": {ID: "Mailbox", Properties: map[string]Property{
			"name": {Type: "string"}, "old_messages": {Type: "int"}, "new_messages": {Type: "int"},
		}},
		"StasisStart": {ID: "StasisStart", Properties: map[string]Property{
			"type": {Type: "string"}, "application": {Type: "string"},
			"args": {Type: "List[string]"}, "channel": {Type: "Channel"},
		}},
		"StasisEnd": {ID: "StasisEnd", Properties: map[string]Property{
			"type": {Type: "string"}, "application": {Type: "string"},
			"channel": {Type: "Channel"},
		}},
		"ChannelStateChange": {ID: "ChannelStateChange", Properties: map[string]Property{
			"type": {Type: "string"}, "channel": {Type: "Channel"},
		}},
		"BridgeMerged": {ID: "BridgeMerged", Properties: map[string]Property{
			"type":        {Type: "string"},
			"bridge":      {Type: "Bridge"},
			"bridge_from": {Ref: "#/definitions/Bridge"},
		}},
		"EndpointStateChange": {ID: "EndpointStateChange", Properties: map[string]Property{
			"type": {Type: "string"}, "endpoint": {Type: "Endpoint"},
		}},
	}

	return &API{
		Version: "1.9.0",
		Resources: map[string]*Resource{
			"channels":  channels,
			"bridges":   bridges,
			"endpoints": endpoints,
			"mailboxes": mailboxes,
			"asterisk":  asterisk,
		},
		Models: models,
	}
}

type fakeProvider struct {
	api *API
}

func (p fakeProvider) Load(ctx context.Context, opts *ClientOptions) (*API, error) {
	return p.api, nil
}

type fakeCall struct {
	op     *Operation
	params Params
}

// fakeTransport scripts responses per operation nickname and records every
// call it receives.
type fakeTransport struct {
	mtx     sync.Mutex
	calls   []fakeCall
	results map[string]*Result
	errs    map[string]error
	closed  bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		results: make(map[string]*Result),
		errs:    make(map[string]error),
	}
}

func (t *fakeTransport) Do(ctx context.Context, op *Operation, params Params) (*Result, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.calls = append(t.calls, fakeCall{op: op, params: params})
	if err := t.errs[op.Nickname]; err != nil {
		return nil, err
	}
	if res := t.results[op.Nickname]; res != nil {
		return res, nil
	}
	return &Result{StatusCode: 204}, nil
}

func (t *fakeTransport) Close() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) lastCall() fakeCall {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.calls[len(t.calls)-1]
}

// scriptedConn serves a fixed sequence of messages, then end-of-stream.
type scriptedConn struct {
	mtx      sync.Mutex
	messages [][]byte
	closed   bool
}

func newScriptedConn(messages ...string) *scriptedConn {
	c := &scriptedConn{}
	for _, m := range messages {
		c.messages = append(c.messages, []byte(m))
	}
	return c
}

func (c *scriptedConn) Receive(ctx context.Context) ([]byte, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.closed {
		return nil, net.ErrClosed
	}
	if len(c.messages) == 0 {
		return nil, io.EOF
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	return msg, nil
}

func (c *scriptedConn) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.closed {
		return errors.New("already closed")
	}
	c.closed = true
	return nil
}

type nopLogger struct{}

func (nopLogger) Printf(level LogLevel, format string, v ...interface{}) {}

func testOptions(transport RequestTransport) *ClientOptions {
	return &ClientOptions{
		URL:       "http://ari.local:8088/ari",
		Username:  "test",
		Password:  "secret",
		Provider:  fakeProvider{api: testAPI()},
		Transport: transport,
		Logger:    LoggerOptions{Logger: nopLogger{}},
	}
}

func newTestClient(t *testing.T, transport RequestTransport) *Client {
	t.Helper()
	if transport == nil {
		transport = newFakeTransport()
	}
	client, err := NewClient(context.Background(), testOptions(transport))
	require.NoError(t, err)
	return client
}

// eventRecorder collects raw events.
type eventRecorder struct {
	mtx    sync.Mutex
	events []Record
}

func (r *eventRecorder) HandleEvent(e Record) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) received() []Record {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]Record(nil), r.events...)
}

// objectEventRecorder collects object events.
type objectEventRecorder struct {
	mtx    sync.Mutex
	events []ObjectEvent
}

func (r *objectEventRecorder) HandleObjectEvent(e ObjectEvent) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.events = append(r.events, e)
}

func (r *objectEventRecorder) received() []ObjectEvent {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]ObjectEvent(nil), r.events...)
}
