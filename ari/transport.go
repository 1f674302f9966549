package ari

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/arilabs/ari-go/ari/internal/ariutil"
)

// Result is the normalized outcome of a transport call: the HTTP status and
// the deserialized body. Transport-level failures are returned as errors
// instead.
type Result struct {
	StatusCode int
	Body       interface{}
}

// RequestTransport performs declared operations against the REST API. It
// validates parameters against the operation declaration; a rejected
// parameter set fails with an *Error before any request is made.
type RequestTransport interface {
	Do(ctx context.Context, op *Operation, params Params) (*Result, error)
	Close() error
}

const requestIDHeader = "X-Request-Id"

// httpTransport is the default RequestTransport, backed by net/http with
// basic auth. Each request carries a generated correlation id for log
// matching against the server side.
type httpTransport struct {
	base     string
	username string
	password string
	client   *http.Client
	log      logger
}

func newHTTPTransport(opts *ClientOptions, log logger) *httpTransport {
	return &httpTransport{
		base:     strings.TrimSuffix(opts.URL, "/"),
		username: opts.Username,
		password: opts.Password,
		client:   opts.httpClient(),
		log:      log,
	}
}

func (t *httpTransport) Do(ctx context.Context, op *Operation, params Params) (*Result, error) {
	path := op.Path
	query := url.Values{}
	var body interface{}
	for _, p := range op.Params {
		v, ok := params[p.Name]
		if !ok {
			if p.Required {
				return nil, newErrorf(ErrCodeMissingParameter,
					"%s: required parameter %q missing", op.Nickname, p.Name)
			}
			continue
		}
		switch p.Location {
		case paramPath:
			path = strings.Replace(path, "{"+p.Name+"}", url.PathEscape(fmt.Sprint(v)), 1)
		case paramBody:
			body = v
		default:
			query.Set(p.Name, fmt.Sprint(v))
		}
	}

	var rd io.Reader
	if body != nil {
		data, err := ariutil.Marshal(body)
		if err != nil {
			return nil, newError(ErrCodeBadRequest, err)
		}
		rd = bytes.NewReader(data)
	}
	u := t.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, op.Method, u, rd)
	if err != nil {
		return nil, newError(ErrCodeInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", agentIdentifier())
	req.Header.Set(requestIDHeader, uuid.NewString())
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	t.log.Debugf("%s %s", op.Method, u)
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, newError(ErrCodeInternal, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, httpError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return &Result{StatusCode: resp.StatusCode}, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrCodeInternal, err)
	}
	res := &Result{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := ariutil.Unmarshal(data, &res.Body); err != nil {
			return nil, newError(ErrCodeInternal, err)
		}
	}
	return res, nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
