package ari

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

func transportTestServer(t *testing.T, status int, body string) (*httpTransport, *recordedRequest) {
	t.Helper()
	var rec recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec = recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   string(data),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	transport := newHTTPTransport(&ClientOptions{
		URL:      server.URL + "/ari",
		Username: "test",
		Password: "secret",
	}, LoggerOptions{Logger: nopLogger{}}.logger())
	return transport, &rec
}

func TestTransportBuildsRequest(t *testing.T) {
	transport, rec := transportTestServer(t, 200, `{"id": "c1", "state": "Up"}`)

	op := testAPI().Resources["channels"].Operations["getChannelVar"]
	res, err := transport.Do(context.Background(), op, Params{
		"channelId": "c1",
		"variable":  "CALLERID",
	})
	require.NoError(t, err)

	assert.Equal(t, "GET", rec.method)
	assert.Equal(t, "/ari/channels/c1/variable", rec.path)
	assert.Equal(t, "variable=CALLERID", rec.query)

	user, pass, ok := parseBasicAuth(rec.header.Get("Authorization"))
	require.True(t, ok)
	assert.Equal(t, "test", user)
	assert.Equal(t, "secret", pass)
	assert.NotEmpty(t, rec.header.Get("X-Request-Id"))
	assert.True(t, strings.HasPrefix(rec.header.Get("User-Agent"), "ari-go/"))

	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, map[string]interface{}{"id": "c1", "state": "Up"}, res.Body)
}

func parseBasicAuth(header string) (string, string, bool) {
	r := &http.Request{Header: http.Header{"Authorization": {header}}}
	return r.BasicAuth()
}

func TestTransportMissingRequiredParameter(t *testing.T) {
	transport, rec := transportTestServer(t, 200, `{}`)

	op := testAPI().Resources["channels"].Operations["get"]
	_, err := transport.Do(context.Background(), op, nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeMissingParameter, ErrorCode(err))
	assert.Empty(t, rec.method, "no request is made for a rejected parameter set")
}

func TestTransportOptionalParameterOmitted(t *testing.T) {
	transport, rec := transportTestServer(t, 200, `{"id": "c1"}`)

	op := testAPI().Resources["channels"].Operations["originate"]
	_, err := transport.Do(context.Background(), op, Params{"endpoint": "PJSIP/alice"})
	require.NoError(t, err)

	assert.Equal(t, "endpoint=PJSIP%2Falice", rec.query)
}

func TestTransportNoContent(t *testing.T) {
	transport, _ := transportTestServer(t, 204, "")

	op := testAPI().Resources["channels"].Operations["answer"]
	res, err := transport.Do(context.Background(), op, Params{"channelId": "c1"})
	require.NoError(t, err)

	assert.Equal(t, 204, res.StatusCode)
	assert.Nil(t, res.Body)
}

func TestTransportHTTPError(t *testing.T) {
	transport, _ := transportTestServer(t, 404, `{"message": "Channel not found"}`)

	op := testAPI().Resources["channels"].Operations["get"]
	_, err := transport.Do(context.Background(), op, Params{"channelId": "nope"})
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 404, e.StatusCode)
	assert.ErrorContains(t, err, "Channel not found")
}

func TestTransportPrimitiveBody(t *testing.T) {
	transport, _ := transportTestServer(t, 200, `{"value": "en_US"}`)

	op := testAPI().Resources["asterisk"].Operations["getGlobalVar"]
	res, err := transport.Do(context.Background(), op, Params{"variable": "LANGUAGE"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"value": "en_US"}, res.Body)
}
