package ari

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// eventWebsocketPath is appended to the base path to reach the event socket.
// The Swagger 1.1 description does not declare this path, so the client
// assumes the fixed location ARI serves it at.
const eventWebsocketPath = "/events/eventWebsocket"

// ClientOptions configure a Client. URL is required; everything else has a
// usable default.
type ClientOptions struct {
	// URL is the base URL of the ARI application root, e.g.
	// "http://localhost:8088/ari".
	URL string

	// Username and Password authenticate requests and the event socket.
	Username string
	Password string

	Logger LoggerOptions

	// HTTPClient overrides the HTTP client used by the default request
	// transport and the default description provider.
	HTTPClient *http.Client

	// Provider overrides how the API description is loaded.
	Provider APIProvider

	// Transport overrides the request transport.
	Transport RequestTransport

	// Dial overrides how the event socket is opened.
	Dial func(ctx context.Context, url string) (MessageConn, error)
}

func (opts *ClientOptions) logger() logger {
	return opts.Logger.logger()
}

func (opts *ClientOptions) httpClient() *http.Client {
	if opts.HTTPClient != nil {
		return opts.HTTPClient
	}
	return http.DefaultClient
}

// websocketURL derives the event socket URL for the given application
// identifier: the base scheme upgraded to its secure-socket equivalent when
// the base is secure, the fixed events path, and the application name and
// credentials in the query.
func (opts *ClientOptions) websocketURL(apps string) (string, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return "", newError(ErrCodeBadRequest, err)
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + eventWebsocketPath
	q := u.Query()
	q.Set("app", apps)
	if opts.Username != "" {
		q.Set("api_key", opts.Username+":"+opts.Password)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
