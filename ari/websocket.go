package ari

import (
	"context"
	"io"

	"nhooyr.io/websocket"
)

// MessageConn is one open connection to the event socket. Receive blocks
// until the next message arrives and returns io.EOF when the peer ends the
// stream.
type MessageConn interface {
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

type websocketConn struct {
	conn *websocket.Conn
}

func dialWebsocket(ctx context.Context, url string) (MessageConn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &websocketConn{conn: conn}, nil
}

func (ws *websocketConn) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := ws.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

func (ws *websocketConn) Close() error {
	return ws.conn.Close(websocket.StatusNormalClosure, "")
}
