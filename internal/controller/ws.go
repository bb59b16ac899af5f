package controller

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one notification from the controller's websocket stream.
type Event struct {
	Stream string    `json:"stream"`
	Data   string    `json:"data"`
	Time   time.Time `json:"time"`
}

// DialAndSubscribe opens the controller notification websocket and
// streams events until ctx is cancelled or the peer closes.
func DialAndSubscribe(ctx context.Context, wsURL string) (<-chan Event, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = "/websocket"
	}

	d := websocket.Dialer{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: false,
	}
	conn, resp, err := d.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	sub := map[string]any{"action": "subscribe", "streams": []string{"*"}}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return nil, err
	}

	// unblock the reader promptly on cancellation; ReadMessage only
	// returns once the connection errors
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	out := make(chan Event, 32)
	go func() {
		defer close(out)
		defer close(done)
		defer func() {
			deadline := time.Now().Add(1500 * time.Millisecond)
			_ = conn.SetWriteDeadline(deadline)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.SetReadDeadline(deadline)
			_, _, _ = conn.ReadMessage()
			_ = conn.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_, msg, err := conn.ReadMessage()
			if err != nil {
				// normal closure and going-away are clean exits;
				// anything else also ends the stream
				return
			}
			if ev, ok := parseEvent(msg); ok {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func parseEvent(b []byte) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return Event{}, false
	}
	if ev.Stream == "" {
		return Event{}, false
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	return ev, true
}

func (c *httpClient) SubscribeEvents(ctx context.Context) (<-chan Event, error) {
	return DialAndSubscribe(ctx, c.wsURL)
}
