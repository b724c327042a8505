package linking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"relay-cli/internal/logging"
)

// ErrNoInstance means no running client accepted the connection.
var ErrNoInstance = errors.New("linking: no running instance")

type wsAck struct {
	Type      string `json:"type"`
	OK        bool   `json:"ok"`
	Delivered int    `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers may not drive this endpoint; CLI clients send no Origin.
		return strings.TrimSpace(r.Header.Get("Origin")) == ""
	},
}

// handleWS reads `{"url": ...}` text frames and acknowledges each one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.For("linking").Debug("websocket closed", "err", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		ack := wsAck{Type: "ack"}
		var ev Event
		if jerr := json.Unmarshal(data, &ev); jerr != nil {
			ack.Error = "invalid json"
		} else if ev.URL = strings.TrimSpace(ev.URL); ev.URL == "" {
			ack.Error = "missing url"
		} else {
			ack.OK = true
			ack.Delivered = s.hub.Publish(ev)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(ack); err != nil {
			return
		}
	}
}

// Send hands rawURL to the instance listening on addr. It returns an error
// wrapping ErrNoInstance when nothing is listening.
func Send(ctx context.Context, addr, rawURL string) (delivered int, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return 0, errors.New("linking: empty url")
	}
	u := url.URL{Scheme: "ws", Host: strings.TrimSpace(addr), Path: "/v1/url"}

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w at %s: %v", ErrNoInstance, addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(Event{URL: rawURL}); err != nil {
		return 0, err
	}
	_ = conn.SetReadDeadline(deadline)
	var ack wsAck
	if err := conn.ReadJSON(&ack); err != nil {
		return 0, err
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if !ack.OK {
		return 0, fmt.Errorf("linking: rejected: %s", ack.Error)
	}
	return ack.Delivered, nil
}
