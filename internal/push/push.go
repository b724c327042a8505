// Package push adapts queued notification payloads to navigation actions.
package push

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"relay-cli/internal/deeplink"
	"relay-cli/internal/logging"
	"relay-cli/internal/state"
	"relay-cli/internal/store"
)

// Payload is an opaque notification body. Only Handler looks inside it.
type Payload json.RawMessage

// Source yields the notification the client was launched from, or nil.
type Source interface {
	Initialize(ctx context.Context) (Payload, error)
}

// Opener handles the launch notification.
type Opener interface {
	OnNotification(Payload)
}

// QueueSource takes the newest pending notification from the local store.
type QueueSource struct {
	Store store.Store
}

func (q QueueSource) Initialize(ctx context.Context) (Payload, error) {
	n, err := q.Store.TakeNotification(ctx)
	if err != nil || n == nil {
		return nil, err
	}
	return Payload(n.Payload), nil
}

// StaticSource returns a fixed payload (tests, `relay --notification`).
type StaticSource struct {
	Payload Payload
	Err     error
}

func (s StaticSource) Initialize(context.Context) (Payload, error) {
	return s.Payload, s.Err
}

// Message is what a notification points at.
type Message struct {
	RoomID    string
	Host      string
	RoomType  string
	MessageID string
}

// Parse extracts the message reference from p. The "ejson" field may hold the
// object itself or a JSON-encoded string of it.
func Parse(p Payload) (Message, bool) {
	if len(p) == 0 || !gjson.ValidBytes(p) {
		return Message{}, false
	}
	ejson := gjson.GetBytes(p, "ejson")
	if ejson.Type == gjson.String {
		if !gjson.Valid(ejson.Str) {
			return Message{}, false
		}
		ejson = gjson.Parse(ejson.Str)
	}
	if !ejson.IsObject() {
		return Message{}, false
	}
	m := Message{
		RoomID:    strings.TrimSpace(ejson.Get("rid").String()),
		Host:      strings.TrimRight(strings.TrimSpace(ejson.Get("host").String()), "/"),
		RoomType:  strings.TrimSpace(ejson.Get("type").String()),
		MessageID: strings.TrimSpace(ejson.Get("messageId").String()),
	}
	if m.RoomID == "" {
		return Message{}, false
	}
	return m, true
}

// Route converts the message reference to a room deep link.
func (m Message) Route() *deeplink.Route {
	params := map[string]string{"rid": m.RoomID}
	if m.Host != "" {
		params["host"] = m.Host
	}
	if m.RoomType != "" {
		params["type"] = m.RoomType
	}
	if m.MessageID != "" {
		params["messageId"] = m.MessageID
	}
	return &deeplink.Route{Kind: deeplink.KindRoom, Params: params}
}

// Handler opens notifications by dispatching a room deep link. Payloads that do
// not reference a room fall back to a normal app init.
type Handler struct {
	Dispatcher state.Dispatcher
}

func (h Handler) OnNotification(p Payload) {
	m, ok := Parse(p)
	if !ok {
		logging.For("push").Warn("unusable notification payload", "bytes", len(p))
		h.Dispatcher.Dispatch(state.AppInit{})
		return
	}
	logging.For("push").Info("open notification", "rid", m.RoomID, "host", m.Host)
	h.Dispatcher.Dispatch(state.DeepLinkingOpen{Route: m.Route()})
}

// NewPayload builds a notification payload in the shape Parse reads.
func NewPayload(m Message) (Payload, error) {
	raw := []byte(`{}`)
	var err error
	set := func(path, v string) {
		if err != nil || v == "" {
			return
		}
		raw, err = sjson.SetBytes(raw, path, v)
	}
	set("ejson.rid", m.RoomID)
	set("ejson.host", m.Host)
	set("ejson.type", m.RoomType)
	set("ejson.messageId", m.MessageID)
	if err != nil {
		return nil, err
	}
	return Payload(raw), nil
}
