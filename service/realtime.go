package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"

	"github.com/kbukum/gopocket/client"
	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/httpclient/sse"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/model"
)

const (
	realtimePath = "api/realtime"

	// connectEvent is the first event of every stream and carries the
	// client id subscriptions are registered under.
	connectEvent = "PB_CONNECT"
)

// RealtimeEvent is one message delivered to a subscription.
type RealtimeEvent struct {
	Topic string
	// Action is "create", "update" or "delete" for record topics.
	Action string
	// Record is set for record topics.
	Record *model.Record
	// Data is the raw event payload.
	Data json.RawMessage
}

// RealtimeHandler receives events for a topic. Handlers run one at a time on
// a dispatch goroutine, in stream order. A handler may call Subscribe,
// Unsubscribe or Close; a slow handler holds back later events. Close does
// not wait for a running handler to return.
type RealtimeHandler func(RealtimeEvent)

type listener struct {
	id uint64
	fn RealtimeHandler
}

// Realtime multiplexes topic subscriptions over one SSE stream. The stream
// is opened by the first Subscribe and closed when the last subscription
// goes away. A stream that drops is not reopened until the next Subscribe.
type Realtime struct {
	client *client.Client
	log    *logger.Logger

	// ops serializes Subscribe, Unsubscribe and Close.
	ops sync.Mutex

	mu        sync.RWMutex
	listeners map[string][]listener
	nextID    uint64
	clientID  string
	stream    *sse.Reader
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewRealtime returns a disconnected realtime service.
func NewRealtime(c *client.Client) *Realtime {
	return &Realtime{
		client:    c,
		log:       c.Logger().WithComponent("realtime"),
		listeners: make(map[string][]listener),
	}
}

// ClientID returns the id of the open stream, or "" when disconnected.
func (r *Realtime) ClientID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clientID
}

// Connected reports whether a stream is open.
func (r *Realtime) Connected() bool {
	return r.ClientID() != ""
}

// Topics returns the subscribed topics in sorted order.
func (r *Realtime) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topicsLocked()
}

func (r *Realtime) topicsLocked() []string {
	topics := make([]string, 0, len(r.listeners))
	for topic := range r.listeners {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Subscribe registers fn for topic, a collection name ("posts"), a single
// record ("posts/RECORD_ID") or "*" for a whole collection's records. The
// returned function removes only this handler.
func (r *Realtime) Subscribe(ctx context.Context, topic string, fn RealtimeHandler) (func(context.Context) error, error) {
	if topic == "" || fn == nil {
		return nil, pberrors.Opaque(errors.New("service: realtime subscription needs a topic and a handler"))
	}

	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	_, existing := r.listeners[topic]
	r.listeners[topic] = append(r.listeners[topic], listener{id: id, fn: fn})
	r.mu.Unlock()

	var err error
	if !r.Connected() {
		err = r.connect(ctx)
		if err == nil {
			err = r.submit(ctx)
		}
	} else if !existing {
		err = r.submit(ctx)
	}
	if err != nil {
		r.removeListener(topic, id)
		if len(r.Topics()) == 0 {
			r.disconnect()
		}
		return nil, err
	}

	return func(ctx context.Context) error {
		r.ops.Lock()
		defer r.ops.Unlock()
		if !r.removeListener(topic, id) {
			return nil
		}
		return r.sync(ctx)
	}, nil
}

// Unsubscribe drops every handler of the given topics, or of all topics
// when none are given.
func (r *Realtime) Unsubscribe(ctx context.Context, topics ...string) error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	if len(topics) == 0 {
		r.listeners = make(map[string][]listener)
	}
	for _, topic := range topics {
		delete(r.listeners, topic)
	}
	r.mu.Unlock()

	return r.sync(ctx)
}

// Close drops every subscription and closes the stream without notifying
// the server.
func (r *Realtime) Close() error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	r.listeners = make(map[string][]listener)
	r.mu.Unlock()

	r.disconnect()
	return nil
}

// removeListener reports whether the topic lost its last handler.
func (r *Realtime) removeListener(topic string, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.listeners[topic]
	for i, l := range current {
		if l.id == id {
			current = append(current[:i:i], current[i+1:]...)
			break
		}
	}
	if len(current) == 0 {
		_, had := r.listeners[topic]
		delete(r.listeners, topic)
		return had
	}
	r.listeners[topic] = current
	return false
}

// sync pushes the current topic set, or disconnects when it is empty.
func (r *Realtime) sync(ctx context.Context) error {
	if len(r.Topics()) == 0 {
		r.disconnect()
		return nil
	}
	if !r.Connected() {
		return nil
	}
	return r.submit(ctx)
}

// connect opens the stream and waits for the connect event. ctx bounds the
// wait; the stream itself outlives it.
func (r *Realtime) connect(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	req, err := r.client.NewRequest(http.MethodGet, realtimePath)
	if err != nil {
		cancel()
		return err
	}
	req.SetHeader("Accept", "text/event-stream")
	req.SetHeader("Cache-Control", "no-cache")

	resp, err := r.client.Send(streamCtx, req)
	if err != nil {
		cancel()
		return err
	}

	stream := sse.NewReader(resp.Body)
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	clientID, err := readConnect(stream)
	if !stop() && ctx.Err() != nil {
		cancel()
		_ = stream.Close()
		return pberrors.Transport("realtime.connect", ctx.Err())
	}
	if err != nil {
		cancel()
		_ = stream.Close()
		return err
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.clientID = clientID
	r.stream = stream
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	r.log.WithContext(ctx).Debug("realtime connected", logger.Fields("client_id", clientID))
	go r.read(streamCtx, stream, done)
	return nil
}

func readConnect(stream *sse.Reader) (string, error) {
	event, err := stream.Next()
	if err != nil {
		return "", pberrors.Transport("realtime.connect", err)
	}
	if event.Event != connectEvent {
		return "", pberrors.Transport("realtime.connect", errConnectExpected)
	}
	var payload struct {
		ClientID string `json:"clientId"`
	}
	if err := event.Decode(&payload); err != nil {
		return "", pberrors.Serialization("realtime.connect", err)
	}
	if payload.ClientID == "" {
		return "", pberrors.Serialization("realtime.connect", errNoClientID)
	}
	return payload.ClientID, nil
}

// submit registers the current topic set under the stream's client id.
func (r *Realtime) submit(ctx context.Context) error {
	r.mu.RLock()
	body := map[string]any{
		"clientId":      r.clientID,
		"subscriptions": r.topicsLocked(),
	}
	r.mu.RUnlock()

	return exec(ctx, r.client, http.MethodPost, realtimePath, nil, body)
}

func (r *Realtime) disconnect() {
	r.mu.Lock()
	stream, cancel, done := r.stream, r.cancel, r.done
	r.stream, r.cancel, r.done = nil, nil, nil
	r.clientID = ""
	r.mu.Unlock()

	if stream == nil {
		return
	}
	cancel()
	_ = stream.Close()
	<-done
}

// read hands events to dispatchLoop until the stream ends or ctx is
// cancelled. done is closed once the stream is no longer read, which may be
// before the last handler returns.
func (r *Realtime) read(ctx context.Context, stream *sse.Reader, done chan struct{}) {
	events := make(chan *sse.Event)
	go r.dispatchLoop(events)
	defer close(done)
	defer close(events)

	for {
		event, err := stream.Next()
		if err != nil {
			r.mu.Lock()
			current := r.stream == stream
			cancel := r.cancel
			if current {
				r.clientID = ""
				r.stream, r.cancel, r.done = nil, nil, nil
			}
			r.mu.Unlock()

			if current {
				if errors.Is(err, io.EOF) {
					r.log.Warn("realtime stream closed by server")
				} else {
					r.log.Warn("realtime stream failed", logger.Fields("error", err.Error()))
				}
				cancel()
				_ = stream.Close()
			}
			return
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Realtime) dispatchLoop(events <-chan *sse.Event) {
	for event := range events {
		r.dispatch(event)
	}
}

func (r *Realtime) dispatch(event *sse.Event) {
	if event.Event == "" || event.Event == connectEvent {
		return
	}

	r.mu.RLock()
	handlers := append([]listener(nil), r.listeners[event.Event]...)
	r.mu.RUnlock()
	if len(handlers) == 0 {
		return
	}

	msg := RealtimeEvent{Topic: event.Event, Data: json.RawMessage(event.Data)}
	var payload struct {
		Action string        `json:"action"`
		Record *model.Record `json:"record"`
	}
	if err := event.Decode(&payload); err == nil {
		msg.Action = payload.Action
		msg.Record = payload.Record
	}

	for _, h := range handlers {
		h.fn(msg)
	}
}
