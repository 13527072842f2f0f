package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gopocket/component"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// RecordedRequest is one request as the mock server received it.
type RecordedRequest struct {
	Method string
	Path   string
	// RawQuery is the query string exactly as sent, so pair order can be
	// asserted.
	RawQuery string
	Header   http.Header
	Body     []byte
}

// DecodeBody unmarshals the recorded body into v.
func (r RecordedRequest) DecodeBody(v any) error {
	return json.Unmarshal(r.Body, v)
}

// BodyMap decodes the recorded body as a JSON object, or returns nil.
func (r RecordedRequest) BodyMap() map[string]any {
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil
	}
	return m
}

// MockServer is a fake backend built on gin and httptest.
type MockServer struct {
	mu       sync.RWMutex
	engine   *gin.Engine
	ts       *httptest.Server
	requests []RecordedRequest
}

var (
	_ component.Component = (*MockServer)(nil)
	_ TestComponent       = (*MockServer)(nil)
)

// NewMockServer returns a server with no routes. Register routes before or
// after Start.
func NewMockServer() *MockServer {
	m := &MockServer{}
	m.engine = m.newEngine()
	return m
}

func (m *MockServer) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(m.record)
	return engine
}

// record captures the request and restores its body for the handlers.
func (m *MockServer) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Header:   c.Request.Header.Clone(),
		Body:     body,
	})
	m.mu.Unlock()

	c.Next()
}

// Engine returns the gin engine for registering custom routes.
func (m *MockServer) Engine() *gin.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

// Handle registers handlers for method and path.
func (m *MockServer) Handle(method, path string, handlers ...gin.HandlerFunc) {
	m.Engine().Handle(method, path, handlers...)
}

// JSON registers a route that always answers status with body as JSON.
func (m *MockServer) JSON(method, path string, status int, body any) {
	m.Handle(method, path, func(c *gin.Context) {
		c.JSON(status, body)
	})
}

// Error registers a route that answers with the backend's error body.
func (m *MockServer) Error(method, path string, status int, message string) {
	m.JSON(method, path, status, gin.H{"code": status, "message": message, "data": gin.H{}})
}

// NoContent registers a route that answers 204 with an empty body.
func (m *MockServer) NoContent(method, path string) {
	m.Handle(method, path, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// URL returns the server root, or "" before Start.
func (m *MockServer) URL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ts == nil {
		return ""
	}
	return m.ts.URL
}

// Requests returns every request received so far, oldest first.
func (m *MockServer) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request.
func (m *MockServer) LastRequest() (RecordedRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// RequestCount returns how many requests were received.
func (m *MockServer) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func (m *MockServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	m.Engine().ServeHTTP(w, r)
}

// --- component.Component ---

func (m *MockServer) Name() string { return "pocketbase-mock" }

func (m *MockServer) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ts != nil {
		return errors.New("mock server already started")
	}
	m.ts = httptest.NewServer(http.HandlerFunc(m.serveHTTP))
	return nil
}

func (m *MockServer) Stop(_ context.Context) error {
	m.mu.Lock()
	ts := m.ts
	m.ts = nil
	m.mu.Unlock()

	if ts != nil {
		ts.Close()
	}
	return nil
}

func (m *MockServer) Health(_ context.Context) component.Health {
	if m.URL() == "" {
		return component.Health{Name: m.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: m.Name(), Status: component.StatusHealthy}
}

// --- TestComponent ---

// Reset drops every route and recorded request. The listener is kept, so
// URL stays valid.
func (m *MockServer) Reset(_ context.Context) error {
	engine := m.newEngine()
	m.mu.Lock()
	m.engine = engine
	m.requests = nil
	m.mu.Unlock()
	return nil
}

// Snapshot captures the recorded requests. Routes are not part of it.
func (m *MockServer) Snapshot(_ context.Context) (any, error) {
	return m.Requests(), nil
}

// Restore replaces the recorded requests with a snapshot.
func (m *MockServer) Restore(_ context.Context, snapshot any) error {
	requests, ok := snapshot.([]RecordedRequest)
	if !ok {
		return errors.New("mock server: snapshot is not a request log")
	}
	m.mu.Lock()
	m.requests = append([]RecordedRequest(nil), requests...)
	m.mu.Unlock()
	return nil
}
