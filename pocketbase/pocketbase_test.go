package pocketbase

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/kbukum/gopocket/component"
	"github.com/kbukum/gopocket/config"
	"github.com/kbukum/gopocket/crud"
	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/service"
	"github.com/kbukum/gopocket/store"
	"github.com/kbukum/gopocket/testutil"
	"github.com/kbukum/gopocket/transport"
)

func newServer(t *testing.T) *testutil.MockServer {
	t.Helper()
	srv := testutil.NewMockServer()
	testutil.T(t).Setup(srv)
	return srv
}

func newPocketBase(t *testing.T, cfg config.Client, opts ...Option) *PocketBase {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	pb, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = pb.Close(context.Background()) })
	return pb
}

func adminAuth(srv *testutil.MockServer, token string) {
	srv.JSON(http.MethodPost, "/api/admins/auth-with-password", http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{"id": "A1", "email": "x@example.com", "avatar": 0},
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Client
	}{
		{"missing base url", config.Client{}},
		{"unknown storage", config.Client{BaseURL: "http://localhost:8090", Auth: config.AuthConfig{Storage: "etcd"}}},
		{"sql without dsn", config.Client{BaseURL: "http://localhost:8090", Auth: config.AuthConfig{Storage: config.StorageSQL}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg, WithLogger(logger.Nop())); err == nil {
				t.Error("expected config error, got nil")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	srv := newServer(t)
	pb := newPocketBase(t, config.Client{BaseURL: srv.URL()})

	cfg := pb.Config()
	if cfg.Locale != "en-US" {
		t.Errorf("expected locale en-US, got %q", cfg.Locale)
	}
	if cfg.Auth.Storage != config.StorageMemory {
		t.Errorf("expected memory storage, got %q", cfg.Auth.Storage)
	}
	if _, ok := pb.AuthState().Storage().(*store.Memory); !ok {
		t.Errorf("expected *store.Memory, got %T", pb.AuthState().Storage())
	}
	if pb.Realtime() != pb.Realtime() {
		t.Error("expected a single shared realtime instance")
	}
	if pb.Records("posts").Collection() != "posts" {
		t.Errorf("expected posts collection, got %q", pb.Records("posts").Collection())
	}
}

func TestPocketBase_AuthThenList(t *testing.T) {
	srv := newServer(t)
	adminAuth(srv, "T")
	srv.JSON(http.MethodGet, "/api/collections/posts/records", http.StatusOK, gin.H{
		"page": 1, "perPage": 30, "totalItems": 1, "totalPages": 1,
		"items": []gin.H{{"id": "p1", "collectionName": "posts", "title": "hello"}},
	})

	pb := newPocketBase(t, config.Client{BaseURL: srv.URL(), Locale: "de-DE", UserAgent: "tests/1.0"})
	ctx := context.Background()

	if _, err := pb.Admins().AuthWithPassword(ctx, service.AuthWithPasswordRequest{Identity: "x@example.com", Password: "secret"}); err != nil {
		t.Fatalf("AuthWithPassword failed: %v", err)
	}
	list, err := pb.Records("posts").GetList(ctx, crud.ListRequest{})
	if err != nil {
		t.Fatalf("GetList failed: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != "p1" {
		t.Errorf("unexpected items: %+v", list.Items)
	}

	req, _ := srv.LastRequest()
	if got := req.Header.Get("Authorization"); got != "T" {
		t.Errorf("expected Authorization T, got %q", got)
	}
	if got := req.Header.Get("Accept-Language"); got != "de-DE" {
		t.Errorf("expected Accept-Language de-DE, got %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != "tests/1.0" {
		t.Errorf("expected User-Agent tests/1.0, got %q", got)
	}
	if req.Header.Get(transport.HeaderRequestID) == "" {
		t.Error("expected a request id header")
	}
}

func TestPocketBase_RedisStorage(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	srv := newServer(t)
	adminAuth(srv, "T")

	cfg := config.Client{BaseURL: srv.URL()}
	cfg.Auth.Storage = config.StorageRedis
	cfg.Auth.Redis.Addr = mini.Addr()
	pb := newPocketBase(t, cfg)

	ctx := context.Background()
	if err := pb.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if _, err := pb.Admins().AuthWithPassword(ctx, service.AuthWithPasswordRequest{Identity: "x@example.com", Password: "secret"}); err != nil {
		t.Fatalf("AuthWithPassword failed: %v", err)
	}

	got, err := mini.Get("pocketbase:pb_auth")
	if err != nil {
		t.Fatalf("expected token key in redis: %v", err)
	}
	if got != "T" {
		t.Errorf("expected stored token T, got %q", got)
	}
	if !mini.Exists("pocketbase:pb_user_or_admin") {
		t.Error("expected identity key in redis")
	}
}

func TestPocketBase_EncryptedFileStorage(t *testing.T) {
	srv := newServer(t)
	adminAuth(srv, "secret-token")

	path := filepath.Join(t.TempDir(), "auth.json")
	cfg := config.Client{BaseURL: srv.URL()}
	cfg.Auth.Storage = config.StorageFile
	cfg.Auth.FilePath = path
	cfg.Auth.EncryptionKey = "passphrase"

	ctx := context.Background()
	pb := newPocketBase(t, cfg)
	if _, err := pb.Admins().AuthWithPassword(ctx, service.AuthWithPasswordRequest{Identity: "x@example.com", Password: "secret"}); err != nil {
		t.Fatalf("AuthWithPassword failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected auth file: %v", err)
	}
	if strings.Contains(string(raw), "secret-token") {
		t.Error("expected the token to be encrypted on disk")
	}

	reopened := newPocketBase(t, cfg)
	token, ok, err := reopened.AuthState().Token(ctx)
	if err != nil || !ok || token != "secret-token" {
		t.Errorf("expected persisted token, got %q ok=%v err=%v", token, ok, err)
	}
}

func TestPocketBase_WithStorageNotClosed(t *testing.T) {
	srv := newServer(t)
	mem := store.NewMemory()
	pb := newPocketBase(t, config.Client{BaseURL: srv.URL()}, WithStorage(mem))

	if pb.AuthState().Storage() != store.Storage(mem) {
		t.Error("expected the provided storage to be used")
	}
	if err := pb.Close(context.Background()); err != nil {
		t.Errorf("expected clean close, got %v", err)
	}
	if err := pb.Close(context.Background()); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}
}

func TestPocketBase_RetryLayer(t *testing.T) {
	srv := newServer(t)
	var calls atomic.Int32
	srv.Handle(http.MethodGet, "/api/health", func(c *gin.Context) {
		if calls.Add(1) == 1 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": 503, "message": "starting", "data": gin.H{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "API is healthy."})
	})

	cfg := config.Client{BaseURL: srv.URL()}
	cfg.Retry = config.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	pb := newPocketBase(t, cfg)

	status, err := pb.Health().Check(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if status.Code != 200 {
		t.Errorf("expected code 200, got %d", status.Code)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestPocketBase_NoRetryByDefault(t *testing.T) {
	srv := newServer(t)
	srv.Error(http.MethodGet, "/api/health", http.StatusServiceUnavailable, "down")

	pb := newPocketBase(t, config.Client{BaseURL: srv.URL()})
	_, err := pb.Health().Check(context.Background(), nil)
	if !pberrors.Retryable(err) {
		t.Errorf("expected retryable APIError, got %v", err)
	}
	if srv.RequestCount() != 1 {
		t.Errorf("expected exactly one attempt, got %d", srv.RequestCount())
	}
}

func TestPocketBase_ExtraLayersAreOutermost(t *testing.T) {
	srv := newServer(t)
	srv.JSON(http.MethodGet, "/api/health", http.StatusOK, gin.H{"code": 200, "message": "ok"})

	var seenRequestID string
	probe := func(inner transport.Service) transport.Service {
		return transport.ServiceFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			if r, ok := transport.AsHTTP(req); ok {
				seenRequestID = r.Header.Get(transport.HeaderRequestID)
			}
			return inner.Call(ctx, req)
		})
	}

	pb := newPocketBase(t, config.Client{BaseURL: srv.URL()}, WithLayers(probe))
	if _, err := pb.Health().Check(context.Background(), nil); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if seenRequestID != "" {
		t.Errorf("expected the extra layer to run before request ids are assigned, got %q", seenRequestID)
	}
	if srv.RequestCount() != 1 {
		t.Errorf("expected 1 request, got %d", srv.RequestCount())
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	srv := newServer(t)
	srv.JSON(http.MethodGet, "/api/health", http.StatusOK, gin.H{"code": 200, "message": "API is healthy."})

	c := NewComponent(config.Client{BaseURL: srv.URL()}, WithLogger(logger.Nop()))
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	reg := component.NewRegistry(logger.Nop())
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if c.PocketBase() == nil {
		t.Fatal("expected facade after start")
	}
	if !reg.Healthy(ctx) {
		t.Errorf("expected healthy registry, got %+v", reg.HealthAll(ctx))
	}

	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if c.PocketBase() != nil {
		t.Error("expected facade to be released after stop")
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("expected idempotent stop, got %v", err)
	}
}

func TestComponent_HealthReflectsServer(t *testing.T) {
	srv := newServer(t)
	srv.Error(http.MethodGet, "/api/health", http.StatusServiceUnavailable, "down")

	c := NewComponent(config.Client{BaseURL: srv.URL()}, WithLogger(logger.Nop()))
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(ctx) })

	h := c.Health(ctx)
	if h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", h.Status)
	}
	if !strings.Contains(h.Message, "down") {
		t.Errorf("expected server message in health, got %q", h.Message)
	}
}

func TestComponent_DegradedWhenStorageDown(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	srv := newServer(t)
	srv.JSON(http.MethodGet, "/api/health", http.StatusOK, gin.H{"code": 200, "message": "ok"})

	cfg := config.Client{BaseURL: srv.URL()}
	cfg.Auth.Storage = config.StorageRedis
	cfg.Auth.Redis.Addr = mini.Addr()

	c := NewComponent(cfg, WithLogger(logger.Nop()))
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(ctx) })

	mini.Close()
	if h := c.Health(ctx); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded, got %s (%s)", h.Status, h.Message)
	}
}

func TestComponent_StartFailsWhenStorageUnreachable(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	addr := mini.Addr()
	mini.Close()

	cfg := config.Client{BaseURL: "http://localhost:8090"}
	cfg.Auth.Storage = config.StorageRedis
	cfg.Auth.Redis.Addr = addr

	c := NewComponent(cfg, WithLogger(logger.Nop()))
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail")
	}
	if c.PocketBase() != nil {
		t.Error("expected no facade after failed start")
	}
}
