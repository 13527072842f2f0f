package component

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/gopocket/logger"
)

// fakeComponent implements Component for testing.
type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) Start(ctx context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "start:"+f.name)
	}
	return f.startErr
}
func (f *fakeComponent) Stop(ctx context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "stop:"+f.name)
	}
	return f.stopErr
}
func (f *fakeComponent) Health(ctx context.Context) Health {
	return f.health
}

func healthy(name string, events *[]string) *fakeComponent {
	return &fakeComponent{name: name, events: events, health: Health{Name: name, Status: StatusHealthy}}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(healthy("auth-store", nil)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(healthy("auth-store", nil)); err == nil {
		t.Error("expected error for duplicate registration")
	}

	if got := r.Get("auth-store"); got == nil || got.Name() != "auth-store" {
		t.Errorf("expected auth-store, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("expected nil for unregistered component, got %v", got)
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 component, got %d", len(r.All()))
	}
}

func TestStartStopOrder(t *testing.T) {
	var events []string
	r := NewRegistry(nil)
	_ = r.Register(healthy("auth-store", &events))
	_ = r.Register(healthy("pocketbase", &events))
	_ = r.Register(healthy("realtime", &events))

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := "start:auth-store start:pocketbase start:realtime stop:realtime stop:pocketbase stop:auth-store"
	if got := strings.Join(events, " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStartAll_StopsAtFirstFailure(t *testing.T) {
	var events []string
	r := NewRegistry(nil)
	_ = r.Register(healthy("auth-store", &events))
	_ = r.Register(&fakeComponent{name: "pocketbase", events: &events, startErr: errors.New("connection refused")})
	_ = r.Register(healthy("realtime", &events))

	ctx := context.Background()
	err := r.StartAll(ctx)
	if err == nil || !strings.Contains(err.Error(), "pocketbase") {
		t.Fatalf("expected start failure naming pocketbase, got %v", err)
	}

	events = events[:0]
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if strings.Join(events, " ") != "stop:auth-store" {
		t.Errorf("expected only started components stopped, got %v", events)
	}
}

func TestStopAll_JoinsErrors(t *testing.T) {
	errA := errors.New("flush failed")
	errB := errors.New("close failed")

	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "a", stopErr: errA})
	_ = r.Register(&fakeComponent{name: "b", stopErr: errB})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&fakeComponent{name: "auth-store", health: Health{Name: "auth-store", Status: StatusHealthy, Message: "redis"}})
	_ = r.Register(&fakeComponent{name: "pocketbase", health: Health{Name: "pocketbase", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("expected healthy then unhealthy, got %v", results)
	}
	if r.Healthy(context.Background()) {
		t.Error("expected registry unhealthy")
	}
}

func TestRegistry_Logs(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(logger.NewWithWriter(&buf, "debug"))
	_ = r.Register(healthy("pocketbase", nil))
	_ = r.StartAll(context.Background())

	if !strings.Contains(buf.String(), "component started") {
		t.Errorf("expected start logged, got %s", buf.String())
	}
}
