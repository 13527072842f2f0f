package pocketbase

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/gopocket/component"
	"github.com/kbukum/gopocket/config"
)

// Component wraps PocketBase and implements component.Component for
// lifecycle management.
type Component struct {
	cfg  config.Client
	opts []Option

	mu sync.RWMutex
	pb *PocketBase
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a PocketBase component for use with the component
// registry. Nothing is built until Start.
func NewComponent(cfg config.Client, opts ...Option) *Component {
	return &Component{cfg: cfg, opts: opts}
}

// PocketBase returns the underlying facade, or nil if not started.
func (c *Component) PocketBase() *PocketBase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pb
}

// Name returns the component name.
func (c *Component) Name() string { return "pocketbase" }

// Start builds the client and verifies the auth storage is reachable.
// The API server itself is checked by Health, not Start.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pb != nil {
		return nil
	}

	pb, err := New(ctx, c.cfg, c.opts...)
	if err != nil {
		return fmt.Errorf("pocketbase start: %w", err)
	}
	if err := pb.Ping(ctx); err != nil {
		_ = pb.Close(ctx)
		return fmt.Errorf("pocketbase start ping: %w", err)
	}

	c.pb = pb
	pb.Logger().Info("PocketBase component started")
	return nil
}

// Stop closes the facade.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	pb := c.pb
	c.pb = nil
	c.mu.Unlock()

	if pb == nil {
		return nil
	}
	pb.Logger().Info("PocketBase component stopping")
	return pb.Close(ctx)
}

// Health reports unhealthy when the API health endpoint fails and degraded
// when only the auth storage is unreachable.
func (c *Component) Health(ctx context.Context) component.Health {
	pb := c.PocketBase()
	if pb == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "pocketbase not initialized",
		}
	}

	if _, err := pb.Health().Check(ctx, nil); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}
	if err := pb.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("auth storage ping failed: %v", err),
		}
	}

	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
	}
}
