package service

import (
	"context"
	"net/http"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/transport"
)

// Health checks server availability.
type Health struct {
	client *client.Client
}

// NewHealth returns the health service.
func NewHealth(c *client.Client) *Health {
	return &Health{client: c}
}

// Check calls api/health. An unhealthy server answers non-2xx, which is
// returned as an APIError.
func (h *Health) Check(ctx context.Context, query []transport.QueryParam) (*model.HealthStatus, error) {
	status, err := fetch[model.HealthStatus](ctx, h.client, http.MethodGet, "api/health", query, nil)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
