package service

import (
	"context"
	"net/http"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/crud"
	"github.com/kbukum/gopocket/model"
)

// Collections manages collection definitions. It requires admin auth.
type Collections struct {
	*crud.Service[model.Collection, map[string]any]

	client *client.Client
}

// NewCollections returns the collection service.
func NewCollections(c *client.Client) *Collections {
	return &Collections{
		Service: crud.New[model.Collection, map[string]any](c, "api/collections"),
		client:  c,
	}
}

// Import replaces the collection set in one call. With deleteMissing,
// collections absent from the list are deleted along with their records.
func (s *Collections) Import(ctx context.Context, collections []model.Collection, deleteMissing bool, opts Options) error {
	if collections == nil {
		collections = []model.Collection{}
	}
	body := mergeBody(opts.Body, map[string]any{
		"collections":   collections,
		"deleteMissing": deleteMissing,
	})
	return exec(ctx, s.client, http.MethodPut, "api/collections/import", opts.Query, body)
}
