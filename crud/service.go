package crud

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kbukum/gopocket/client"
	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/model"
	"github.com/kbukum/gopocket/transport"
)

const (
	DefaultPerPage = 30
	DefaultPage    = 1

	// DefaultBatch is the page size GetFullList uses when none is given.
	DefaultBatch = 500
)

// ListRequest selects one page. Zero PerPage and Page fall back to the
// defaults. Query pairs are sent after perPage and page, in order.
type ListRequest struct {
	PerPage int
	Page    int
	Query   []transport.QueryParam
}

// MutateRequest creates a record when ID is nil and updates it otherwise.
// ID and Query are never part of the JSON body.
type MutateRequest[B any] struct {
	ID    *string
	Body  B
	Query []transport.QueryParam
}

// Service talks to one base path. T is the decoded item, B the body sent
// on create and update.
type Service[T any, B any] struct {
	client   *client.Client
	basePath string
}

// New returns a service rooted at basePath, relative to the client's base URL.
func New[T any, B any](c *client.Client, basePath string) *Service[T, B] {
	return &Service[T, B]{client: c, basePath: strings.Trim(basePath, "/")}
}

// BasePath returns the path the service is rooted at.
func (s *Service[T, B]) BasePath() string { return s.basePath }

// Client returns the client requests are sent through.
func (s *Service[T, B]) Client() *client.Client { return s.client }

func (s *Service[T, B]) itemPath(id string) string {
	return s.basePath + "/" + url.PathEscape(id)
}

func (s *Service[T, B]) newRequest(method, path string, query []transport.QueryParam) (*transport.HTTPRequest, error) {
	req, err := s.client.NewRequest(method, path)
	if err != nil {
		return nil, err
	}
	req.SetHeader(client.HeaderContentType, client.ContentTypeJSON)
	req.AddQuery(query...)
	return req, nil
}

// GetList fetches one page.
func (s *Service[T, B]) GetList(ctx context.Context, lr ListRequest) (*model.ListResult[T], error) {
	perPage, page := lr.PerPage, lr.Page
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = DefaultPage
	}

	query := append(transport.Q(
		"perPage", strconv.Itoa(perPage),
		"page", strconv.Itoa(page),
	), lr.Query...)

	req, err := s.newRequest(http.MethodGet, s.basePath, query)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	result, err := client.Decode[model.ListResult[T]](resp)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFullList pages through every item, batch at a time, until a page comes
// back short.
func (s *Service[T, B]) GetFullList(ctx context.Context, batch int, query []transport.QueryParam) ([]T, error) {
	if batch <= 0 {
		batch = DefaultBatch
	}

	var items []T
	for page := 1; ; page++ {
		result, err := s.GetList(ctx, ListRequest{PerPage: batch, Page: page, Query: query})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if len(result.Items) < batch || (result.TotalPages > 0 && page >= result.TotalPages) {
			break
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetFirstListItem returns the first item matching filter. An empty result
// is reported as a 404 APIError, the same as the server does for GetOne.
func (s *Service[T, B]) GetFirstListItem(ctx context.Context, filter string, query []transport.QueryParam) (T, error) {
	var zero T
	params := append([]transport.QueryParam{{Key: "filter", Value: filter}}, query...)

	result, err := s.GetList(ctx, ListRequest{PerPage: 1, Page: 1, Query: params})
	if err != nil {
		return zero, err
	}
	if len(result.Items) == 0 {
		return zero, pberrors.NotFound("The requested resource wasn't found.")
	}
	return result.Items[0], nil
}

// GetOne fetches a single item by id.
func (s *Service[T, B]) GetOne(ctx context.Context, id string, query []transport.QueryParam) (T, error) {
	var zero T
	req, err := s.newRequest(http.MethodGet, s.itemPath(id), query)
	if err != nil {
		return zero, err
	}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	return client.Decode[T](resp)
}

// Mutate sends POST {base} when mr.ID is nil and PATCH {base}/{id}
// otherwise, and decodes the returned item.
func (s *Service[T, B]) Mutate(ctx context.Context, mr MutateRequest[B]) (T, error) {
	var zero T
	method, path := s.target(mr.ID)

	req, err := s.newRequest(method, path, mr.Query)
	if err != nil {
		return zero, err
	}
	req.Body = transport.JSONBody{Value: mr.Body}

	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	return client.Decode[T](resp)
}

// MultipartMutate is Mutate with a multipart form body, for file uploads.
func (s *Service[T, B]) MultipartMutate(ctx context.Context, id *string, form *transport.MultipartBody, query []transport.QueryParam) (T, error) {
	var zero T
	method, path := s.target(id)

	req, err := s.client.NewRequest(method, path)
	if err != nil {
		return zero, err
	}
	req.AddQuery(query...)
	if form == nil {
		form = &transport.MultipartBody{}
	}
	req.Body = form

	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	return client.Decode[T](resp)
}

// Create posts body as a new item.
func (s *Service[T, B]) Create(ctx context.Context, body B, query []transport.QueryParam) (T, error) {
	return s.Mutate(ctx, MutateRequest[B]{Body: body, Query: query})
}

// Update patches the item with the given id.
func (s *Service[T, B]) Update(ctx context.Context, id string, body B, query []transport.QueryParam) (T, error) {
	return s.Mutate(ctx, MutateRequest[B]{ID: &id, Body: body, Query: query})
}

// Delete removes the item with the given id. Any 2xx status succeeds and the
// body is discarded.
func (s *Service[T, B]) Delete(ctx context.Context, id string, query []transport.QueryParam) error {
	req, err := s.newRequest(http.MethodDelete, s.itemPath(id), query)
	if err != nil {
		return err
	}
	resp, err := s.client.Send(ctx, req)
	if err != nil {
		return err
	}
	client.Discard(resp)
	return nil
}

func (s *Service[T, B]) target(id *string) (method, path string) {
	if id == nil {
		return http.MethodPost, s.basePath
	}
	return http.MethodPatch, s.itemPath(*id)
}
