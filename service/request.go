package service

import (
	"context"
	"net/http"

	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/transport"
)

// Options carries extra body fields and query pairs for calls whose
// required fields are positional arguments.
type Options struct {
	// Body fields are sent next to the call's own fields, which win on
	// conflict.
	Body  map[string]any
	Query []transport.QueryParam
}

// mergeBody returns extra overlaid with fields. Neither input is modified.
func mergeBody(extra, fields map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+len(fields))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// send issues a JSON request and returns the successful response unread.
func send(ctx context.Context, c *client.Client, method, path string, query []transport.QueryParam, body any) (*transport.HTTPResponse, error) {
	req, err := c.NewRequest(method, path)
	if err != nil {
		return nil, err
	}
	req.AddQuery(query...)
	if body == nil {
		req.SetHeader(client.HeaderContentType, client.ContentTypeJSON)
		return c.Send(ctx, req)
	}
	return c.SendJSON(ctx, req, body)
}

// fetch sends and decodes the response into T.
func fetch[T any](ctx context.Context, c *client.Client, method, path string, query []transport.QueryParam, body any) (T, error) {
	resp, err := send(ctx, c, method, path, query, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return client.Decode[T](resp)
}

// exec sends and discards the response; any 2xx succeeds.
func exec(ctx context.Context, c *client.Client, method, path string, query []transport.QueryParam, body any) error {
	resp, err := send(ctx, c, method, path, query, body)
	if err != nil {
		return err
	}
	client.Discard(resp)
	return nil
}

func post(ctx context.Context, c *client.Client, path string, opts Options, fields map[string]any) error {
	return exec(ctx, c, http.MethodPost, path, opts.Query, mergeBody(opts.Body, fields))
}
