package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/kbukum/gopocket/auth"
	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/transport"
)

const (
	HeaderAuthorization  = "Authorization"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderContentType    = "Content-Type"

	ContentTypeJSON = "application/json"
)

var errEmptySegment = errors.New("empty segment in path")

// maxErrorBody bounds how much of a non-2xx body is read into an APIError.
const maxErrorBody = 1 << 20

// Client dispatches requests through the layer chain.
type Client struct {
	cfg *Config
}

// Config returns the shared configuration.
func (c *Client) Config() *Config { return c.cfg }

// AuthState returns the auth state requests are signed with.
func (c *Client) AuthState() *auth.State { return c.cfg.auth }

// Logger returns the client logger.
func (c *Client) Logger() *logger.Logger { return c.cfg.log }

// URL resolves path against the base URL. Path segments taken from user
// input must already be escaped with url.PathEscape.
func (c *Client) URL(path string) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", pberrors.URLConstruction(path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return "", pberrors.URLConstruction(path, errors.New("path must be relative"))
	}
	if err := checkSegments(ref.EscapedPath()); err != nil {
		return "", pberrors.URLConstruction(path, err)
	}
	return c.cfg.baseURL.ResolveReference(ref).String(), nil
}

// checkSegments rejects empty and dot segments. ResolveReference would
// collapse them and move the request to a parent resource, so an id of ".."
// must never reach it.
func checkSegments(escaped string) error {
	if escaped == "" {
		return nil
	}
	for _, seg := range strings.Split(escaped, "/") {
		switch seg {
		case "":
			return errEmptySegment
		case ".", "..":
			return fmt.Errorf("dot segment %q in path", seg)
		}
	}
	return nil
}

// NewRequest builds a request for path relative to the base URL.
func (c *Client) NewRequest(method, path string) (*transport.HTTPRequest, error) {
	u, err := c.URL(path)
	if err != nil {
		return nil, err
	}
	return transport.NewHTTPRequest(method, u), nil
}

// Call checks readiness and dispatches req through the chain. Errors from
// outside the taxonomy are wrapped so callers only ever see *errors.Error or
// *errors.APIError.
func (c *Client) Call(ctx context.Context, req transport.Request) (transport.Response, error) {
	if err := c.cfg.chain.Ready(ctx); err != nil {
		if pberrors.KindOf(err) != "" {
			return nil, err
		}
		return nil, pberrors.Transport("pipeline.ready", err)
	}

	resp, err := c.cfg.chain.Call(ctx, req)
	if err != nil {
		return nil, normalize(ctx, err)
	}
	if resp == nil {
		return nil, pberrors.Opaque(errors.New("client: chain returned no response"))
	}
	return resp, nil
}

func normalize(ctx context.Context, err error) error {
	if pberrors.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return pberrors.Timeout("pipeline.call", err)
	}
	if errors.Is(err, context.Canceled) {
		return pberrors.Transport("pipeline.call", err)
	}
	return pberrors.Opaque(err)
}

// Send adds the locale and stored token, dispatches req, and converts any
// status outside [200,300) into *errors.APIError. A successful response is
// returned with its body unread.
func (c *Client) Send(ctx context.Context, req *transport.HTTPRequest) (*transport.HTTPResponse, error) {
	r := req.Clone()
	r.SetHeader(HeaderAcceptLanguage, c.cfg.locale)

	if r.Header.Get(HeaderAuthorization) == "" {
		token, ok, err := c.cfg.auth.Token(ctx)
		if err != nil {
			return nil, err
		}
		if ok && token != "" {
			r.SetHeader(HeaderAuthorization, token)
		}
	}

	resp, err := c.Call(ctx, r)
	if err != nil {
		return nil, err
	}
	httpResp, ok := transport.AsHTTPResponse(resp)
	if !ok {
		return nil, pberrors.Opaque(errors.New("client: unexpected response variant"))
	}
	if httpResp.IsSuccess() {
		return httpResp, nil
	}

	defer closeBody(httpResp)
	var body []byte
	if httpResp.Body != nil {
		body, err = io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		if err != nil {
			return nil, pberrors.Transport("response.read", err)
		}
	}
	return nil, pberrors.ParseAPIError(httpResp.StatusCode, body)
}

// SendJSON is Send for a request whose body is v encoded as JSON.
func (c *Client) SendJSON(ctx context.Context, req *transport.HTTPRequest, v any) (*transport.HTTPResponse, error) {
	req.Body = transport.JSONBody{Value: v}
	req.SetHeader(HeaderContentType, ContentTypeJSON)
	return c.Send(ctx, req)
}

func closeBody(resp *transport.HTTPResponse) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
