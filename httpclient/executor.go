package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/transport"
)

// Executor sends transport requests over net/http. It is safe for
// concurrent use and is shared by every client built on it.
type Executor struct {
	httpClient *http.Client
	config     Config
}

var _ transport.Service = (*Executor)(nil)

// New creates an executor with its own transport.
func New(cfg Config) (*Executor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := http.DefaultTransport.(*http.Transport).Clone()
	rt.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	rt.IdleConnTimeout = cfg.IdleConnTimeout
	rt.Proxy = proxyFunc(cfg)

	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			rt.TLSClientConfig = tlsCfg
		}
	}

	// No client-wide timeout: it would cut streaming bodies. Timeout is
	// applied per request through the context instead.
	return &Executor{httpClient: &http.Client{Transport: rt}, config: cfg}, nil
}

// NewWithClient wraps an existing *http.Client. Its Timeout, if any, applies
// to every request including streams.
func NewWithClient(hc *http.Client, cfg Config) *Executor {
	cfg.ApplyDefaults()
	return &Executor{httpClient: hc, config: cfg}
}

// proxyFunc resolves proxies with x/net/http/httpproxy so an explicit proxy
// honours NoProxy the same way the environment variables do.
func proxyFunc(cfg Config) func(*http.Request) (*url.URL, error) {
	pc := httpproxy.FromEnvironment()
	if cfg.Proxy != "" {
		pc = &httpproxy.Config{
			HTTPProxy:  cfg.Proxy,
			HTTPSProxy: cfg.Proxy,
			NoProxy:    cfg.NoProxy,
		}
	}
	fn := pc.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

// Name implements transport.Service.
func (e *Executor) Name() string { return "http" }

// Ready implements transport.Service. The executor has no admission control.
func (e *Executor) Ready(context.Context) error { return nil }

// Unwrap returns the underlying *http.Client for advanced use cases.
func (e *Executor) Unwrap() *http.Client { return e.httpClient }

// Call performs exactly one HTTP round trip. Any status code is a success
// at this level; the body is returned unread and must be closed by the
// caller.
func (e *Executor) Call(ctx context.Context, req transport.Request) (transport.Response, error) {
	r, ok := transport.AsHTTP(req)
	if !ok {
		return nil, pberrors.Opaque(errors.New("httpclient: unsupported request variant"))
	}

	cancel := context.CancelFunc(func() {})
	if !isStream(r) && e.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
	}

	httpReq, err := buildRequest(ctx, r)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, pberrors.Timeout("http.do", err)
		}
		return nil, pberrors.Transport("http.do", err)
	}

	return &transport.HTTPResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

func isStream(r *transport.HTTPRequest) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// buildRequest converts the envelope into an *http.Request.
func buildRequest(ctx context.Context, r *transport.HTTPRequest) (*http.Request, error) {
	u, err := r.FullURL()
	if err != nil {
		return nil, pberrors.URLConstruction(r.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, pberrors.URLConstruction(r.URL, errors.New("URL must be absolute"))
	}

	body, contentType, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, pberrors.URLConstruction(r.URL, err)
	}

	for k, vs := range r.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

// encodeBody serializes the body variant. The returned content type
// overrides any Content-Type header on the request; an empty one leaves it.
func encodeBody(b transport.Body) (io.Reader, string, error) {
	switch body := b.(type) {
	case nil:
		return nil, "", nil
	case transport.JSONBody:
		data, err := json.Marshal(body.Value)
		if err != nil {
			return nil, "", pberrors.Serialization("http.encode", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case *transport.MultipartBody:
		reader, contentType, err := encodeMultipart(body)
		if err != nil {
			return nil, "", pberrors.Serialization("http.multipart", err)
		}
		return reader, contentType, nil
	case transport.RawBody:
		return body.Reader, body.ContentType, nil
	default:
		return nil, "", pberrors.Opaque(errors.New("httpclient: unsupported body variant"))
	}
}

// cancelOnClose releases the per-request timeout once the body is done.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
