package client

import (
	"errors"
	"net/url"
	"strings"

	"github.com/kbukum/gopocket/auth"
	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/httpclient"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/transport"
)

var errEmptyLocale = errors.New("client: locale must not be empty")

// Builder assembles a Client. Layers are applied in the order they are
// added, so the last one added is the outermost.
type Builder struct {
	baseURL  string
	locale   string
	auth     *auth.State
	executor transport.Service
	layers   []transport.Layer
	log      *logger.Logger
}

// NewBuilder returns a builder with the default locale.
func NewBuilder() *Builder {
	return &Builder{locale: DefaultLocale}
}

// SetBaseURL sets the server root, e.g. "http://127.0.0.1:8090".
func (b *Builder) SetBaseURL(raw string) *Builder {
	b.baseURL = raw
	return b
}

// SetLocale sets the Accept-Language value.
func (b *Builder) SetLocale(locale string) *Builder {
	b.locale = locale
	return b
}

// SetAuthState shares an existing auth state. Without one the client gets
// its own in-memory state.
func (b *Builder) SetAuthState(state *auth.State) *Builder {
	b.auth = state
	return b
}

// SetExecutor replaces the terminal service. Without one Build creates an
// httpclient.Executor with default settings.
func (b *Builder) SetExecutor(exec transport.Service) *Builder {
	b.executor = exec
	return b
}

// AddLayer appends a layer around everything added before it.
func (b *Builder) AddLayer(layer transport.Layer) *Builder {
	if layer != nil {
		b.layers = append(b.layers, layer)
	}
	return b
}

// SetLogger sets the logger handed to services.
func (b *Builder) SetLogger(log *logger.Logger) *Builder {
	b.log = log
	return b
}

// Build validates the configuration and composes the chain.
func (b *Builder) Build() (*Client, error) {
	base, err := parseBaseURL(b.baseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(b.locale) == "" {
		return nil, errEmptyLocale
	}

	exec := b.executor
	if exec == nil {
		e, err := httpclient.New(httpclient.Config{})
		if err != nil {
			return nil, err
		}
		exec = e
	}

	log := b.log
	if log == nil {
		log = logger.Nop()
	}

	state := b.auth
	if state == nil {
		state = auth.NewState(nil, auth.WithLogger(log))
	}

	cfg := &Config{
		baseURL: base,
		locale:  b.locale,
		auth:    state,
		chain:   transport.Chain(b.layers...)(exec),
		log:     log.WithComponent("client"),
	}
	return &Client{cfg: cfg}, nil
}

// New is shorthand for a builder with only a base URL and locale.
func New(baseURL, locale string) (*Client, error) {
	return NewBuilder().SetBaseURL(baseURL).SetLocale(locale).Build()
}

// parseBaseURL requires an absolute http(s) URL and normalizes its path to
// end in "/" so relative resolution keeps any mount prefix.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, pberrors.URLConstruction(raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, pberrors.URLConstruction(raw, errors.New("scheme must be http or https"))
	}
	if u.Host == "" {
		return nil, pberrors.URLConstruction(raw, errors.New("host is required"))
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u, nil
}
