package client

import (
	"net/url"

	"github.com/kbukum/gopocket/auth"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/transport"
)

// DefaultLocale is sent as Accept-Language when none is configured.
const DefaultLocale = "en-US"

// Config is the state shared by every service built from one Client. It is
// never modified after Build.
type Config struct {
	baseURL *url.URL
	locale  string
	auth    *auth.State
	chain   transport.Service
	log     *logger.Logger
}

// BaseURL returns a copy of the server root.
func (c *Config) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Locale returns the Accept-Language value.
func (c *Config) Locale() string { return c.locale }

// AuthState returns the shared auth state.
func (c *Config) AuthState() *auth.State { return c.auth }

// Chain returns the composed pipeline, outermost layer first.
func (c *Config) Chain() transport.Service { return c.chain }

// Logger returns the client logger.
func (c *Config) Logger() *logger.Logger { return c.log }
