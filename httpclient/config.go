package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/gopocket/security"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMaxIdlePerHost  = 16
	defaultIdleConnTimeout = 90 * time.Second
)

// Config configures the executor's HTTP transport.
type Config struct {
	// Timeout bounds a whole request including reading the body.
	// Streaming requests (Accept: text/event-stream) are exempt.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Proxy is an explicit proxy URL. When empty the standard
	// HTTP_PROXY/HTTPS_PROXY/NO_PROXY variables apply.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// NoProxy lists hosts that bypass Proxy, in NO_PROXY syntax.
	NoProxy string `yaml:"no_proxy" mapstructure:"no_proxy"`

	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = defaultMaxIdlePerHost
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		if err != nil || u.Host == "" {
			return fmt.Errorf("httpclient: invalid proxy URL %q", c.Proxy)
		}
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}
