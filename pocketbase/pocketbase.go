package pocketbase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kbukum/gopocket/auth"
	"github.com/kbukum/gopocket/client"
	"github.com/kbukum/gopocket/config"
	"github.com/kbukum/gopocket/encryption"
	"github.com/kbukum/gopocket/httpclient"
	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/observability"
	"github.com/kbukum/gopocket/resilience"
	"github.com/kbukum/gopocket/service"
	"github.com/kbukum/gopocket/store"
	"github.com/kbukum/gopocket/transport"
	"github.com/kbukum/gopocket/util"
	"github.com/kbukum/gopocket/version"
)

// ServiceName is the logger service name used when none is configured.
const ServiceName = "gopocket"

// Option customizes New beyond what config.Client expresses.
type Option func(*options)

type options struct {
	log      *logger.Logger
	storage  store.Storage
	executor transport.Service
	layers   []transport.Layer
}

// WithLogger replaces the logger built from cfg.Logging.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithStorage replaces the storage selected by cfg.Auth.Storage. The
// caller owns it; Close does not close it.
func WithStorage(s store.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithExecutor replaces the HTTP executor. Timeout, TLS and proxy settings
// are then the executor's concern.
func WithExecutor(exec transport.Service) Option {
	return func(o *options) { o.executor = exec }
}

// WithLayers adds layers outside the configured stack, in order.
func WithLayers(layers ...transport.Layer) Option {
	return func(o *options) { o.layers = append(o.layers, layers...) }
}

// PocketBase is a configured client plus its resource services.
type PocketBase struct {
	cfg    config.Client
	client *client.Client
	log    *logger.Logger

	storage     store.Storage
	ownsStorage bool
	shutdowns   []func(context.Context) error

	admins      *service.Admins
	collections *service.Collections
	logs        *service.Logs
	settings    *service.SettingsService
	health      *service.Health

	realtimeOnce sync.Once
	realtime     *service.Realtime

	closeOnce sync.Once
	closeErr  error
}

// New validates cfg and builds the client. Resources acquired before a
// failure are released before returning.
func New(ctx context.Context, cfg config.Client, opts ...Option) (*PocketBase, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pocketbase config: %w", err)
	}

	log := o.log
	if log == nil {
		log = logger.New(&cfg.Logging, ServiceName)
	}

	pb := &PocketBase{cfg: cfg, log: log.WithComponent("pocketbase")}
	if err := pb.init(ctx, o); err != nil {
		_ = pb.Close(ctx)
		return nil, err
	}

	pb.log.Info("pocketbase client ready", logger.Fields(
		"base_url", cfg.BaseURL,
		"locale", cfg.Locale,
		"auth_storage", pb.storageName(),
	))
	return pb, nil
}

func (pb *PocketBase) init(ctx context.Context, o options) error {
	cfg := pb.cfg

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRate:  cfg.Tracing.SampleRate,
		}, pb.log)
		if err != nil {
			return fmt.Errorf("pocketbase tracing: %w", err)
		}
		pb.shutdowns = append(pb.shutdowns, tp.Shutdown)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, observability.MeterConfig{
			ServiceName: cfg.Metrics.ServiceName,
			Endpoint:    cfg.Metrics.Endpoint,
			Insecure:    cfg.Metrics.Insecure,
			Interval:    cfg.Metrics.Interval,
		}, pb.log)
		if err != nil {
			return fmt.Errorf("pocketbase metrics: %w", err)
		}
		pb.shutdowns = append(pb.shutdowns, mp.Shutdown)
		if metrics, err = observability.NewMetrics(observability.Meter()); err != nil {
			return fmt.Errorf("pocketbase metrics: %w", err)
		}
	}

	if o.storage != nil {
		pb.storage = o.storage
	} else {
		s, err := openStorage(ctx, cfg.Auth, pb.log)
		if err != nil {
			return err
		}
		pb.storage, pb.ownsStorage = s, true
	}

	exec := o.executor
	if exec == nil {
		hc := httpclient.Config{Timeout: cfg.Timeout, Proxy: cfg.Proxy}
		if cfg.TLS.IsEnabled() {
			tls := cfg.TLS
			hc.TLS = &tls
		}
		e, err := httpclient.New(hc)
		if err != nil {
			return fmt.Errorf("pocketbase executor: %w", err)
		}
		exec = e
	}

	b := client.NewBuilder().
		SetBaseURL(cfg.BaseURL).
		SetLocale(cfg.Locale).
		SetExecutor(exec).
		SetLogger(pb.log).
		SetAuthState(auth.NewState(pb.storage,
			auth.WithKeys(cfg.Auth.TokenKey, cfg.Auth.IdentityKey),
			auth.WithLogger(pb.log),
		))
	for _, layer := range stack(cfg, pb.log, metrics) {
		b.AddLayer(layer)
	}
	for _, layer := range o.layers {
		b.AddLayer(layer)
	}

	c, err := b.Build()
	if err != nil {
		return err
	}
	pb.client = c
	pb.admins = service.NewAdmins(c)
	pb.collections = service.NewCollections(c)
	pb.logs = service.NewLogs(c)
	pb.settings = service.NewSettings(c)
	pb.health = service.NewHealth(c)
	return nil
}

// stack returns the configured layers, innermost first. Retry sits next to
// the executor so each attempt is a single round trip; request IDs are
// assigned outermost so every attempt of one call shares an ID.
func stack(cfg config.Client, log *logger.Logger, metrics *observability.Metrics) []transport.Layer {
	var layers []transport.Layer

	if cfg.Retry.MaxAttempts > 1 {
		rc := resilience.DefaultRetryConfig()
		rc.MaxAttempts = cfg.Retry.MaxAttempts
		rc.InitialBackoff = cfg.Retry.InitialBackoff
		rc.MaxBackoff = cfg.Retry.MaxBackoff
		layers = append(layers, transport.WithRetry(rc, log))
	}
	if cfg.MaxInFlight > 0 {
		layers = append(layers, transport.WithConcurrencyLimit(resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          ServiceName,
			MaxConcurrent: cfg.MaxInFlight,
		})))
	}
	if cfg.Breaker.Enabled {
		bc := resilience.DefaultCircuitBreakerConfig(ServiceName)
		bc.MaxFailures = cfg.Breaker.MaxFailures
		bc.Timeout = cfg.Breaker.Timeout
		bc.HalfOpenMaxCalls = cfg.Breaker.HalfOpenMaxCalls
		bc.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed", logger.Fields(
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			))
		}
		layers = append(layers, transport.WithCircuitBreaker(resilience.NewCircuitBreaker(bc)))
	}
	if cfg.RateLimit.Enabled {
		layers = append(layers, transport.WithRateLimit(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  ServiceName,
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		})))
	}
	if metrics != nil {
		layers = append(layers, transport.WithMetrics(metrics))
	}
	layers = append(layers, transport.WithLogging(log))
	if cfg.Tracing.Enabled {
		layers = append(layers, transport.WithTracing())
	}

	agent := util.Coalesce(cfg.UserAgent, version.UserAgent())
	layers = append(layers, transport.WithUserAgent(agent), transport.WithRequestID())
	return layers
}

func openStorage(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (store.Storage, error) {
	switch cfg.Storage {
	case config.StorageFile:
		var enc encryption.Encryptor
		if cfg.EncryptionKey != "" {
			e, err := encryption.New(cfg.EncryptionKey)
			if err != nil {
				return nil, fmt.Errorf("pocketbase auth storage: %w", err)
			}
			enc = e
		}
		return store.NewFile(cfg.FilePath, enc), nil
	case config.StorageRedis:
		return store.NewRedis(cfg.Redis, log), nil
	case config.StorageSQL:
		s, err := store.OpenSQL(ctx, cfg.SQL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewMemory(), nil
	}
}

func (pb *PocketBase) storageName() string {
	if !pb.ownsStorage {
		return "custom"
	}
	return pb.cfg.Auth.Storage
}

// Config returns the effective configuration with defaults applied.
func (pb *PocketBase) Config() config.Client { return pb.cfg }

// Client returns the underlying client for custom requests.
func (pb *PocketBase) Client() *client.Client { return pb.client }

// AuthState returns the shared auth state.
func (pb *PocketBase) AuthState() *auth.State { return pb.client.AuthState() }

// Logger returns the facade logger.
func (pb *PocketBase) Logger() *logger.Logger { return pb.log }

// Records returns the service for one collection. It is cheap; callers
// may create one per use.
func (pb *PocketBase) Records(collection string) *service.Records {
	return service.NewRecords(pb.client, collection)
}

// Admins returns the admins service.
func (pb *PocketBase) Admins() *service.Admins { return pb.admins }

// Collections returns the collections service.
func (pb *PocketBase) Collections() *service.Collections { return pb.collections }

// Logs returns the request logs service.
func (pb *PocketBase) Logs() *service.Logs { return pb.logs }

// Settings returns the settings service.
func (pb *PocketBase) Settings() *service.SettingsService { return pb.settings }

// Health returns the health service.
func (pb *PocketBase) Health() *service.Health { return pb.health }

// Realtime returns the shared realtime connection. It connects on the
// first Subscribe.
func (pb *PocketBase) Realtime() *service.Realtime {
	pb.realtimeOnce.Do(func() {
		pb.realtime = service.NewRealtime(pb.client)
	})
	return pb.realtime
}

// Ping checks the storage backend when it has a remote connection.
func (pb *PocketBase) Ping(ctx context.Context) error {
	if p, ok := pb.storage.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close drops the realtime stream, closes storage opened by New and flushes
// telemetry exporters. It is safe to call more than once.
func (pb *PocketBase) Close(ctx context.Context) error {
	pb.closeOnce.Do(func() {
		var errs []error
		pb.realtimeOnce.Do(func() {})
		if pb.realtime != nil {
			errs = append(errs, pb.realtime.Close())
		}
		if pb.ownsStorage {
			if c, ok := pb.storage.(io.Closer); ok {
				errs = append(errs, c.Close())
			}
		}
		for i := len(pb.shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, pb.shutdowns[i](ctx))
		}
		pb.closeErr = errors.Join(errs...)
	})
	return pb.closeErr
}
