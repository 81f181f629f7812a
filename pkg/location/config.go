package location

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/querysync/pkg/session"
)

// defaultTracerName is the tracer used when none is configured.
const defaultTracerName = "querysync"

// Config configures a Location.
type Config struct {
	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// SessionID identifies the live session owning the location. Empty
	// means no session context (e.g. a static export), which disables
	// onload callbacks.
	SessionID string

	// Registry supplies the session's onload callbacks.
	Registry session.OnLoadSource

	// Navigator receives URL patches for server-side changes to pathname,
	// search or hash. Nil drops them.
	Navigator Navigator

	// Metrics records sync activity. Nil disables metrics.
	Metrics *Metrics

	// Tracer traces browser snapshot application.
	// Default: otel.Tracer("querysync").
	Tracer trace.Tracer
}

// Option configures a Location.
type Option func(*Config)

// DefaultConfig returns the configuration used by New before options apply.
func DefaultConfig() Config {
	return Config{
		Logger: slog.Default(),
		Tracer: otel.Tracer(defaultTracerName),
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSessionID sets the owning session's ID.
func WithSessionID(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}

// WithRegistry sets the source of onload callbacks.
func WithRegistry(r session.OnLoadSource) Option {
	return func(c *Config) {
		c.Registry = r
	}
}

// WithNavigator sets the receiver of outgoing URL patches.
func WithNavigator(n Navigator) Option {
	return func(c *Config) {
		c.Navigator = n
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTracer sets the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}
