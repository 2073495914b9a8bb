package mnemovec

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/engine"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	host string
	port int
	dial engine.Dialer

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithAddress sets the vector engine host and port.
// Defaults to localhost:19530.
func WithAddress(host string, port int) Option {
	return optionFunc(func(c *clientConfig) {
		c.host = host
		c.port = port
	})
}

// WithDialer replaces the gRPC dialer with a custom one.
// Intended for tests and embedded engines; overrides WithAddress.
func WithDialer(d engine.Dialer) Option {
	return optionFunc(func(c *clientConfig) {
		c.dial = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
