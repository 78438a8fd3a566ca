// Copyright (C) 2017 Librato, Inc. All rights reserved.

// Package config loads the probe runtime settings. Each Config field names
// its default and its environment variable in struct tags. Values are
// layered: tag defaults, then the config file, then the environment, then
// options passed by the caller. Invalid values are logged and replaced by
// their default.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/pkg/errors"
)

// Errors
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file size exceeds limit")
	ErrInvalidServiceKey = errors.New("invalid service key")
)

// Config holds the runtime settings. Backends read it once, when they are
// built.
type Config struct {
	mu sync.RWMutex

	// Backend is the tracer backend: none, udp, collector, otel or
	// opentracing. A comma-separated list fans fires out to each of them.
	Backend string `yaml:",omitempty" env:"PROBERS_BACKEND" default:"none"`

	// Disabled makes every provider fail its initialization
	Disabled bool `yaml:",omitempty" env:"PROBERS_DISABLED"`

	// EnabledProbes is a comma-separated list of provider:probe glob patterns
	// whose probes start enabled
	EnabledProbes string `yaml:",omitempty" env:"PROBERS_ENABLED_PROBES"`

	// CollectorUDP is the host:port the udp backend sends datagrams to
	CollectorUDP string `yaml:",omitempty" env:"PROBERS_COLLECTOR_UDP" default:"127.0.0.1:7831"`

	// Encoding of the udp events, bson or msgpack
	Encoding string `yaml:",omitempty" env:"PROBERS_ENCODING" default:"bson"`

	// Collector is the host:port of the gRPC collector
	Collector string `yaml:",omitempty" env:"PROBERS_COLLECTOR" default:"collector.appoptics.com:443"`

	// ServiceKey is sent with every batch posted to the gRPC collector
	ServiceKey string `yaml:",omitempty" env:"PROBERS_SERVICE_KEY"`

	// TrustedPath is a PEM certificate added to the system pool
	TrustedPath string `yaml:",omitempty" env:"PROBERS_TRUSTEDPATH"`

	SkipVerify bool `yaml:",omitempty" env:"PROBERS_INSECURE_SKIP_VERIFY"`

	// HostAlias replaces the hostname stamped on events
	HostAlias string `yaml:",omitempty" env:"PROBERS_HOSTNAME_ALIAS"`

	Queue *QueueConfig `yaml:",omitempty"`
}

// Option overrides one setting after the file and the environment.
type Option func(c *Config)

// WithBackend selects the tracer backend.
func WithBackend(backend string) Option {
	return func(c *Config) { c.Backend = backend }
}

// WithDisabled switches probes off.
func WithDisabled(disabled bool) Option {
	return func(c *Config) { c.Disabled = disabled }
}

// WithEnabledProbes sets the patterns of the probes that start enabled.
func WithEnabledProbes(patterns ...string) Option {
	return func(c *Config) { c.EnabledProbes = strings.Join(patterns, ",") }
}

// WithCollectorUDP sets the address of the udp backend.
func WithCollectorUDP(addr string) Option {
	return func(c *Config) { c.CollectorUDP = addr }
}

// WithEncoding sets the encoding of the udp backend.
func WithEncoding(enc string) Option {
	return func(c *Config) { c.Encoding = enc }
}

// WithCollector sets the address of the gRPC collector.
func WithCollector(collector string) Option {
	return func(c *Config) { c.Collector = collector }
}

// WithServiceKey sets the key the collector backend authenticates with.
func WithServiceKey(key string) Option {
	return func(c *Config) { c.ServiceKey = key }
}

// NewConfig loads a Config. When loading fails, for example because the
// collector backend has no valid service key, the error is logged and the
// defaults are returned.
func NewConfig(opts ...Option) *Config {
	c := newConfig()
	if err := c.RefreshConfig(opts...); err != nil {
		log.Error(errors.Wrap(err, "config init failed, falling back to default values"))
		c.mu.Lock()
		setDefaults(c)
		c.mu.Unlock()
	}
	return c
}

func newConfig() *Config {
	c := &Config{}
	setDefaults(c)
	return c
}

// RefreshConfig reloads every layer, from the defaults up to opts.
func (c *Config) RefreshConfig(opts ...Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	setDefaults(c)
	if err := loadFile(c); err != nil {
		return errors.Wrap(err, "RefreshConfig")
	}
	loadEnvs(c)
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return errors.Wrap(err, "RefreshConfig")
	}

	if changes := changedItems(newConfig(), c); len(changes) > 0 {
		log.Warningf("Accepted config items: \n%s", strings.Join(changes, "\n"))
	}
	return nil
}

func (c *Config) validate() error {
	c.Backend = strings.Join(Backends(c.Backend), ",")
	if !IsValidBackend(c.Backend) {
		c.Backend = discard(c, "Backend", c.Backend)
	}
	c.Encoding = normalize(c.Encoding)
	if !IsValidEncoding(c.Encoding) {
		c.Encoding = discard(c, "Encoding", c.Encoding)
	}
	c.EnabledProbes = strings.Join(ToProbePatterns(c.EnabledProbes), ",")

	if !IsValidHost(c.CollectorUDP) {
		c.CollectorUDP = discard(c, "CollectorUDP", c.CollectorUDP)
	}
	if !IsValidHost(c.Collector) {
		c.Collector = discard(c, "Collector", c.Collector)
	}
	if !IsValidFile(c.TrustedPath) {
		c.TrustedPath = discard(c, "TrustedPath", c.TrustedPath)
	}

	if HasBackend(c.Backend, BackendCollector) && c.Encoding != EncodingBSON {
		log.Warningf("The collector backend always sends %s; Encoding=%s applies to the udp backend only.",
			EncodingBSON, c.Encoding)
	}

	if HasBackend(c.Backend, BackendCollector) {
		c.ServiceKey = ToServiceKey(c.ServiceKey)
		if !IsValidServiceKey(c.ServiceKey) {
			log.Warning(MissingEnv("ServiceKey"))
			return errors.Wrap(ErrInvalidServiceKey, fmt.Sprintf("%q", MaskServiceKey(c.ServiceKey)))
		}
	}

	c.Queue.Normalize()
	return nil
}

// discard logs the rejected value of a field and returns its default.
func discard(c interface{}, field, val string) string {
	log.Warning(InvalidEnv(field, val))
	return defaultOf(c, field)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func read[T any](c *Config, f func(*Config) T) T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return f(c)
}

// GetBackend returns the tracer backend type
func (c *Config) GetBackend() string {
	return read(c, func(c *Config) string { return c.Backend })
}

// GetDisabled returns if probes are switched off
func (c *Config) GetDisabled() bool {
	return read(c, func(c *Config) bool { return c.Disabled })
}

// GetEnabledProbes returns the patterns of the probes enabled at registration
func (c *Config) GetEnabledProbes() []string {
	return ToProbePatterns(read(c, func(c *Config) string { return c.EnabledProbes }))
}

// GetCollectorUDP returns the address of the udp backend
func (c *Config) GetCollectorUDP() string {
	return read(c, func(c *Config) string { return c.CollectorUDP })
}

// GetEncoding returns the encoding of the udp backend
func (c *Config) GetEncoding() string {
	return read(c, func(c *Config) string { return c.Encoding })
}

// GetCollector returns the gRPC collector address
func (c *Config) GetCollector() string {
	return read(c, func(c *Config) string { return c.Collector })
}

// GetServiceKey returns the service key
func (c *Config) GetServiceKey() string {
	return read(c, func(c *Config) string { return c.ServiceKey })
}

// GetTrustedPath returns the path of the extra collector certificate
func (c *Config) GetTrustedPath() string {
	return read(c, func(c *Config) string { return c.TrustedPath })
}

// GetSkipVerify returns if the collector certificate is not verified
func (c *Config) GetSkipVerify() bool {
	return read(c, func(c *Config) bool { return c.SkipVerify })
}

// GetHostAlias returns the host alias
func (c *Config) GetHostAlias() string {
	return read(c, func(c *Config) string { return c.HostAlias })
}

// GetQueue returns a copy of the queue options
func (c *Config) GetQueue() QueueConfig {
	return read(c, func(c *Config) QueueConfig { return *c.Queue })
}
