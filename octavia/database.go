package octavia

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Option configures a Database.
type Option func(*clientOptions)

type clientOptions struct {
	transport Transport
	logger    zerolog.Logger
	cache     Cache
	cacheTTL  time.Duration
}

// WithTransport sets the transport used for every call.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) {
		o.transport = t
	}
}

// WithHTTPClient uses an HTTPTransport built on c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.transport = NewHTTPTransport(&HTTPTransportConfig{HTTPClient: c})
	}
}

// WithLogger sets the logger. The default is the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithCache serves read calls from c for ttl. See CachingSender.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// Database is the entry point for database-level calls and the factory for
// Collections. It is safe for concurrent use.
type Database struct {
	config Config
	opts   clientOptions
	sender Sender
}

// NewDatabase creates a Database from connection options.
func NewDatabase(opts Options, options ...Option) (*Database, error) {
	config, err := NewConfig(opts)
	if err != nil {
		return nil, err
	}

	o := clientOptions{logger: log.Logger}
	for _, apply := range options {
		apply(&o)
	}
	if o.transport == nil {
		o.transport = NewHTTPTransport(nil)
	}

	return &Database{
		config: config,
		opts:   o,
		sender: newSender(config, o),
	}, nil
}

func newSender(config Config, o clientOptions) Sender {
	var sender Sender = NewRequestor(config, o.transport, o.logger)
	if o.cache != nil {
		sender = NewCachingSender(sender, o.cache, config, o.cacheTTL, o.logger)
	}
	return sender
}

// Config returns a copy of the connection configuration.
func (d *Database) Config() Config {
	return d.config.Clone()
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.config.database
}

// Info returns information about the database.
func (d *Database) Info(ctx context.Context) *Result {
	return d.sender.Send(ctx, TargetDatabase, MethodInfo, nil)
}

// Delete deletes the database.
func (d *Database) Delete(ctx context.Context) *Result {
	return d.sender.Send(ctx, TargetDatabase, MethodDelete, nil)
}

// CollectionExists reports, in the result data, whether the named
// collection exists.
func (d *Database) CollectionExists(ctx context.Context, collectionName string) *Result {
	return d.sender.Send(ctx, TargetDatabase, MethodCollectionExists, Payload{
		FieldCollectionName: collectionName,
	})
}

// Collection returns a handle on the named collection. Collections are
// encrypted unless Encrypt(false) is given. The handle captures a copy of
// the database configuration.
func (d *Database) Collection(name string, options ...CollectionOption) *Collection {
	return newCollection(name, d.config.Clone(), d.opts, options...)
}
