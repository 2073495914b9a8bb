package mnemovec

import (
	"context"
	"time"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
	"github.com/mnemo-cloud/mnemovec/internal/engine"
	"github.com/mnemo-cloud/mnemovec/internal/store"
)

// Schema describes a collection layout.
type Schema = domain.CollectionSchema

// Field describes a single collection field.
type Field = domain.FieldSchema

// IndexParams describes vector index parameters.
type IndexParams = domain.IndexParams

// Record is a schemaless row keyed by field name.
type Record = domain.Record

// Hit is a single search result.
type Hit = domain.Hit

// DataType identifies a field's abstract type.
type DataType = domain.DataType

// Field data types.
const (
	DTypeBool        = domain.DTypeBool
	DTypeInt64       = domain.DTypeInt64
	DTypeFloat       = domain.DTypeFloat
	DTypeDouble      = domain.DTypeDouble
	DTypeVarChar     = domain.DTypeVarChar
	DTypeFloatVector = domain.DTypeFloatVector
)

// storeAPI is the store surface the facade consumes.
type storeAPI interface {
	Connect(ctx context.Context) error
	Close()
	CreateCollection(ctx context.Context, name string, schema domain.CollectionSchema) error
	DropCollection(ctx context.Context, name string) error
	Collections(ctx context.Context) ([]string, error)
	LoadedCollections(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, name string, records []domain.Record) error
	Query(ctx context.Context, name, expr string, outputFields []string) ([]domain.Record, error)
	Search(ctx context.Context, name string, vector []float32, topK int, expr string) ([]domain.Hit, error)
	Latest(ctx context.Context, name string, limit int) ([]domain.Record, error)
	Delete(ctx context.Context, name, expr string) error
	CheckSchema(ctx context.Context, name string, expected domain.CollectionSchema) error
}

// Client is the mnemovec SDK entry point. Read operations degrade to
// empty results on failure and mutations other than collection creation
// are absorbed after logging, so callers can treat the store as
// best-effort memory. Errors that indicate misuse (invalid schema,
// unreachable engine at startup) still propagate.
type Client struct {
	store storeAPI
	obs   *observer
}

// New creates a mnemovec Client and connects to the vector engine.
// The provided context bounds the initial dial and cache warm-up.
// A connection failure is returned, not absorbed.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		host: "localhost",
		port: 19530,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	dial := cfg.dial
	if dial == nil {
		dial = engine.GRPCDialer(cfg.host, cfg.port)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	st := store.New(dial, cfg.logger)
	if err := st.Connect(ctx); err != nil {
		return nil, err
	}
	return &Client{store: st, obs: obs}, nil
}

// Close releases the engine connection.
func (c *Client) Close() {
	c.store.Close()
}

// CreateCollection creates a collection with a vector index. Unlike the
// read paths, creation failures propagate: a caller that cannot create
// its collection has nothing to degrade to.
func (c *Client) CreateCollection(ctx context.Context, name string, schema Schema) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("create_collection", start, err) }()

	return c.store.CreateCollection(ctx, name, schema)
}

// DropCollection removes a collection. Failures are absorbed.
func (c *Client) DropCollection(ctx context.Context, name string) {
	start := time.Now()
	err := c.store.DropCollection(ctx, name)
	c.obs.observe("drop_collection", start, err)
}

// Collections lists all collections. Returns an empty slice on failure.
func (c *Client) Collections(ctx context.Context) []string {
	start := time.Now()
	names, err := c.store.Collections(ctx)
	c.obs.observe("collections", start, err)
	if err != nil {
		return []string{}
	}
	return names
}

// LoadedCollections lists collections currently loaded for serving.
// Returns an empty slice on failure.
func (c *Client) LoadedCollections(ctx context.Context) []string {
	start := time.Now()
	names, err := c.store.LoadedCollections(ctx)
	c.obs.observe("loaded_collections", start, err)
	if err != nil {
		return []string{}
	}
	return names
}

// Insert writes a batch of records. Failures are absorbed.
func (c *Client) Insert(ctx context.Context, name string, records []Record) {
	start := time.Now()
	err := c.store.Insert(ctx, name, records)
	c.obs.observe("insert", start, err)
}

// Query returns records matching a filter expression.
// Returns an empty slice on failure.
func (c *Client) Query(ctx context.Context, name, expr string, outputFields []string) []Record {
	start := time.Now()
	records, err := c.store.Query(ctx, name, expr, outputFields)
	c.obs.observe("query", start, err)
	if err != nil {
		return []Record{}
	}
	return records
}

// Search runs a nearest-neighbor search. Returns an empty slice on failure.
func (c *Client) Search(ctx context.Context, name string, vector []float32, topK int, expr string) []Hit {
	start := time.Now()
	hits, err := c.store.Search(ctx, name, vector, topK, expr)
	c.obs.observe("search", start, err)
	if err != nil {
		return []Hit{}
	}
	return hits
}

// Latest returns up to limit most recently created records.
// Returns an empty slice on failure.
func (c *Client) Latest(ctx context.Context, name string, limit int) []Record {
	start := time.Now()
	records, err := c.store.Latest(ctx, name, limit)
	c.obs.observe("latest", start, err)
	if err != nil {
		return []Record{}
	}
	return records
}

// Delete removes records matching a filter expression. Failures are absorbed.
func (c *Client) Delete(ctx context.Context, name, expr string) {
	start := time.Now()
	err := c.store.Delete(ctx, name, expr)
	c.obs.observe("delete", start, err)
}

// CheckSchema reports whether the live collection schema matches the
// expected one. Any failure, including a missing collection, reads as
// inconsistent.
func (c *Client) CheckSchema(ctx context.Context, name string, expected Schema) bool {
	start := time.Now()
	err := c.store.CheckSchema(ctx, name, expected)
	c.obs.observe("check_schema", start, err)
	return err == nil
}
