// Package store implements the vector store access layer: a single engine
// connection, a guarded cache of collection handles, collection lifecycle,
// mutation and retrieval operations, and a schema consistency checker.
//
// A Store keeps a local view (handles, connection) consistent with the
// remote engine, which can unload or drop collections out of band. The
// remote state is authoritative; cached handles are weak references.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
	"github.com/mnemo-cloud/mnemovec/internal/engine"
	"github.com/mnemo-cloud/mnemovec/internal/metrics"
)

// Store is the vector store client. All exported methods serialize on an
// internal mutex: one call is active at a time, which is the exclusion
// discipline the handle cache relies on.
type Store struct {
	mu      sync.Mutex
	dial    engine.Dialer
	conn    engine.Conn // nil while disconnected
	handles map[string]*Handle
	log     *zap.Logger
}

// New creates a Store. No connection is made until Connect or the first
// operation.
func New(dial engine.Dialer, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		dial:    dial,
		handles: make(map[string]*Handle),
		log:     log,
	}
}

// Connect establishes the engine connection and refreshes the handle
// cache from the remote collection list. Connection failure propagates;
// per-collection refresh failures are logged and skipped.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(ctx)
}

func (s *Store) connectLocked(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		s.log.Error("engine connection failed", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrConnectionFailed, err)
	}
	s.conn = conn
	s.log.Info("connected to engine")

	s.handles = make(map[string]*Handle)
	cols, err := conn.ListCollections(ctx)
	if err != nil {
		// The connection itself is usable; an empty cache just means
		// handles are resolved lazily on first access.
		s.log.Error("listing collections during refresh failed", zap.Error(err))
		return nil
	}
	for _, col := range cols {
		if err := s.primeHandle(ctx, col.Name); err != nil {
			s.log.Warn("skipping collection during refresh",
				zap.String("collection", col.Name), zap.Error(err))
		}
	}
	s.log.Info("handle cache refreshed", zap.Int("collections", len(s.handles)))
	return nil
}

// primeHandle loads one remote collection into the cache during a
// refresh. Collections without an index are skipped: they cannot be
// loaded into the engine's query-serving memory.
func (s *Store) primeHandle(ctx context.Context, name string) error {
	exists, err := s.conn.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("listed collection vanished: %w", domain.ErrNotFound)
	}

	desc, err := s.conn.DescribeCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	h := &Handle{Name: name, schema: desc.Schema}

	vecField := h.vectorField()
	if vecField == "" {
		return fmt.Errorf("no vector field, not loadable")
	}
	indexes, err := s.conn.DescribeIndex(ctx, name, vecField)
	if err != nil || len(indexes) == 0 {
		s.log.Warn("collection has no index, skipping load",
			zap.String("collection", name))
		return nil
	}
	h.HasIndex = true

	if err := s.conn.LoadCollection(ctx, name, false); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	h.Loaded = true
	s.handles[name] = h
	s.log.Debug("collection loaded into cache", zap.String("collection", name))
	return nil
}

// ensureConnLocked is idempotent: a no-op when connected, otherwise a
// full reconnect. Every operation funnels through it, so transient
// disconnection is self-healing.
func (s *Store) ensureConnLocked(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}
	s.log.Warn("engine connection lost, reconnecting")
	metrics.EngineReconnectsTotal.Inc()
	return s.connectLocked(ctx)
}

// Close disconnects from the engine and clears the handle cache.
// Teardown is best-effort: disconnect failures are logged, never raised.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		s.log.Error("engine disconnect failed", zap.Error(err))
	} else {
		s.log.Info("disconnected from engine")
	}
	s.conn = nil
	s.handles = make(map[string]*Handle)
}
