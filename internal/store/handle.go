package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
)

// Handle is the locally cached proxy for a remote collection. It holds a
// reference to the remote schema, not the data: the engine remains the
// source of truth and the handle tolerates remote state diverging.
type Handle struct {
	Name     string
	Loaded   bool
	HasIndex bool

	schema *entity.Schema
}

// vectorField returns the name of the first FLOAT_VECTOR field in the
// remote schema, or "" when the schema has none.
func (h *Handle) vectorField() string {
	if h.schema == nil {
		return ""
	}
	for _, f := range h.schema.Fields {
		if f.DataType == entity.FieldTypeFloatVector {
			return f.Name
		}
	}
	return ""
}

// scalarFields returns all non-vector field names, used to project search
// results without hauling vectors back.
func (h *Handle) scalarFields() []string {
	if h.schema == nil {
		return nil
	}
	names := make([]string, 0, len(h.schema.Fields))
	for _, f := range h.schema.Fields {
		if f.DataType == entity.FieldTypeFloatVector {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

// resolve returns the handle for name and guarantees load state. Cache
// hits still re-check the live load state: the remote can unload a
// collection behind the client's back, and that must not force a full
// reconnect. When lazy is false a cache miss fails with ErrNotFound
// instead of consulting the remote.
func (s *Store) resolve(ctx context.Context, name string, lazy bool) (*Handle, error) {
	h, cached := s.handles[name]
	if !cached {
		if !lazy {
			return nil, fmt.Errorf("collection %q not cached: %w", name, domain.ErrNotFound)
		}
		exists, err := s.conn.HasCollection(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("check existence of %q: %w: %w", name, domain.ErrRemoteOp, err)
		}
		if !exists {
			return nil, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
		}
		desc, err := s.conn.DescribeCollection(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w: %w", name, domain.ErrRemoteOp, err)
		}
		h = &Handle{Name: name, schema: desc.Schema}
		s.handles[name] = h
	}

	// The remote load state is authoritative, not the cached flag.
	state, err := s.conn.GetLoadState(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("load state of %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	switch state {
	case entity.LoadStateNotExist:
		// Dropped externally while we held a handle.
		delete(s.handles, name)
		return nil, fmt.Errorf("collection %q dropped remotely: %w", name, domain.ErrNotFound)
	case entity.LoadStateLoaded:
	default:
		s.log.Info("collection not loaded, loading now", zap.String("collection", name))
		if err := s.conn.LoadCollection(ctx, name, false); err != nil {
			return nil, fmt.Errorf("load %q: %w: %w", name, domain.ErrRemoteOp, err)
		}
	}
	h.Loaded = true
	return h, nil
}

// ensureSchema backfills the handle's remote schema reference if it was
// created without one.
func (s *Store) ensureSchema(ctx context.Context, h *Handle) error {
	if h.schema != nil {
		return nil
	}
	desc, err := s.conn.DescribeCollection(ctx, h.Name)
	if err != nil {
		return fmt.Errorf("describe %q: %w: %w", h.Name, domain.ErrRemoteOp, err)
	}
	h.schema = desc.Schema
	return nil
}

// Collections lists all remote collection names.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return nil, err
	}
	cols, err := s.conn.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w: %w", domain.ErrRemoteOp, err)
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names, nil
}

// LoadedCollections lists the remote collections currently resident in
// the engine's query-serving memory.
func (s *Store) LoadedCollections(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return nil, err
	}
	cols, err := s.conn.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w: %w", domain.ErrRemoteOp, err)
	}
	loaded := make([]string, 0, len(cols))
	for _, c := range cols {
		state, err := s.conn.GetLoadState(ctx, c.Name, nil)
		if err != nil {
			s.log.Warn("load state query failed",
				zap.String("collection", c.Name), zap.Error(err))
			continue
		}
		if state == entity.LoadStateLoaded {
			loaded = append(loaded, c.Name)
		}
	}
	return loaded, nil
}
