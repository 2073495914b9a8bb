package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
)

// Default index provisioned for FLOAT_VECTOR fields when the caller
// supplies no index parameters.
const (
	defaultIndexNList = 256
)

// CreateCollection builds the remote collection from an abstract schema
// and provisions a vector index per FLOAT_VECTOR field. Creation is
// idempotent by name: an existing collection is a logged no-op. Index
// provisioning failures do not roll back the collection — it exists but
// may be unindexed, which is a known operational hazard.
func (s *Store) CreateCollection(ctx context.Context, name string, schema domain.CollectionSchema) (err error) {
	defer observe("create_collection", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return err
	}

	exists, err := s.conn.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("check existence of %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	if exists {
		s.log.Info("collection already created", zap.String("collection", name))
		return nil
	}

	if err := schema.Validate(); err != nil {
		return fmt.Errorf("collection %q: %w", name, err)
	}
	es := buildEntitySchema(name, schema)

	if err := s.conn.CreateCollection(ctx, es, 1); err != nil {
		return fmt.Errorf("create %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	h := &Handle{Name: name, schema: es}
	s.handles[name] = h
	s.log.Info("collection created", zap.String("collection", name))

	for _, f := range schema.Fields {
		if f.DType != domain.DTypeFloatVector {
			continue
		}
		idx, err := s.vectorIndex(f)
		if err != nil {
			s.log.Error("building index parameters failed",
				zap.String("collection", name), zap.String("field", f.Name), zap.Error(err))
			continue
		}
		s.log.Info("creating index",
			zap.String("collection", name), zap.String("field", f.Name))
		if err := s.conn.CreateIndex(ctx, name, f.Name, idx, false); err != nil {
			s.log.Error("index creation failed",
				zap.String("collection", name), zap.String("field", f.Name), zap.Error(err))
			continue
		}
		h.HasIndex = true
	}

	// Durability of the schema and index before the call returns.
	if err := s.conn.Flush(ctx, name, false); err != nil {
		return fmt.Errorf("flush %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	return nil
}

// vectorIndex maps caller index parameters to an engine index, defaulting
// to IVF_FLAT with L2 distance and nlist=256.
func (s *Store) vectorIndex(f domain.FieldSchema) (entity.Index, error) {
	if f.Index == nil {
		s.log.Warn("no index parameters supplied, defaulting to IVF_FLAT/L2",
			zap.String("field", f.Name), zap.Int("nlist", defaultIndexNList))
		idx, err := entity.NewIndexIvfFlat(entity.L2, defaultIndexNList)
		if err != nil {
			return nil, fmt.Errorf("default index: %w", err)
		}
		return idx, nil
	}

	params := make(map[string]string, len(f.Index.Params)+1)
	for k, v := range f.Index.Params {
		params[k] = v
	}
	if f.Index.Metric != "" {
		params["metric_type"] = f.Index.Metric
	}
	return entity.NewGenericIndex(f.Name, entity.IndexType(f.Index.Type), params), nil
}

// buildEntitySchema translates the abstract schema into the engine's.
// Nullable is not mapped: the engine SDK's field descriptor carries no
// nullable flag.
func buildEntitySchema(name string, schema domain.CollectionSchema) *entity.Schema {
	fields := make([]*entity.Field, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		ef := &entity.Field{
			Name:       f.Name,
			DataType:   entityFieldType(f.DType),
			PrimaryKey: f.Primary,
			AutoID:     f.AutoID,
		}
		switch f.DType {
		case domain.DTypeVarChar:
			ef.TypeParams = map[string]string{"max_length": strconv.Itoa(f.MaxLength)}
		case domain.DTypeFloatVector:
			ef.TypeParams = map[string]string{"dim": strconv.Itoa(f.Dim)}
		}
		fields = append(fields, ef)
	}
	return &entity.Schema{
		CollectionName: name,
		Description:    schema.Description,
		Fields:         fields,
	}
}

func entityFieldType(dt domain.DataType) entity.FieldType {
	switch dt {
	case domain.DTypeBool:
		return entity.FieldTypeBool
	case domain.DTypeInt64:
		return entity.FieldTypeInt64
	case domain.DTypeFloat:
		return entity.FieldTypeFloat
	case domain.DTypeDouble:
		return entity.FieldTypeDouble
	case domain.DTypeVarChar:
		return entity.FieldTypeVarChar
	case domain.DTypeFloatVector:
		return entity.FieldTypeFloatVector
	default:
		return entity.FieldTypeNone
	}
}

// DropCollection releases the cached handle, drops the remote collection
// and removes the cache entry, in that order: release-before-drop avoids
// dangling in-memory references to freed remote resources. Dropping a
// collection that does not exist remotely is a logged no-op.
func (s *Store) DropCollection(ctx context.Context, name string) (err error) {
	defer observe("drop_collection", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return err
	}

	exists, err := s.conn.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("check existence of %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	if !exists {
		s.log.Warn("dropping nonexistent collection", zap.String("collection", name))
		return nil
	}

	if _, cached := s.handles[name]; cached {
		if err := s.conn.ReleaseCollection(ctx, name); err != nil {
			return fmt.Errorf("release %q: %w: %w", name, domain.ErrRemoteOp, err)
		}
	}
	if err := s.conn.DropCollection(ctx, name); err != nil {
		return fmt.Errorf("drop %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	delete(s.handles, name)
	s.log.Info("collection dropped", zap.String("collection", name))
	return nil
}
