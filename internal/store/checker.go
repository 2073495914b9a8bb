package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
)

// CheckSchema compares the live schema of a collection against an
// expected one and returns the first divergence as a
// *domain.SchemaMismatchError. The live schema is described directly
// from the engine so stale cache entries cannot mask drift.
func (s *Store) CheckSchema(ctx context.Context, name string, expected domain.CollectionSchema) (err error) {
	defer observe("check_schema", name)(&err)
	if len(expected.Fields) == 0 {
		return fmt.Errorf("expected schema has no fields: %w", domain.ErrInvalidSchema)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return err
	}
	ok, err := s.conn.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("check %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	if !ok {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	coll, err := s.conn.DescribeCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("describe %q: %w: %w", name, domain.ErrRemoteOp, err)
	}

	actual := map[string]*entity.Field{}
	if coll.Schema != nil {
		for _, f := range coll.Schema.Fields {
			actual[f.Name] = f
		}
	}

	for _, want := range expected.Fields {
		got, ok := actual[want.Name]
		if !ok {
			return domain.NewSchemaMismatch(want.Name, domain.MismatchMissingField)
		}
		if got.DataType != entityFieldType(want.DType) {
			return domain.NewSchemaMismatch(want.Name, domain.MismatchType)
		}
		switch want.DType {
		case domain.DTypeVarChar:
			if got.TypeParams["max_length"] != strconv.Itoa(want.MaxLength) {
				return domain.NewSchemaMismatch(want.Name, domain.MismatchLength)
			}
		case domain.DTypeFloatVector:
			if got.TypeParams["dim"] != strconv.Itoa(want.Dim) {
				return domain.NewSchemaMismatch(want.Name, domain.MismatchDim)
			}
		}
		delete(actual, want.Name)
	}
	for extra := range actual {
		return domain.NewSchemaMismatch(extra, domain.MismatchExtraField)
	}

	s.log.Debug("schema consistent", zap.String("collection", name))
	return nil
}
