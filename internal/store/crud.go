package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
)

const (
	// searchNProbe is the IVF probe count used for every vector search.
	searchNProbe = 10
	// latestFetchWindow bounds the unfiltered query behind Latest; the
	// engine requires a limit on empty-expression queries. Rows beyond
	// the window are not considered for recency ordering.
	latestFetchWindow = 16384
)

// Insert stamps each record lacking create_time with the current Unix
// time, inserts the whole batch and flushes. The batch is not durable
// until the flush completes.
func (s *Store) Insert(ctx context.Context, name string, records []domain.Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	defer observe("insert", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return err
	}
	h, err := s.resolve(ctx, name, true)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx, h); err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, r := range records {
		if _, ok := r[domain.CreateTimeField]; !ok {
			r[domain.CreateTimeField] = now
		}
	}

	cols, err := recordsToColumns(h.schema, records)
	if err != nil {
		return fmt.Errorf("insert into %q: %w", name, err)
	}
	if _, err := s.conn.Insert(ctx, name, "", cols...); err != nil {
		return fmt.Errorf("insert into %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	if err := s.conn.Flush(ctx, name, false); err != nil {
		return fmt.Errorf("flush %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	s.log.Info("records inserted",
		zap.String("collection", name), zap.Int("count", len(records)))
	return nil
}

// Query returns the records matching a filter expression, projected to
// outputFields. The collection must already be cached; this path does
// not lazily create a handle.
func (s *Store) Query(ctx context.Context, name, expr string, outputFields []string) (_ []domain.Record, err error) {
	defer observe("query", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return nil, err
	}
	if _, err := s.resolve(ctx, name, false); err != nil {
		return nil, err
	}

	rs, err := s.conn.Query(ctx, name, nil, expr, outputFields)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	return resultSetToRecords(rs)
}

// Search runs a single-vector nearest-neighbor search under the L2
// metric, optionally restricted by a filter expression. Malformed hits
// are skipped with a warning rather than failing the search.
func (s *Store) Search(ctx context.Context, name string, vector []float32, topK int, expr string) (_ []domain.Hit, err error) {
	defer observe("search", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return nil, err
	}
	h, err := s.resolve(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx, h); err != nil {
		return nil, err
	}
	vecField := h.vectorField()
	if vecField == "" {
		return nil, fmt.Errorf("collection %q has no vector field: %w", name, domain.ErrInvalidSchema)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(searchNProbe)
	if err != nil {
		return nil, fmt.Errorf("search params: %w", err)
	}
	results, err := s.conn.Search(ctx, name, nil, expr, h.scalarFields(),
		[]entity.Vector{entity.FloatVector(vector)}, vecField, entity.L2, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	return hitsFromResults(results, s.log), nil
}

// Latest returns up to limit records ordered by create_time descending.
// The engine's query API has no server-side sort, so recency ordering is
// applied locally over a bounded fetch window.
func (s *Store) Latest(ctx context.Context, name string, limit int) (_ []domain.Record, err error) {
	defer observe("latest", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return nil, err
	}
	if _, err := s.resolve(ctx, name, true); err != nil {
		return nil, err
	}

	rs, err := s.conn.Query(ctx, name, nil, "", []string{"*"},
		client.WithLimit(latestFetchWindow))
	if err != nil {
		return nil, fmt.Errorf("query latest of %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	records, err := resultSetToRecords(rs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreateTime() > records[j].CreateTime()
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes the records matching a filter expression. The
// collection must already be cached; no handle is lazily created.
func (s *Store) Delete(ctx context.Context, name, expr string) (err error) {
	defer observe("delete", name)(&err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnLocked(ctx); err != nil {
		return err
	}
	if _, cached := s.handles[name]; !cached {
		return fmt.Errorf("collection %q not cached: %w", name, domain.ErrNotFound)
	}

	if err := s.conn.Delete(ctx, name, "", expr); err != nil {
		return fmt.Errorf("delete from %q: %w: %w", name, domain.ErrRemoteOp, err)
	}
	s.log.Info("records deleted",
		zap.String("collection", name), zap.String("expr", expr))
	return nil
}
