package store

import (
	"context"
	"errors"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
	"github.com/mnemo-cloud/mnemovec/internal/engine"
)

func TestConnect_DialErrorPropagates(t *testing.T) {
	dialErr := errors.New("engine unreachable")
	s := New(func(context.Context) (engine.Conn, error) {
		return nil, dialErr
	}, nil)

	err := s.Connect(context.Background())
	if !errors.Is(err, domain.ErrConnectionFailed) {
		t.Fatalf("err = %v, want ErrConnectionFailed", err)
	}
	if !errors.Is(err, dialErr) {
		t.Errorf("err = %v, want wrapped dial error", err)
	}
}

func TestConnect_RefreshesCache(t *testing.T) {
	conn := &mockConn{
		listCollectionsFn: func(context.Context) ([]*entity.Collection, error) {
			return []*entity.Collection{{Name: "memories"}, {Name: "facts"}}, nil
		},
	}
	s := New(func(context.Context) (engine.Conn, error) { return conn, nil }, nil)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.handles) != 2 {
		t.Fatalf("cached handles = %d, want 2", len(s.handles))
	}
	for _, name := range []string{"memories", "facts"} {
		h := s.handles[name]
		if h == nil {
			t.Fatalf("handle %q not cached", name)
		}
		if !h.Loaded || !h.HasIndex {
			t.Errorf("handle %q: Loaded=%v HasIndex=%v, want both true", name, h.Loaded, h.HasIndex)
		}
	}
}

func TestConnect_SkipsUnindexedCollection(t *testing.T) {
	conn := &mockConn{
		listCollectionsFn: func(context.Context) ([]*entity.Collection, error) {
			return []*entity.Collection{{Name: "indexed"}, {Name: "bare"}}, nil
		},
		describeIndexFn: func(_ context.Context, coll, _ string) ([]entity.Index, error) {
			if coll == "bare" {
				return nil, nil
			}
			idx, _ := entity.NewIndexIvfFlat(entity.L2, 256)
			return []entity.Index{idx}, nil
		},
	}
	s := New(func(context.Context) (engine.Conn, error) { return conn, nil }, nil)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.handles["bare"] != nil {
		t.Error("unindexed collection must not be cached")
	}
	if s.handles["indexed"] == nil {
		t.Error("indexed collection must be cached")
	}
}

func TestConnect_ListFailureNonFatal(t *testing.T) {
	conn := &mockConn{
		listCollectionsFn: func(context.Context) ([]*entity.Collection, error) {
			return nil, errors.New("list timed out")
		},
	}
	s := New(func(context.Context) (engine.Conn, error) { return conn, nil }, nil)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect must survive a refresh failure, got %v", err)
	}
	if s.conn == nil {
		t.Error("connection must be kept despite refresh failure")
	}
	if len(s.handles) != 0 {
		t.Errorf("cached handles = %d, want 0", len(s.handles))
	}
}

func TestConnect_PerCollectionFailureIsolated(t *testing.T) {
	conn := &mockConn{
		listCollectionsFn: func(context.Context) ([]*entity.Collection, error) {
			return []*entity.Collection{{Name: "broken"}, {Name: "healthy"}}, nil
		},
		describeCollectionFn: func(_ context.Context, name string) (*entity.Collection, error) {
			if name == "broken" {
				return nil, errors.New("describe failed")
			}
			return &entity.Collection{Name: name, Schema: testEntitySchema(name)}, nil
		},
	}
	s := New(func(context.Context) (engine.Conn, error) { return conn, nil }, nil)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.handles["broken"] != nil {
		t.Error("failed collection must not be cached")
	}
	if s.handles["healthy"] == nil {
		t.Error("healthy collection must be cached")
	}
}

func TestEnsureConn_ReconnectsWhenLost(t *testing.T) {
	conn := &mockConn{}
	dials := 0
	s := New(func(context.Context) (engine.Conn, error) {
		dials++
		return conn, nil
	}, nil)

	// Simulate a lost connection; the next operation must redial.
	if _, err := s.Collections(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dials != 1 {
		t.Fatalf("dials = %d, want 1", dials)
	}

	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
	if _, err := s.Collections(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dials != 2 {
		t.Errorf("dials = %d, want 2 after reconnect", dials)
	}
}

func TestClose_BestEffort(t *testing.T) {
	conn := &mockConn{
		closeFn: func() error { return errors.New("broken pipe") },
	}
	s := newTestStore(conn)
	cacheHandle(s, "memories")

	s.Close()

	if s.conn != nil {
		t.Error("conn must be nil after Close")
	}
	if len(s.handles) != 0 {
		t.Error("handle cache must be cleared after Close")
	}
}

func TestClose_Idempotent(t *testing.T) {
	closes := 0
	conn := &mockConn{
		closeFn: func() error { closes++; return nil },
	}
	s := newTestStore(conn)

	s.Close()
	s.Close()
	if closes != 1 {
		t.Errorf("underlying Close calls = %d, want 1", closes)
	}
}
