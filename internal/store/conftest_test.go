package store

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/mnemo-cloud/mnemovec/internal/engine"
)

// mockConn implements engine.Conn with overridable behavior. Unset
// functions fall back to benign defaults: collections exist, are loaded
// and operations succeed, so tests only wire what they assert on.
type mockConn struct {
	hasCollectionFn      func(ctx context.Context, name string) (bool, error)
	listCollectionsFn    func(ctx context.Context) ([]*entity.Collection, error)
	createCollectionFn   func(ctx context.Context, schema *entity.Schema, shardsNum int32) error
	describeCollectionFn func(ctx context.Context, name string) (*entity.Collection, error)
	dropCollectionFn     func(ctx context.Context, name string) error
	createIndexFn        func(ctx context.Context, coll, field string, idx entity.Index) error
	describeIndexFn      func(ctx context.Context, coll, field string) ([]entity.Index, error)
	loadCollectionFn     func(ctx context.Context, name string) error
	releaseCollectionFn  func(ctx context.Context, name string) error
	getLoadStateFn       func(ctx context.Context, name string) (entity.LoadState, error)
	insertFn             func(ctx context.Context, coll, partition string, columns ...entity.Column) (entity.Column, error)
	flushFn              func(ctx context.Context, name string) error
	deleteFn             func(ctx context.Context, coll, partition, expr string) error
	queryFn              func(ctx context.Context, coll string, partitions []string, expr string, outputFields []string, opts ...client.SearchQueryOptionFunc) (client.ResultSet, error)
	searchFn             func(ctx context.Context, coll string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam) ([]client.SearchResult, error)
	closeFn              func() error
}

var _ engine.Conn = (*mockConn)(nil)

func (m *mockConn) HasCollection(ctx context.Context, name string) (bool, error) {
	if m.hasCollectionFn == nil {
		return true, nil
	}
	return m.hasCollectionFn(ctx, name)
}

func (m *mockConn) ListCollections(ctx context.Context, _ ...client.ListCollectionOption) ([]*entity.Collection, error) {
	if m.listCollectionsFn == nil {
		return nil, nil
	}
	return m.listCollectionsFn(ctx)
}

func (m *mockConn) CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, _ ...client.CreateCollectionOption) error {
	if m.createCollectionFn == nil {
		return nil
	}
	return m.createCollectionFn(ctx, schema, shardsNum)
}

func (m *mockConn) DescribeCollection(ctx context.Context, name string) (*entity.Collection, error) {
	if m.describeCollectionFn == nil {
		return &entity.Collection{Name: name, Schema: testEntitySchema(name)}, nil
	}
	return m.describeCollectionFn(ctx, name)
}

func (m *mockConn) DropCollection(ctx context.Context, name string, _ ...client.DropCollectionOption) error {
	if m.dropCollectionFn == nil {
		return nil
	}
	return m.dropCollectionFn(ctx, name)
}

func (m *mockConn) CreateIndex(ctx context.Context, coll, field string, idx entity.Index, _ bool, _ ...client.IndexOption) error {
	if m.createIndexFn == nil {
		return nil
	}
	return m.createIndexFn(ctx, coll, field, idx)
}

func (m *mockConn) DescribeIndex(ctx context.Context, coll, field string, _ ...client.IndexOption) ([]entity.Index, error) {
	if m.describeIndexFn == nil {
		idx, _ := entity.NewIndexIvfFlat(entity.L2, 256)
		return []entity.Index{idx}, nil
	}
	return m.describeIndexFn(ctx, coll, field)
}

func (m *mockConn) LoadCollection(ctx context.Context, name string, _ bool, _ ...client.LoadCollectionOption) error {
	if m.loadCollectionFn == nil {
		return nil
	}
	return m.loadCollectionFn(ctx, name)
}

func (m *mockConn) ReleaseCollection(ctx context.Context, name string, _ ...client.ReleaseCollectionOption) error {
	if m.releaseCollectionFn == nil {
		return nil
	}
	return m.releaseCollectionFn(ctx, name)
}

func (m *mockConn) GetLoadState(ctx context.Context, name string, _ []string) (entity.LoadState, error) {
	if m.getLoadStateFn == nil {
		return entity.LoadStateLoaded, nil
	}
	return m.getLoadStateFn(ctx, name)
}

func (m *mockConn) Insert(ctx context.Context, coll, partition string, columns ...entity.Column) (entity.Column, error) {
	if m.insertFn == nil {
		return nil, nil
	}
	return m.insertFn(ctx, coll, partition, columns...)
}

func (m *mockConn) Flush(ctx context.Context, name string, _ bool, _ ...client.FlushOption) error {
	if m.flushFn == nil {
		return nil
	}
	return m.flushFn(ctx, name)
}

func (m *mockConn) Delete(ctx context.Context, coll, partition, expr string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, coll, partition, expr)
}

func (m *mockConn) Query(ctx context.Context, coll string, partitions []string, expr string, outputFields []string, opts ...client.SearchQueryOptionFunc) (client.ResultSet, error) {
	if m.queryFn == nil {
		return client.ResultSet{}, nil
	}
	return m.queryFn(ctx, coll, partitions, expr, outputFields, opts...)
}

func (m *mockConn) Search(ctx context.Context, coll string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, _ ...client.SearchQueryOptionFunc) ([]client.SearchResult, error) {
	if m.searchFn == nil {
		return nil, nil
	}
	return m.searchFn(ctx, coll, partitions, expr, outputFields, vectors, vectorField, metricType, topK, sp)
}

func (m *mockConn) Close() error {
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn()
}

// testEntitySchema is the remote schema the mock describes by default:
// auto-ID primary key, text payload, create_time and a 4-dim vector.
func testEntitySchema(name string) *entity.Schema {
	return &entity.Schema{
		CollectionName: name,
		Fields: []*entity.Field{
			{Name: "id", DataType: entity.FieldTypeInt64, PrimaryKey: true, AutoID: true},
			{Name: "text", DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "512"}},
			{Name: "create_time", DataType: entity.FieldTypeInt64},
			{Name: "embedding", DataType: entity.FieldTypeFloatVector, TypeParams: map[string]string{"dim": "4"}},
		},
	}
}

// newTestStore returns a connected Store wired to conn. The dialer hands
// out the same conn so reconnect paths stay observable.
func newTestStore(conn *mockConn) *Store {
	s := New(func(context.Context) (engine.Conn, error) {
		return conn, nil
	}, nil)
	s.conn = conn
	return s
}

// cacheHandle seeds the store's handle cache as a connect refresh would.
func cacheHandle(s *Store, name string) *Handle {
	h := &Handle{Name: name, Loaded: true, HasIndex: true, schema: testEntitySchema(name)}
	s.handles[name] = h
	return h
}
