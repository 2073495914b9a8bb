// Package engine defines the consumer interface over the Milvus Go SDK.
// The Conn interface is a structural subset of client.Client, so the real
// gRPC client satisfies it and tests substitute a mock.
package engine

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Conn is the capability set this layer consumes from the engine.
//
//nolint:interfacebloat // mirrors the engine's per-collection operation set
type Conn interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	ListCollections(ctx context.Context, opts ...client.ListCollectionOption) ([]*entity.Collection, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	DescribeCollection(ctx context.Context, collName string) (*entity.Collection, error)
	DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error
	CreateIndex(ctx context.Context, collName, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	DescribeIndex(ctx context.Context, collName, fieldName string, opts ...client.IndexOption) ([]entity.Index, error)
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	ReleaseCollection(ctx context.Context, collName string, opts ...client.ReleaseCollectionOption) error
	GetLoadState(ctx context.Context, collName string, partitionNames []string) (entity.LoadState, error)
	Insert(ctx context.Context, collName, partitionName string, columns ...entity.Column) (entity.Column, error)
	Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error
	Delete(ctx context.Context, collName, partitionName, expr string) error
	Query(ctx context.Context, collName string, partitionNames []string, expr string, outputFields []string, opts ...client.SearchQueryOptionFunc) (client.ResultSet, error)
	Search(ctx context.Context, collName string, partitionNames []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

// Compile-time check: the SDK client satisfies Conn.
var _ Conn = (client.Client)(nil)

// Dialer opens a connection to the engine. The store re-invokes it on
// demand when the connection was lost.
type Dialer func(ctx context.Context) (Conn, error)

// GRPCDialer returns a Dialer for the engine at host:port using the SDK
// gRPC client.
func GRPCDialer(host string, port int) Dialer {
	addr := fmt.Sprintf("%s:%d", host, port)
	return func(ctx context.Context) (Conn, error) {
		c, err := client.NewGrpcClient(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("dial engine at %s: %w", addr, err)
		}
		return c, nil
	}
}
