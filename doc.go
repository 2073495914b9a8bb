// Package mnemovec provides a Go client for a Milvus-backed vector
// memory store: collection lifecycle with automatic index provisioning,
// batch inserts, filtered queries, nearest-neighbor search, recency
// retrieval and live schema verification.
//
// The client keeps a cache of collection handles over a single engine
// connection and reconciles it lazily against the remote state, so
// collections created, dropped or unloaded out of band are picked up on
// the next operation.
//
//	client, _ := mnemovec.New(ctx, mnemovec.WithAddress("localhost", 19530))
//	defer client.Close()
//
//	_ = client.CreateCollection(ctx, "memories", mnemovec.Schema{
//	    Fields: []mnemovec.Field{
//	        {Name: "id", DType: mnemovec.DTypeInt64, Primary: true, AutoID: true},
//	        {Name: "text", DType: mnemovec.DTypeVarChar, MaxLength: 65535},
//	        {Name: "embedding", DType: mnemovec.DTypeFloatVector, Dim: 1536},
//	    },
//	})
//	client.Insert(ctx, "memories", []mnemovec.Record{{"text": "hello", "embedding": vec}})
//	hits := client.Search(ctx, "memories", vec, 5, "")
//
// Read operations degrade to empty results when the engine misbehaves;
// collection creation and the initial connect surface their errors.
package mnemovec
