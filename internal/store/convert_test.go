package store

import (
	"errors"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
)

func TestRecordsToColumns_NilSchema(t *testing.T) {
	_, err := recordsToColumns(nil, []domain.Record{{"x": 1}})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("err = %v, want ErrInvalidSchema", err)
	}
}

func TestRecordsToColumns_CoercesNumericKinds(t *testing.T) {
	schema := testEntitySchema("memories")
	records := []domain.Record{
		// JSON decoding yields float64 for numbers and []any for vectors.
		{"text": "a", "create_time": float64(100), "embedding": []any{1.0, 0.0, 0.0, 0.0}},
		{"text": "b", "create_time": int(200), "embedding": []float64{0, 1, 0, 0}},
	}
	cols, err := recordsToColumns(schema, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byName := map[string]entity.Column{}
	for _, c := range cols {
		byName[c.Name()] = c
	}
	if byName["id"] != nil {
		t.Error("auto-ID field must be skipped")
	}
	ct := byName["create_time"]
	if ct == nil {
		t.Fatal("create_time column missing")
	}
	v, _ := ct.Get(1)
	if got, _ := v.(int64); got != 200 {
		t.Errorf("create_time[1] = %v, want 200", v)
	}
	if emb := byName["embedding"]; emb == nil || emb.Len() != 2 {
		t.Error("embedding column missing or short")
	}
}

func TestRecordsToColumns_MistypedValue(t *testing.T) {
	schema := testEntitySchema("memories")
	records := []domain.Record{
		{"text": 12345, "create_time": int64(1), "embedding": []float32{1, 0, 0, 0}},
	}
	_, err := recordsToColumns(schema, records)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("err = %v, want ErrInvalidSchema", err)
	}
}

func TestResultSetToRecords_Empty(t *testing.T) {
	records, err := resultSetToRecords(client.ResultSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestResultSetToRecords_ShortColumn(t *testing.T) {
	rs := client.ResultSet{
		entity.NewColumnInt64("id", []int64{1, 2}),
		entity.NewColumnVarChar("text", []string{"only-one"}),
	}
	_, err := resultSetToRecords(rs)
	if !errors.Is(err, domain.ErrMalformedResult) {
		t.Fatalf("err = %v, want ErrMalformedResult", err)
	}
}

func TestRecordCreateTime_Coercion(t *testing.T) {
	cases := []struct {
		name string
		rec  domain.Record
		want int64
	}{
		{"int64", domain.Record{"create_time": int64(5)}, 5},
		{"int", domain.Record{"create_time": 6}, 6},
		{"float64", domain.Record{"create_time": 7.9}, 7},
		{"absent", domain.Record{}, 0},
		{"junk", domain.Record{"create_time": "yesterday"}, 0},
	}
	for _, tc := range cases {
		if got := tc.rec.CreateTime(); got != tc.want {
			t.Errorf("%s: CreateTime() = %d, want %d", tc.name, got, tc.want)
		}
	}
}
