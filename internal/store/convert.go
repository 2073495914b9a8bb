package store

import (
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
)

// recordsToColumns turns row-oriented records into the engine's columnar
// insert format, one column per schema field. Every record must carry a
// value for every non-auto-ID field; a missing or mistyped value is a
// caller contract violation.
func recordsToColumns(schema *entity.Schema, records []domain.Record) ([]entity.Column, error) {
	if schema == nil {
		return nil, fmt.Errorf("no schema for collection: %w", domain.ErrInvalidSchema)
	}
	cols := make([]entity.Column, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		if f.AutoID {
			continue
		}
		col, err := buildColumn(f, records)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func buildColumn(f *entity.Field, records []domain.Record) (entity.Column, error) {
	switch f.DataType {
	case entity.FieldTypeInt64:
		vals := make([]int64, len(records))
		for i, r := range records {
			v, err := asInt64(r[f.Name])
			if err != nil {
				return nil, fieldErr(f.Name, i, err)
			}
			vals[i] = v
		}
		return entity.NewColumnInt64(f.Name, vals), nil

	case entity.FieldTypeVarChar:
		vals := make([]string, len(records))
		for i, r := range records {
			v, ok := r[f.Name].(string)
			if !ok {
				return nil, fieldErr(f.Name, i, fmt.Errorf("want string, got %T", r[f.Name]))
			}
			vals[i] = v
		}
		return entity.NewColumnVarChar(f.Name, vals), nil

	case entity.FieldTypeBool:
		vals := make([]bool, len(records))
		for i, r := range records {
			v, ok := r[f.Name].(bool)
			if !ok {
				return nil, fieldErr(f.Name, i, fmt.Errorf("want bool, got %T", r[f.Name]))
			}
			vals[i] = v
		}
		return entity.NewColumnBool(f.Name, vals), nil

	case entity.FieldTypeFloat:
		vals := make([]float32, len(records))
		for i, r := range records {
			v, err := asFloat64(r[f.Name])
			if err != nil {
				return nil, fieldErr(f.Name, i, err)
			}
			vals[i] = float32(v)
		}
		return entity.NewColumnFloat(f.Name, vals), nil

	case entity.FieldTypeDouble:
		vals := make([]float64, len(records))
		for i, r := range records {
			v, err := asFloat64(r[f.Name])
			if err != nil {
				return nil, fieldErr(f.Name, i, err)
			}
			vals[i] = v
		}
		return entity.NewColumnDouble(f.Name, vals), nil

	case entity.FieldTypeFloatVector:
		dim, _ := strconv.Atoi(f.TypeParams["dim"])
		vecs := make([][]float32, len(records))
		for i, r := range records {
			v, err := asFloatVector(r[f.Name])
			if err != nil {
				return nil, fieldErr(f.Name, i, err)
			}
			if dim == 0 {
				dim = len(v)
			}
			vecs[i] = v
		}
		return entity.NewColumnFloatVector(f.Name, dim, vecs), nil

	default:
		return nil, fmt.Errorf("field %q: unsupported dtype %v: %w", f.Name, f.DataType, domain.ErrInvalidSchema)
	}
}

func fieldErr(field string, row int, err error) error {
	return fmt.Errorf("record %d field %q: %w: %w", row, field, domain.ErrInvalidSchema, err)
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("want int64, got %T", v)
	}
}

func asFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("want float, got %T", v)
	}
}

// asFloatVector accepts the shapes a vector arrives in: typed []float32,
// []float64 from the caller, or []any after JSON decoding.
func asFloatVector(v any) ([]float32, error) {
	switch vec := v.(type) {
	case []float32:
		return vec, nil
	case []float64:
		out := make([]float32, len(vec))
		for i, x := range vec {
			out[i] = float32(x)
		}
		return out, nil
	case []any:
		out := make([]float32, len(vec))
		for i, x := range vec {
			f, err := asFloat64(x)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want float vector, got %T", v)
	}
}

// resultSetToRecords turns the engine's columnar query result back into
// row-oriented records.
func resultSetToRecords(rs client.ResultSet) ([]domain.Record, error) {
	if len(rs) == 0 {
		return []domain.Record{}, nil
	}
	rows := rs[0].Len()
	records := make([]domain.Record, 0, rows)
	for i := 0; i < rows; i++ {
		rec := make(domain.Record, len(rs))
		for _, col := range rs {
			if col.Len() <= i {
				return nil, fmt.Errorf("column %q has %d rows, want %d: %w",
					col.Name(), col.Len(), rows, domain.ErrMalformedResult)
			}
			v, err := col.Get(i)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w: %w",
					col.Name(), i, domain.ErrMalformedResult, err)
			}
			rec[col.Name()] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// hitsFromResults normalizes raw search results. A hit missing its id,
// distance or any entity value is skipped with a warning instead of
// aborting the whole search.
func hitsFromResults(results []client.SearchResult, log *zap.Logger) []domain.Hit {
	var hits []domain.Hit
	for _, sr := range results {
		for i := 0; i < sr.ResultCount; i++ {
			if sr.IDs == nil || sr.IDs.Len() <= i || len(sr.Scores) <= i {
				log.Warn("search hit missing id or distance, skipping", zap.Int("hit", i))
				continue
			}
			id, err := sr.IDs.Get(i)
			if err != nil {
				log.Warn("search hit id unreadable, skipping", zap.Int("hit", i), zap.Error(err))
				continue
			}

			ent := make(domain.Record, len(sr.Fields))
			ok := true
			for _, col := range sr.Fields {
				if col.Len() <= i {
					log.Warn("search hit entity column short, skipping",
						zap.Int("hit", i), zap.String("field", col.Name()))
					ok = false
					break
				}
				v, err := col.Get(i)
				if err != nil {
					log.Warn("search hit entity value unreadable, skipping",
						zap.Int("hit", i), zap.String("field", col.Name()), zap.Error(err))
					ok = false
					break
				}
				ent[col.Name()] = v
			}
			if !ok {
				continue
			}

			hits = append(hits, domain.Hit{
				ID:       id,
				Distance: sr.Scores[i],
				Entity:   ent,
			})
		}
	}
	return hits
}
