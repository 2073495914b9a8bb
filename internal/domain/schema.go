package domain

import "fmt"

// DataType is the abstract field type, mirroring the engine's type system.
type DataType string

// Supported field data types.
const (
	DTypeBool        DataType = "BOOL"
	DTypeInt64       DataType = "INT64"
	DTypeFloat       DataType = "FLOAT"
	DTypeDouble      DataType = "DOUBLE"
	DTypeVarChar     DataType = "VARCHAR"
	DTypeFloatVector DataType = "FLOAT_VECTOR"
)

// ParseDataType converts a wire-format string to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case DTypeBool, DTypeInt64, DTypeFloat, DTypeDouble, DTypeVarChar, DTypeFloatVector:
		return DataType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown dtype %q", ErrInvalidSchema, s)
	}
}

// IndexParams describes a vector index. Caller-supplied params are passed
// to the engine verbatim.
type IndexParams struct {
	Type   string            `json:"type" yaml:"type"`     // e.g. IVF_FLAT, HNSW
	Metric string            `json:"metric" yaml:"metric"` // e.g. L2, IP, COSINE
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// FieldSchema describes one field of a collection.
// MaxLength applies to VARCHAR, Dim and IndexParams to FLOAT_VECTOR.
type FieldSchema struct {
	Name      string       `json:"name" yaml:"name"`
	DType     DataType     `json:"dtype" yaml:"dtype"`
	Primary   bool         `json:"is_primary,omitempty" yaml:"is_primary,omitempty"`
	AutoID    bool         `json:"auto_id,omitempty" yaml:"auto_id,omitempty"`
	Nullable  bool         `json:"is_nullable,omitempty" yaml:"is_nullable,omitempty"`
	MaxLength int          `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Dim       int          `json:"dim,omitempty" yaml:"dim,omitempty"`
	Index     *IndexParams `json:"index_params,omitempty" yaml:"index_params,omitempty"`
}

// CollectionSchema is an ordered field list plus an optional description.
type CollectionSchema struct {
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldSchema `json:"fields" yaml:"fields"`
}

// Validate checks the caller contract: VARCHAR needs MaxLength,
// FLOAT_VECTOR needs Dim. Primary-key uniqueness is enforced by the
// engine, not re-validated here.
func (s CollectionSchema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field with empty name", ErrInvalidSchema)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.DType {
		case DTypeVarChar:
			if f.MaxLength <= 0 {
				return fmt.Errorf("%w: VARCHAR field %q requires max_length", ErrInvalidSchema, f.Name)
			}
		case DTypeFloatVector:
			if f.Dim <= 0 {
				return fmt.Errorf("%w: FLOAT_VECTOR field %q requires dim", ErrInvalidSchema, f.Name)
			}
		case DTypeBool, DTypeInt64, DTypeFloat, DTypeDouble:
		default:
			return fmt.Errorf("%w: field %q has unknown dtype %q", ErrInvalidSchema, f.Name, f.DType)
		}
	}
	return nil
}

// VectorField returns the first FLOAT_VECTOR field name, or "" if none.
func (s CollectionSchema) VectorField() string {
	for _, f := range s.Fields {
		if f.DType == DTypeFloatVector {
			return f.Name
		}
	}
	return ""
}
