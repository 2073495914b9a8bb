package domain

import (
	"errors"
	"testing"
)

func validSchema() CollectionSchema {
	return CollectionSchema{
		Fields: []FieldSchema{
			{Name: "id", DType: DTypeInt64, Primary: true, AutoID: true},
			{Name: "text", DType: DTypeVarChar, MaxLength: 256},
			{Name: "embedding", DType: DTypeFloatVector, Dim: 8},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validSchema().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CollectionSchema)
	}{
		{"no fields", func(s *CollectionSchema) { s.Fields = nil }},
		{"empty name", func(s *CollectionSchema) { s.Fields[0].Name = "" }},
		{"duplicate name", func(s *CollectionSchema) { s.Fields[1].Name = "id" }},
		{"varchar without max_length", func(s *CollectionSchema) { s.Fields[1].MaxLength = 0 }},
		{"vector without dim", func(s *CollectionSchema) { s.Fields[2].Dim = 0 }},
		{"unknown dtype", func(s *CollectionSchema) { s.Fields[0].DType = "INT8" }},
	}
	for _, tc := range cases {
		s := validSchema()
		tc.mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidSchema) {
			t.Errorf("%s: err = %v, want ErrInvalidSchema", tc.name, err)
		}
	}
}

func TestParseDataType(t *testing.T) {
	if dt, err := ParseDataType("FLOAT_VECTOR"); err != nil || dt != DTypeFloatVector {
		t.Errorf("ParseDataType(FLOAT_VECTOR) = %v, %v", dt, err)
	}
	if _, err := ParseDataType("TENSOR"); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("unknown dtype err = %v, want ErrInvalidSchema", err)
	}
}

func TestVectorField(t *testing.T) {
	if got := validSchema().VectorField(); got != "embedding" {
		t.Errorf("VectorField() = %q, want embedding", got)
	}
	s := CollectionSchema{Fields: []FieldSchema{{Name: "id", DType: DTypeInt64}}}
	if got := s.VectorField(); got != "" {
		t.Errorf("VectorField() = %q, want empty", got)
	}
}

func TestSchemaMismatchError(t *testing.T) {
	err := NewSchemaMismatch("embedding", MismatchDim)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
	var mm *SchemaMismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("err = %v, want *SchemaMismatchError", err)
	}
	if mm.Field != "embedding" || mm.Kind != MismatchDim {
		t.Errorf("mismatch = %+v", mm)
	}
}
