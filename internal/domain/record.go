package domain

// CreateTimeField is stamped onto every inserted record lacking it,
// establishing insertion-order provenance independent of the primary key.
const CreateTimeField = "create_time"

// Record is one row keyed by field name. Records are ephemeral and never
// cached by this layer.
type Record map[string]any

// CreateTime returns the record's create_time as Unix seconds, or 0 when
// absent or non-numeric.
func (r Record) CreateTime() int64 {
	switch v := r[CreateTimeField].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Hit is a single nearest-neighbor search result. Lower distance means
// higher similarity under the L2 metric.
type Hit struct {
	ID       any     `json:"id"`
	Distance float32 `json:"distance"`
	Entity   Record  `json:"entity"`
}
