package store

import (
	"time"

	"github.com/mnemo-cloud/mnemovec/internal/metrics"
)

// observe starts a timer for an engine operation and returns a closure
// recording its outcome. Use as: defer observe("insert", name)(&err).
func observe(op, collection string) func(err *error) {
	start := time.Now()
	return func(err *error) {
		status := "ok"
		if *err != nil {
			status = "error"
		}
		metrics.EngineOpsTotal.WithLabelValues(op, collection, status).Inc()
		metrics.EngineOpDuration.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
	}
}
