package dispatch

import (
	"time"

	"github.com/concave-dev/guestbook/internal/history"
)

// RecordStore persists batch records as they move through the queue.
// Implemented by history.Store.
type RecordStore interface {
	Save(rec *history.Record) error
}

// Recorder receives queue and batch lifecycle measurements.
// Implemented by metrics.Metrics.
type Recorder interface {
	BatchFinished(status string, d time.Duration)
	SetQueueDepth(n int)
}
