package audit

import (
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// PointWriter is the subset of api.WriteAPI used by Writer.
type PointWriter interface {
	WritePoint(point *write.Point)
	Errors() <-chan error
	Flush()
}

var _ PointWriter = (api.WriteAPI)(nil)

// Writer batches points to InfluxDB and remembers when the last async write failed.
type Writer struct {
	api PointWriter

	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

func NewWriter(w PointWriter, log logrus.FieldLogger) *Writer {
	ww := &Writer{
		api:     w,
		lastErr: time.Now().Add(-24 * time.Hour),
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err == nil {
				continue
			}
			ww.mu.Lock()
			ww.lastErr = time.Now()
			ww.mu.Unlock()
			log.WithError(err).Warn("influx write error")
		}
	}()
	return ww
}

// Write queues p and counts it under status.
func (w *Writer) Write(status string, p *write.Point) {
	w.api.WritePoint(p)
	w.mu.Lock()
	w.counts[status]++
	w.mu.Unlock()
}

func (w *Writer) Flush() { w.api.Flush() }

// LastErrorAge is the time since the last write error.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

func (w *Writer) Count(status string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.counts[status]
}
