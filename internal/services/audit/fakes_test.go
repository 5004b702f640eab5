package audit

import (
	"sync"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakePointWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
	errs    chan error
}

func newFakePointWriter() *fakePointWriter {
	return &fakePointWriter{errs: make(chan error, 4)}
}

func (f *fakePointWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
}

func (f *fakePointWriter) Errors() <-chan error { return f.errs }

func (f *fakePointWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func (f *fakePointWriter) written() []*write.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*write.Point(nil), f.points...)
}

type fakeConn bool

func (c fakeConn) IsConnectionOpen() bool { return bool(c) }

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}
