package logx

import (
	"io"
	"sync"
)

// WriterSink writes one line per record to w (a UART console, a rotating file).
// Write errors are dropped: logging must never change control flow.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{w: w} }

func (s *WriterSink) Emit(lvl Level, msg string, fields []Field) {
	s.mu.Lock()
	s.buf = AppendLine(s.buf[:0], lvl, msg, fields)
	_, _ = s.w.Write(s.buf)
	s.mu.Unlock()
}

// Tee fans a record out to several sinks.
type Tee []Sink

func (t Tee) Emit(lvl Level, msg string, fields []Field) {
	for _, s := range t {
		if s != nil {
			s.Emit(lvl, msg, fields)
		}
	}
}
