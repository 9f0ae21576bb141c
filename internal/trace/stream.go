package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	count  int
	closed bool
}

// NewStreamTracer creates a new StreamTracer. Chrome output opens the
// trace_event array right away.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	st := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n") //nolint:errcheck
	}
	return st
}

// Emit writes ev. Write errors are dropped: tracing never fails a run.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.format == FormatChrome && t.count > 0 {
		_, _ = io.WriteString(t.w, ",\n") //nolint:errcheck
	}
	t.count++
	_, _ = t.w.Write(data) //nolint:errcheck
}

// Flush calls Flush on the writer when it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close terminates Chrome output, flushes and closes the writer.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.format == FormatChrome {
		_, _ = io.WriteString(t.w, "\n]}\n") //nolint:errcheck
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
