package logger

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter hands lines to a single goroutine that fans them out to every
// sink. Sinks are flushed whenever the queue drains, so a burst of lines
// costs one syscall per sink.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan error
	done    chan struct{}
	closing sync.Once
	closed  atomic.Bool
	sinks   []*bufio.Writer

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(outs []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 << 10
	}
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	for _, out := range outs {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.fail(w.flush())
				return
			}
			w.fail(w.emit(line))
			if len(w.lines) == 0 {
				w.fail(w.flush())
			}
		case ack := <-w.flushes:
			ack <- w.flush()
		}
	}
}

// Write queues a copy of p. It blocks only while the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if w.closed.Load() {
		return errWriterClosed
	}
	if err := w.Err(); err != nil {
		return err
	}
	if len(p) > 0 {
		w.lines <- bytes.Clone(p)
	}
	return nil
}

// Flush waits until everything queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	if w.closed.Load() {
		return w.Err()
	}
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return <-ack
	case <-w.done:
		return w.Err()
	}
}

// Close drains the queue and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.closing.Do(func() {
		w.closed.Store(true)
		close(w.lines)
	})
	<-w.done
	return w.Err()
}

func (w *asyncWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *asyncWriter) emit(line []byte) error {
	var errs []error
	for _, s := range w.sinks {
		if _, err := s.Write(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
