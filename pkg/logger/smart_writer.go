package logger

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const smartBufferSize = 256 * 1024

// SmartWriter buffers log output and flushes it when the buffer fills, on a
// timer, on Sync or Close, and immediately after an error or fatal event.
type SmartWriter struct {
	bufWriter *bufio.Writer
	mu        sync.Mutex
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

var _ zerolog.LevelWriter = (*SmartWriter)(nil)

// NewSmartWriter creates a new SmartWriter
func NewSmartWriter(w io.Writer, flushInterval time.Duration) *SmartWriter {
	sw := &SmartWriter{
		bufWriter: bufio.NewWriterSize(w, smartBufferSize),
		stop:      make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.runFlusher(flushInterval)
	return sw
}

// Write buffers p without inspecting it
func (sw *SmartWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.bufWriter.Write(p)
}

// WriteLevel is called by zerolog with the event level
func (sw *SmartWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	n, err := sw.bufWriter.Write(p)
	if err == nil && level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		err = sw.bufWriter.Flush()
	}
	return n, err
}

// Sync flushes the buffer
func (sw *SmartWriter) Sync() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.bufWriter.Flush()
}

// Close flushes and stops the background flusher
func (sw *SmartWriter) Close() error {
	sw.stopOnce.Do(func() { close(sw.stop) })
	sw.wg.Wait()
	return sw.Sync()
}

func (sw *SmartWriter) runFlusher(interval time.Duration) {
	defer sw.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = sw.Sync()
		case <-sw.stop:
			return
		}
	}
}
