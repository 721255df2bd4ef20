package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes and flushes buffered destinations after each one, so report lines
// appear while a run is still in progress.
type FlushingWriter struct {
	mutex       sync.Mutex
	destination io.Writer
	flusher     flusher
}

// NewFlushingWriter wraps writer. A nil writer yields nil and an existing FlushingWriter is returned as is.
func NewFlushingWriter(writer io.Writer) io.Writer {
	switch typedWriter := writer.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return typedWriter
	}
	flushingWriter := &FlushingWriter{destination: writer}
	if bufferedWriter, buffered := writer.(flusher); buffered {
		flushingWriter.flusher = bufferedWriter
	}
	return flushingWriter
}

// Write forwards data to the destination and flushes it when the destination buffers.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.destination == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	written, writeError := flushingWriter.destination.Write(data)
	if writeError != nil || flushingWriter.flusher == nil {
		return written, writeError
	}
	return written, flushingWriter.flusher.Flush()
}
