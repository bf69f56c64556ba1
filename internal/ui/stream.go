package ui

import (
	"bufio"
	"io"
	"log/slog"
	"sync"

	"github.com/TimelordUK/mfollow/internal/source"
)

// StreamSink writes appended lines to a writer, for output that is not a
// terminal. A stream cannot be inserted into at the front, so history
// batches are counted and dropped; streamers feeding it run without history.
type StreamSink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	log     *slog.Logger
	dropped int
	err     error
	failed  chan struct{}
}

// NewStreamSink creates a sink writing to w
func NewStreamSink(w io.Writer, logger *slog.Logger) *StreamSink {
	return &StreamSink{w: bufio.NewWriter(w), log: logger, failed: make(chan struct{})}
}

// Reset implements follow.Sink
func (s *StreamSink) Reset(path string) {
	s.log.Debug("streaming file", "path", path)
}

// Append implements follow.Sink. Output is flushed per line so a reader on
// the other end of a pipe sees lines as they arrive.
func (s *StreamSink) Append(line source.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}

	if err := s.writeLine(line.Content()); err != nil {
		s.err = err
		close(s.failed)
		s.log.Error("write output", "error", err)
	}
}

func (s *StreamSink) writeLine(text string) error {
	if _, err := s.w.WriteString(text); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// Prepend implements follow.Sink
func (s *StreamSink) Prepend(lines []source.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped += len(lines)
}

// Fault implements follow.FaultReporter
func (s *StreamSink) Fault(err error) {
	s.log.Error("follow fault", "error", err)
}

// Err returns the first write error, if any
func (s *StreamSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Failed is closed once writing has failed, for example on a closed pipe
func (s *StreamSink) Failed() <-chan struct{} {
	return s.failed
}

// Dropped returns how many history lines were discarded
func (s *StreamSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
