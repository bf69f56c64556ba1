package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/mfollow/internal/follow"
	"github.com/TimelordUK/mfollow/internal/logging"
	"github.com/TimelordUK/mfollow/internal/source"
)

var (
	_ follow.Sink          = (*ProgramSink)(nil)
	_ follow.FaultReporter = (*ProgramSink)(nil)
	_ follow.Sink          = (*StreamSink)(nil)
	_ follow.FaultReporter = (*StreamSink)(nil)
)

func TestProgramSinkDropsBeforeAttach(t *testing.T) {
	s := NewProgramSink()
	assert.NotPanics(t, func() {
		s.Reset("app.log")
		s.Append(source.NewLine("x\n"))
		s.Prepend(nil)
		s.Fault(errors.New("boom"))
	})
}

func TestStreamSinkWritesAppendedLines(t *testing.T) {
	var out bytes.Buffer
	s := NewStreamSink(&out, logging.Discard())

	s.Reset("app.log")
	s.Append(source.NewLine("first\r\n"))
	s.Append(source.NewLine("second\n"))
	s.Prepend([]source.Line{source.NewLine("older\n")})
	s.Fault(errors.New("ignored"))

	assert.Equal(t, "first\nsecond\n", out.String())
	assert.Equal(t, 1, s.Dropped())
	assert.NoError(t, s.Err())
}

func TestStreamSinkStopsAfterWriteError(t *testing.T) {
	s := NewStreamSink(failingWriter{}, logging.Discard())
	s.Append(source.NewLine("a\n"))
	s.Append(source.NewLine("b\n"))
	assert.Error(t, s.Err())

	select {
	case <-s.Failed():
	default:
		t.Fatal("failed channel not closed")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStreamSinkLongLineWriteError(t *testing.T) {
	w := &countingWriter{}
	s := NewStreamSink(w, logging.Discard())

	s.Append(source.NewLine(strings.Repeat("x", 8192) + "\n"))
	require.ErrorContains(t, s.Err(), "broken pipe")
	assert.Equal(t, 1, w.calls)

	s.Append(source.NewLine("after\n"))
	assert.Equal(t, 1, w.calls)
}

type countingWriter struct{ calls int }

func (w *countingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}
