package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TimelordUK/mfollow/internal/source"
)

// Messages delivered from the follow tasks into the event loop
type (
	resetMsg   struct{ path string }
	appendMsg  struct{ line source.Line }
	prependMsg struct{ lines []source.Line }
	faultMsg   struct{ err error }
)

// ProgramSink forwards lines to a running tea.Program. Send is safe to call
// from any goroutine, so both cursors may use the sink directly; the model
// applies the changes on the event loop. Lines sent before Attach are
// dropped.
type ProgramSink struct {
	program atomic.Pointer[tea.Program]
}

// NewProgramSink creates a sink with no program attached
func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

// Attach sets the program that receives lines
func (s *ProgramSink) Attach(p *tea.Program) {
	s.program.Store(p)
}

func (s *ProgramSink) send(msg tea.Msg) {
	if p := s.program.Load(); p != nil {
		p.Send(msg)
	}
}

// Reset implements follow.Sink
func (s *ProgramSink) Reset(path string) { s.send(resetMsg{path: path}) }

// Append implements follow.Sink
func (s *ProgramSink) Append(line source.Line) { s.send(appendMsg{line: line}) }

// Prepend implements follow.Sink
func (s *ProgramSink) Prepend(lines []source.Line) {
	if len(lines) == 0 {
		return
	}
	s.send(prependMsg{lines: lines})
}

// Fault implements follow.FaultReporter
func (s *ProgramSink) Fault(err error) { s.send(faultMsg{err: err}) }
