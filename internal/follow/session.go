package follow

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/TimelordUK/mfollow/internal/errors"
	"github.com/TimelordUK/mfollow/internal/index"
	appio "github.com/TimelordUK/mfollow/internal/io"
	"github.com/TimelordUK/mfollow/internal/logging"
	"github.com/TimelordUK/mfollow/internal/source"
)

// State is a point-in-time view of the active session for display
type State struct {
	Active      bool
	SessionID   string
	Path        string
	Paused      bool
	OpenedAt    time.Time
	FileSize    int64 // size when opened
	SplitOffset int64 // boundary between history and tail at open

	TailOffset    int64
	TailLines     int64
	HistoryOffset int64
	HistoryLines  int64
	HistoryDone   bool
}

// Session is one opened file with its running cursors
type Session struct {
	id       string
	path     string
	size     int64
	split    int64
	openedAt time.Time

	tail    *TailCursor
	history *HistoryCursor

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Streamer follows one file at a time, feeding a Sink. Open and Stop are
// serialized; Pause, Resume and State may be called from anywhere.
type Streamer struct {
	sink Sink
	opts Options
	log  *slog.Logger
	gate Gate

	mu      sync.Mutex
	current atomic.Pointer[Session]
}

// NewStreamer creates an idle streamer
func NewStreamer(sink Sink, opts Options) *Streamer {
	opts = opts.withDefaults()
	return &Streamer{
		sink: sink,
		opts: opts,
		log:  opts.Logger,
	}
}

// Open stops any running session and starts following path. The most
// recent InitialLines complete lines are appended to the sink before Open
// returns; history backfill and tailing then run in the background.
func (s *Streamer) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stopLocked(); err != nil {
		s.log.Warn("previous session did not stop cleanly", "error", err)
	}

	start := time.Now()
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.NewFileOpenError(path, err)
	}
	if !info.Mode().IsRegular() {
		return apperrors.NewNotRegularError(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewFileOpenError(path, err)
	}

	sess := &Session{
		id:       uuid.NewString(),
		path:     path,
		size:     info.Size(),
		openedAt: start,
		done:     make(chan struct{}),
	}
	log := s.log.With("session", sess.id, "path", path)

	var (
		initial []source.Line
		mapped  *appio.MappedFile
	)
	if !s.opts.FullFile {
		mapped, err = appio.OpenMapped(path)
		if err != nil {
			file.Close()
			return apperrors.NewFileOpenError(path, err)
		}
		sess.size = mapped.Size()
		initial, sess.split = s.initialWindow(mapped, log)
	}

	tail, err := NewTailCursor(file, sess.split, s.sink, &s.gate, s.opts)
	if err != nil {
		file.Close()
		if mapped != nil {
			mapped.Close()
		}
		return apperrors.NewFileOpenError(path, err)
	}
	sess.tail = tail

	if mapped != nil {
		if s.opts.NoHistory {
			mapped.Close()
		} else {
			sess.history = NewHistoryCursor(mapped, sess.split, s.sink, &s.gate, s.opts)
		}
	}

	s.sink.Reset(path)
	for _, line := range initial {
		s.sink.Append(line)
	}
	s.gate.Resume()

	s.start(sess, log)
	s.current.Store(sess)

	log.Info("session opened",
		"size", sess.size,
		"split", sess.split,
		"initial_lines", len(initial),
		logging.Since(start),
	)
	return nil
}

// initialWindow reads the last InitialLines complete lines. A trailing line
// without a terminator is left for the tail to deliver once it is finished.
// Read failures degrade to an empty window.
func (s *Streamer) initialWindow(mapped *appio.MappedFile, log *slog.Logger) ([]source.Line, int64) {
	end, err := index.CompleteEnd(mapped, mapped.Size(), s.opts.ChunkSize)
	if err != nil {
		log.Warn("locate last complete line", "error", err)
		return nil, mapped.Size()
	}

	lines, offset, err := index.ReadBackward(mapped, end, s.opts.InitialLines, s.opts.ChunkSize)
	if err != nil {
		log.Warn("initial read failed, starting with an empty view", "error", err)
		return nil, end
	}
	return lines, offset
}

func (s *Streamer) start(sess *Session, log *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	var g errgroup.Group
	if s.opts.Notify {
		if n, err := newNotifier(sess.path, log); err != nil {
			log.Warn("file notifications unavailable, polling only", "error", err)
		} else {
			sess.tail.wake = n.wake
			g.Go(s.guard(ctx, "notify", n.Run, log))
		}
	}
	g.Go(s.guard(ctx, "tail", sess.tail.Run, log))
	if sess.history != nil {
		g.Go(s.guard(ctx, "history", sess.history.Run, log))
	}

	go func() {
		sess.err = g.Wait()
		close(sess.done)
	}()
}

// guard runs a task so that neither its error nor a panic escapes
// unreported. Each task ends on its own; one failing does not stop the
// others.
func (s *Streamer) guard(ctx context.Context, task string, run func(context.Context) error, log *slog.Logger) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.NewPanicError(task, r)
			} else if err != nil {
				err = apperrors.Wrap(err, task+" task")
			}
			if err != nil {
				log.Error("task failed", "task", task, "error", err)
				reportFault(s.sink, err)
			}
		}()
		return run(ctx)
	}
}

// Stop cancels the running session and waits for its tasks. It is a no-op
// when nothing is open. A task that does not exit within the join timeout
// is reported as ErrJoinTimeout.
func (s *Streamer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Streamer) stopLocked() error {
	sess := s.current.Swap(nil)
	if sess == nil {
		return nil
	}

	sess.cancel()
	timer := time.NewTimer(s.opts.JoinTimeout)
	defer timer.Stop()

	select {
	case <-sess.done:
		s.log.Info("session stopped", "session", sess.id, "path", sess.path, "task_error", sess.err)
		return nil
	case <-timer.C:
		err := apperrors.ErrJoinTimeout
		s.log.Error("session tasks did not stop", "session", sess.id, "timeout", s.opts.JoinTimeout)
		reportFault(s.sink, err)
		return err
	}
}

// Pause halts both cursors without losing their positions
func (s *Streamer) Pause() { s.gate.Pause() }

// Resume continues both cursors from where they paused
func (s *Streamer) Resume() { s.gate.Resume() }

// Toggle flips the pause state and returns whether it is now paused
func (s *Streamer) Toggle() bool { return s.gate.Toggle() }

// IsPaused reports the shared pause state
func (s *Streamer) IsPaused() bool { return s.gate.Paused() }

// Path returns the followed file, or "" when idle
func (s *Streamer) Path() string {
	if sess := s.current.Load(); sess != nil {
		return sess.path
	}
	return ""
}

// SessionID returns the id of the active session, or "" when idle
func (s *Streamer) SessionID() string {
	if sess := s.current.Load(); sess != nil {
		return sess.id
	}
	return ""
}

// State returns the current offsets and flags
func (s *Streamer) State() State {
	st := State{Paused: s.gate.Paused()}

	sess := s.current.Load()
	if sess == nil {
		return st
	}

	st.Active = true
	st.SessionID = sess.id
	st.Path = sess.path
	st.OpenedAt = sess.openedAt
	st.FileSize = sess.size
	st.SplitOffset = sess.split
	st.TailOffset = sess.tail.Offset()
	st.TailLines = sess.tail.Lines()

	if sess.history != nil {
		st.HistoryOffset = sess.history.Offset()
		st.HistoryLines = sess.history.Lines()
		st.HistoryDone = sess.history.Finished()
	} else {
		st.HistoryOffset = sess.split
		st.HistoryDone = sess.split == 0
	}
	return st
}
