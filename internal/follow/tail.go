package follow

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	apperrors "github.com/TimelordUK/mfollow/internal/errors"
	"github.com/TimelordUK/mfollow/internal/index"
	"github.com/TimelordUK/mfollow/internal/source"
)

// TailCursor reads complete lines forward from a growing file. Its offset
// only moves past a line once the terminator has been read, so a line that
// is still being written is re-read from its start on the next tick.
type TailCursor struct {
	file   *os.File
	reader *bufio.Reader
	offset atomic.Int64

	sink  Sink
	gate  *Gate
	wake  <-chan struct{}
	opts  Options
	log   *slog.Logger
	lines atomic.Int64
}

// NewTailCursor positions file at offset. The cursor owns file from here on
// and closes it when Run returns.
func NewTailCursor(file *os.File, offset int64, sink Sink, gate *Gate, opts Options) (*TailCursor, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, apperrors.NewIOFailure("seek", offset, err)
	}
	opts = opts.withDefaults()
	c := &TailCursor{
		file:   file,
		reader: bufio.NewReader(file),
		sink:   sink,
		gate:   gate,
		opts:   opts,
		log:    opts.Logger.With("task", "tail"),
	}
	c.offset.Store(offset)
	return c, nil
}

// Offset returns the position just past the last delivered line
func (c *TailCursor) Offset() int64 {
	return c.offset.Load()
}

// Lines returns how many lines the cursor has delivered
func (c *TailCursor) Lines() int64 {
	return c.lines.Load()
}

// Run polls until ctx is cancelled or the handle is closed underneath it
func (c *TailCursor) Run(ctx context.Context) error {
	defer c.file.Close()

	c.log.Debug("tail started", "offset", c.Offset())
	for {
		if ctx.Err() != nil {
			c.log.Debug("tail stopped", "offset", c.Offset(), "lines", c.Lines())
			return nil
		}

		if c.gate.Paused() {
			sleep(ctx, c.opts.PausePoll, nil)
			continue
		}

		line, ok, err := c.poll()
		switch {
		case err != nil:
			if apperrors.Is(err, os.ErrClosed) {
				return apperrors.NewIOFailure("read forward", c.Offset(), err)
			}
			c.log.Warn("tail read failed, retrying", "offset", c.Offset(), "error", err)
			sleep(ctx, c.opts.IdlePoll, nil)
		case !ok:
			sleep(ctx, c.opts.IdlePoll, c.wake)
		default:
			c.sink.Append(line)
			c.offset.Add(int64(line.Size))
			c.lines.Add(1)
		}
	}
}

// poll reads one line. ok is false when only part of a line, or nothing,
// is available yet; the handle is then rewound to the current offset.
func (c *TailCursor) poll() (source.Line, bool, error) {
	data, err := c.reader.ReadBytes('\n')
	if err == nil {
		return source.Line{Text: index.Decode(data), Size: len(data)}, true, nil
	}

	if rerr := c.rewind(); rerr != nil && !apperrors.Is(err, os.ErrClosed) {
		err = rerr
	}
	if err == io.EOF {
		return source.Line{}, false, nil
	}
	return source.Line{}, false, err
}

func (c *TailCursor) rewind() error {
	if _, err := c.file.Seek(c.Offset(), io.SeekStart); err != nil {
		return err
	}
	c.reader.Reset(c.file)
	return nil
}
