package follow

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	apperrors "github.com/TimelordUK/mfollow/internal/errors"
	"github.com/TimelordUK/mfollow/internal/index"
)

// ReaderAtCloser is the byte handle the history cursor walks
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}

// sizer is implemented by handles that can report the size of the file on
// disk, which shrinks when the file is truncated under the walk
type sizer interface {
	CurrentSize() (int64, error)
}

// HistoryCursor walks a file backward from the split point in batches,
// prepending each batch to the sink until it reaches the start of the file.
// The content before the split point does not change, so once the cursor
// reaches offset 0 it is finished for good.
type HistoryCursor struct {
	src    ReaderAtCloser
	offset atomic.Int64
	done   atomic.Bool
	lines  atomic.Int64

	sink Sink
	gate *Gate
	opts Options
	log  *slog.Logger
}

// NewHistoryCursor creates a cursor ending at offset. The cursor owns src
// and closes it when Run returns.
func NewHistoryCursor(src ReaderAtCloser, offset int64, sink Sink, gate *Gate, opts Options) *HistoryCursor {
	opts = opts.withDefaults()
	c := &HistoryCursor{
		src:  src,
		sink: sink,
		gate: gate,
		opts: opts,
		log:  opts.Logger.With("task", "history"),
	}
	c.offset.Store(offset)
	return c
}

// Offset returns the start of the oldest delivered line
func (c *HistoryCursor) Offset() int64 {
	return c.offset.Load()
}

// Finished reports whether the cursor reached the start of the file
func (c *HistoryCursor) Finished() bool {
	return c.done.Load()
}

// Lines returns how many lines have been prepended
func (c *HistoryCursor) Lines() int64 {
	return c.lines.Load()
}

// Run walks backward until offset 0, cancellation or a read failure
func (c *HistoryCursor) Run(ctx context.Context) error {
	defer c.src.Close()

	for {
		off := c.Offset()
		if off == 0 {
			c.done.Store(true)
			c.log.Debug("history complete", "lines", c.Lines())
			return nil
		}
		if ctx.Err() != nil {
			c.log.Debug("history stopped", "offset", off)
			return nil
		}

		if c.gate.Paused() {
			sleep(ctx, c.opts.PausePoll, nil)
			continue
		}

		if err := c.checkSize(off); err != nil {
			return err
		}

		batch, next, err := index.ReadBackward(c.src, off, c.opts.HistoryLines, c.opts.ChunkSize)
		if err != nil {
			return err
		}
		if next >= off {
			return apperrors.NewIOFailure("read backward", off, io.ErrNoProgress)
		}

		c.offset.Store(next)
		c.lines.Add(int64(len(batch)))
		c.sink.Prepend(batch)

		if next > 0 {
			sleep(ctx, c.opts.HistoryYield, nil)
		}
	}
}

// checkSize fails once the file is shorter than off. A stat error leaves the
// walk running: an unlinked file stays readable through its mapping.
func (c *HistoryCursor) checkSize(off int64) error {
	s, ok := c.src.(sizer)
	if !ok {
		return nil
	}
	size, err := s.CurrentSize()
	if err != nil {
		c.log.Debug("stat during history walk", "error", err)
		return nil
	}
	if size < off {
		return apperrors.NewIOFailure("read backward", off, apperrors.ErrFileTruncated)
	}
	return nil
}
