package follow

import (
	"log/slog"
	"time"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/index"
	"github.com/TimelordUK/mfollow/internal/logging"
)

const (
	DefaultInitialLines = 100
	DefaultHistoryLines = 500
	DefaultPausePoll    = 100 * time.Millisecond
	DefaultIdlePoll     = 500 * time.Millisecond
	DefaultHistoryYield = 10 * time.Millisecond
	DefaultJoinTimeout  = time.Second
)

// Options tunes a Streamer. Zero values take the defaults above.
type Options struct {
	InitialLines int
	HistoryLines int
	ChunkSize    int
	PausePoll    time.Duration
	IdlePoll     time.Duration
	HistoryYield time.Duration
	JoinTimeout  time.Duration

	// Notify wakes the tail early on fsnotify write events
	Notify bool
	// FullFile skips the split point: the tail drains the whole file and
	// no history task runs
	FullFile bool
	// NoHistory keeps the split point but never backfills, for sinks that
	// cannot insert at the front such as a terminal stream
	NoHistory bool

	Logger *slog.Logger
}

// OptionsFromConfig maps the [follow] config section onto Options
func OptionsFromConfig(cfg config.FollowConfig, logger *slog.Logger) Options {
	return Options{
		InitialLines: cfg.InitialLines,
		HistoryLines: cfg.HistoryLines,
		ChunkSize:    cfg.ChunkSize,
		PausePoll:    cfg.PausePoll(),
		IdlePoll:     cfg.IdlePoll(),
		HistoryYield: cfg.HistoryYield(),
		JoinTimeout:  cfg.JoinTimeout(),
		Notify:       cfg.Notify,
		FullFile:     cfg.FullFile,
		Logger:       logger,
	}
}

func (o Options) withDefaults() Options {
	if o.InitialLines <= 0 {
		o.InitialLines = DefaultInitialLines
	}
	if o.HistoryLines <= 0 {
		o.HistoryLines = DefaultHistoryLines
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = index.DefaultChunkSize
	}
	if o.PausePoll <= 0 {
		o.PausePoll = DefaultPausePoll
	}
	if o.IdlePoll <= 0 {
		o.IdlePoll = DefaultIdlePoll
	}
	if o.HistoryYield <= 0 {
		o.HistoryYield = DefaultHistoryYield
	}
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = DefaultJoinTimeout
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}
