package follow

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// notifier turns fsnotify events for one file into wake-ups for the tail
// cursor. The directory is watched rather than the file so that editors
// which replace the file still produce events.
type notifier struct {
	watcher *fsnotify.Watcher
	path    string
	wake    chan struct{}
	log     *slog.Logger
}

func newNotifier(path string, logger *slog.Logger) (*notifier, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &notifier{
		watcher: watcher,
		path:    abs,
		wake:    make(chan struct{}, 1),
		log:     logger.With("task", "notify"),
	}, nil
}

// Run forwards matching events until ctx is cancelled
func (n *notifier) Run(ctx context.Context) error {
	defer n.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-n.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != n.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				n.signal()
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return nil
			}
			n.log.Warn("watch error", "error", err)
		}
	}
}

func (n *notifier) signal() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}
