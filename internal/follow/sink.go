package follow

import "github.com/TimelordUK/mfollow/internal/source"

// Sink receives the lines of a followed file. Append is called by the tail
// cursor and Prepend by the history cursor, each from its own goroutine, so
// implementations must be safe for concurrent use.
type Sink interface {
	// Reset clears any content from a previous file
	Reset(path string)

	// Append adds one complete line after everything received so far
	Append(line source.Line)

	// Prepend inserts a chronological batch before everything received so
	// far. Presentation layers keep the reader's scroll anchor in place.
	Prepend(lines []source.Line)
}

// FaultReporter is implemented by sinks that want to show background
// failures: a failed history read, a closed handle, a recovered panic or a
// task that would not stop.
type FaultReporter interface {
	Fault(err error)
}

func reportFault(sink Sink, err error) {
	if err == nil {
		return
	}
	if r, ok := sink.(FaultReporter); ok {
		r.Fault(err)
	}
}
