package follow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/mfollow/internal/source"
)

type recordingSink struct {
	mu       sync.Mutex
	resets   []string
	appended []string
	batches  [][]string
	faults   []error
}

func (r *recordingSink) Reset(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, path)
	r.appended = nil
	r.batches = nil
}

func (r *recordingSink) Append(line source.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, line.Text)
}

func (r *recordingSink) Prepend(lines []source.Line) {
	batch := make([]string, len(lines))
	for i, line := range lines {
		batch[i] = line.Text
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

func (r *recordingSink) Fault(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults = append(r.faults, err)
}

func (r *recordingSink) Appended() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.appended...)
}

func (r *recordingSink) Batches() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.batches))
	copy(out, r.batches)
	return out
}

func (r *recordingSink) Resets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.resets...)
}

func (r *recordingSink) Faults() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.faults...)
}

// Text rebuilds the content the way a presentation layer would see it:
// history batches newest first, then everything appended.
func (r *recordingSink) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for i := len(r.batches) - 1; i >= 0; i-- {
		for _, text := range r.batches[i] {
			b.WriteString(text)
		}
	}
	for _, text := range r.appended {
		b.WriteString(text)
	}
	return b.String()
}

func testOptions() Options {
	return Options{
		InitialLines: 2,
		HistoryLines: 500,
		ChunkSize:    16,
		PausePoll:    5 * time.Millisecond,
		IdlePoll:     10 * time.Millisecond,
		HistoryYield: time.Millisecond,
		JoinTimeout:  time.Second,
	}
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func numberedLines(from, to int) string {
	var b strings.Builder
	for i := from; i < to; i++ {
		fmt.Fprintf(&b, "line %s %d\n", strings.Repeat("x", i%7), i)
	}
	return b.String()
}
