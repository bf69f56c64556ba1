package source

import "sync"

// Buffer holds the lines received for the current file. Tail lines are
// appended at the end and history batches are inserted at the front, so the
// buffer always reads in file order. It is safe for concurrent use.
type Buffer struct {
	mu    sync.RWMutex
	lines []Line
	path  string
	bytes int64
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Reset clears the buffer for a newly opened file
func (b *Buffer) Reset(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
	b.path = path
	b.bytes = 0
}

// Append adds a line at the end
func (b *Buffer) Append(line Line) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	b.bytes += int64(line.Size)
}

// Prepend inserts a chronological batch before all existing lines
func (b *Buffer) Prepend(batch []Line) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]Line, 0, len(batch)+len(b.lines))
	merged = append(merged, batch...)
	merged = append(merged, b.lines...)
	b.lines = merged
	for _, line := range batch {
		b.bytes += int64(line.Size)
	}
}

// Path returns the file the buffer was last reset for
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// ByteCount returns the raw size of all buffered lines
func (b *Buffer) ByteCount() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bytes
}

// LineCount returns total number of lines
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// GetLine returns line at index
func (b *Buffer) GetLine(idx int) (*Line, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if idx < 0 || idx >= len(b.lines) {
		return nil, nil
	}
	line := b.lines[idx]
	return &line, nil
}

// GetLines returns a range of lines
func (b *Buffer) GetLines(start, count int) ([]*Line, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if start < 0 {
		start = 0
	}
	if start >= len(b.lines) || count <= 0 {
		return nil, nil
	}
	if start+count > len(b.lines) {
		count = len(b.lines) - start
	}

	lines := make([]*Line, count)
	for i := 0; i < count; i++ {
		line := b.lines[start+i]
		lines[i] = &line
	}
	return lines, nil
}

// Text returns the concatenated text of every buffered line
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := 0
	for _, line := range b.lines {
		size += len(line.Text)
	}
	buf := make([]byte, 0, size)
	for _, line := range b.lines {
		buf = append(buf, line.Text...)
	}
	return string(buf)
}
