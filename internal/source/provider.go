package source

import "strings"

// LogLevel represents a log severity level
type LogLevel int

const (
	LevelUnknown LogLevel = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// Line is one decoded line of the followed file. Text keeps its terminator
// so that concatenating lines reproduces the decoded file; Size is the raw
// byte length on disk and is what offsets move by.
type Line struct {
	Text  string
	Size  int
	Level LogLevel
}

// NewLine builds a line whose text is valid UTF-8 already
func NewLine(text string) Line {
	return Line{Text: text, Size: len(text)}
}

// Content returns the text without its line terminator
func (l Line) Content() string {
	return strings.TrimRight(l.Text, "\r\n")
}

// LineProvider is the core abstraction for accessing lines
// The viewport only interacts with this interface
type LineProvider interface {
	// LineCount returns total number of lines
	LineCount() int

	// GetLine returns line at index (0-based)
	GetLine(index int) (*Line, error)

	// GetLines returns a range of lines efficiently
	GetLines(start, count int) ([]*Line, error)
}
