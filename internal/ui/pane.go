package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/render"
	"github.com/TimelordUK/mfollow/internal/source"
	"github.com/TimelordUK/mfollow/internal/view"
	"github.com/TimelordUK/mfollow/pkg/logformat"
)

// newestScanLimit bounds how far back the newest timestamp is looked for
const newestScanLimit = 50

// Pane holds the lines of the followed file and the view onto them. It is
// only touched from the event loop.
type Pane struct {
	viewport *view.Viewport
	buffer   *source.Buffer
	config   *config.Config
	detector *logformat.LevelDetector
	stamps   *logformat.TimestampParser

	path     string
	filename string
	newest   time.Time
}

// NewPane creates an empty pane
func NewPane(cfg *config.Config) *Pane {
	buffer := source.NewBuffer()

	viewport := view.NewViewport(80, 24)
	viewport.SetProvider(buffer)
	viewport.SetShowLineNumbers(cfg.Display.ShowLineNumbers)
	viewport.SetLineNumberColor(cfg.Theme.LineNumbers)
	viewport.SetRenderer(render.NewLogLevelRenderer(cfg))

	return &Pane{
		viewport: viewport,
		buffer:   buffer,
		config:   cfg,
		detector: logformat.NewLevelDetector(&cfg.LogLevels),
		stamps:   logformat.NewTimestampParser(),
	}
}

// Reset clears the pane for a newly opened file
func (p *Pane) Reset(path string) {
	p.buffer.Reset(path)
	p.viewport.Reset()
	p.viewport.SetRenderer(render.New(p.config, path))
	p.path = path
	p.filename = filepath.Base(path)
	p.newest = time.Time{}
}

// Append adds a line from the tail and keeps the end in view when following
func (p *Pane) Append(line source.Line) {
	if line.Level == source.LevelUnknown {
		line.Level = p.detector.Detect(line.Content())
	}
	p.buffer.Append(line)
	p.viewport.Appended()

	if t, ok := p.stamps.Parse(line.Content()); ok {
		p.newest = t
	}
}

// Prepend inserts a history batch without moving the lines on screen
func (p *Pane) Prepend(lines []source.Line) {
	batch := make([]source.Line, len(lines))
	copy(batch, lines)
	p.detector.Tag(batch)

	p.buffer.Prepend(batch)
	p.viewport.Prepended(len(batch))

	if p.newest.IsZero() {
		p.newest, _ = p.stamps.Latest(p.buffer, newestScanLimit)
	}
}

// SetSize sets the viewport size
func (p *Pane) SetSize(width, height int) {
	p.viewport.SetSize(width, height)
}

// Render returns the rendered viewport content
func (p *Pane) Render() string {
	return p.viewport.Render()
}

// Viewport returns the pane's viewport
func (p *Pane) Viewport() *view.Viewport {
	return p.viewport
}

// Buffer returns the received lines
func (p *Pane) Buffer() *source.Buffer {
	return p.buffer
}

// Filename returns the display filename
func (p *Pane) Filename() string {
	return p.filename
}

// Path returns the followed path
func (p *Pane) Path() string {
	return p.path
}

// Newest returns the most recent timestamp seen in the tail
func (p *Pane) Newest() time.Time {
	return p.newest
}

// ToggleLineNumbers flips the gutter
func (p *Pane) ToggleLineNumbers() bool {
	show := !p.viewport.ShowLineNumbers()
	p.viewport.SetShowLineNumbers(show)
	return show
}

// Goto jumps to a 1-based line number or, failing that, to the first line
// at or after a time such as "14:30" or "2024-01-15 14:30:00".
func (p *Pane) Goto(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if lineNum, err := strconv.Atoi(input); err == nil {
		if lineNum < 1 {
			lineNum = 1
		}
		p.viewport.GotoLine(lineNum - 1)
		return nil
	}

	target, ok := p.parseTimeInput(input)
	if !ok {
		return fmt.Errorf("goto: not a line number or time: %q", input)
	}
	idx := p.findLineAtTime(target)
	if idx < 0 {
		return fmt.Errorf("goto: no line at or after %s", logformat.FormatTimeWithDate(target))
	}
	p.viewport.GotoLine(idx)
	return nil
}

// parseTimeInput parses user time input. Times without a date take the
// date of the first timestamped line.
func (p *Pane) parseTimeInput(input string) (time.Time, bool) {
	layouts := []string{
		"15:04:05",
		"15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, input, time.Local)
		if err != nil {
			continue
		}
		if layout == "15:04:05" || layout == "15:04" {
			day := time.Now()
			if first, ok := p.firstTimestamp(); ok {
				day = first
			}
			t = time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, day.Location())
		}
		return t, true
	}
	return time.Time{}, false
}

func (p *Pane) firstTimestamp() (time.Time, bool) {
	count := p.buffer.LineCount()
	for i := 0; i < count && i < newestScanLimit; i++ {
		line, _ := p.buffer.GetLine(i)
		if line == nil {
			continue
		}
		if t, ok := p.stamps.Parse(line.Content()); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *Pane) findLineAtTime(target time.Time) int {
	count := p.buffer.LineCount()
	for i := 0; i < count; i++ {
		line, _ := p.buffer.GetLine(i)
		if line == nil {
			continue
		}
		if t, ok := p.stamps.Parse(line.Content()); ok && !t.Before(target) {
			return i
		}
	}
	return -1
}
