package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/source"
	"github.com/TimelordUK/mfollow/pkg/logformat"
)

// Renderer applies styling to lines
type Renderer interface {
	Render(line *source.Line) string
}

// New picks a renderer for path: syntax colouring for source-like files when
// enabled, log level colouring otherwise.
func New(cfg *config.Config, path string) Renderer {
	if cfg.Display.SyntaxHighlight && IsSyntaxHighlightable(path) {
		return NewSyntaxRenderer(path, cfg.Display.SyntaxTheme, cfg.Display.TabWidth)
	}
	return NewLogLevelRenderer(cfg)
}

// LogLevelRenderer colors lines based on log level
type LogLevelRenderer struct {
	detector *logformat.LevelDetector
	styles   map[source.LogLevel]lipgloss.Style
	tabWidth int
}

// NewLogLevelRenderer creates a renderer with config
func NewLogLevelRenderer(cfg *config.Config) *LogLevelRenderer {
	detector := logformat.NewLevelDetector(&cfg.LogLevels)

	styles := map[source.LogLevel]lipgloss.Style{
		source.LevelUnknown: lipgloss.NewStyle(),
		source.LevelTrace:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Trace)),
		source.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Debug)),
		source.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Info)),
		source.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Warn)),
		source.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Error)),
		source.LevelFatal:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Fatal)),
	}

	return &LogLevelRenderer{
		detector: detector,
		styles:   styles,
		tabWidth: cfg.Display.TabWidth,
	}
}

// Level returns the level of line, detecting it when unset
func (r *LogLevelRenderer) Level(line *source.Line) source.LogLevel {
	if line.Level != source.LevelUnknown {
		return line.Level
	}
	return r.detector.Detect(line.Content())
}

// Render applies log level styling to a line
func (r *LogLevelRenderer) Render(line *source.Line) string {
	style := r.styles[r.Level(line)]
	return style.Render(ExpandTabs(line.Content(), r.tabWidth))
}

// PlainRenderer renders without styling
type PlainRenderer struct{}

// NewPlainRenderer creates a plain renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render returns the line content as-is
func (r *PlainRenderer) Render(line *source.Line) string {
	return line.Content()
}

// ExpandTabs replaces tabs with spaces up to the next tab stop
func ExpandTabs(s string, width int) string {
	if width <= 0 || !strings.ContainsRune(s, '\t') {
		return s
	}

	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := width - col%width
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
