package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/mfollow/internal/render"
	"github.com/TimelordUK/mfollow/internal/source"
)

// Viewport manages the visible portion of content
// It knows nothing about log formats or file sources
// It only knows how to display lines from a LineProvider
//
// Content can grow at both ends. Appends keep the view pinned to the end
// while following; prepends shift the scroll offset so the lines on screen
// stay where they are.
type Viewport struct {
	provider source.LineProvider
	renderer render.Renderer

	// Dimensions
	width  int
	height int

	// Scroll position
	scrollOffset int
	following    bool

	// Styling
	lineNumberStyle lipgloss.Style
	highlightStyle  lipgloss.Style

	showLineNumbers bool

	// Highlighted line index, -1 for none
	highlightedLine int
}

// NewViewport creates a new viewport
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:           width,
		height:          height,
		following:       true,
		showLineNumbers: true,
		lineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		highlightStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		renderer:        render.NewPlainRenderer(),
		highlightedLine: -1,
	}
}

// SetLineNumberColor sets the gutter colour
func (v *Viewport) SetLineNumberColor(color string) {
	v.lineNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// SetHighlightedLine sets which line index to highlight (-1 for none)
func (v *Viewport) SetHighlightedLine(index int) {
	v.highlightedLine = index
}

// ClearHighlight removes any line highlight
func (v *Viewport) ClearHighlight() {
	v.highlightedLine = -1
}

// SetRenderer sets the line renderer
func (v *Viewport) SetRenderer(r render.Renderer) {
	v.renderer = r
}

// SetProvider sets the line provider
func (v *Viewport) SetProvider(provider source.LineProvider) {
	v.provider = provider
	v.Reset()
}

// Reset returns to the top of empty content and resumes following
func (v *Viewport) Reset() {
	v.scrollOffset = 0
	v.following = true
	v.highlightedLine = -1
}

// SetSize updates viewport dimensions
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	if v.following {
		v.GotoBottom()
		return
	}
	v.clampScroll()
}

// Height returns the number of visible lines
func (v *Viewport) Height() int {
	return v.height
}

// Following reports whether the view is pinned to the end
func (v *Viewport) Following() bool {
	return v.following
}

// Appended keeps the end in view after lines were added at the end
func (v *Viewport) Appended() {
	if v.following {
		v.GotoBottom()
	}
}

// Prepended keeps the current lines in place after n lines were inserted
// at the front
func (v *Viewport) Prepended(n int) {
	if n <= 0 {
		return
	}
	if v.highlightedLine >= 0 {
		v.highlightedLine += n
	}
	if v.following {
		v.GotoBottom()
		return
	}
	v.scrollOffset += n
	v.clampScroll()
}

// ScrollDown scrolls down by n lines
func (v *Viewport) ScrollDown(n int) {
	v.scrollOffset += n
	v.clampScroll()
	v.following = v.atBottom()
}

// ScrollUp scrolls up by n lines
func (v *Viewport) ScrollUp(n int) {
	v.scrollOffset -= n
	v.clampScroll()
	v.following = v.atBottom()
}

// PageDown scrolls down by one page
func (v *Viewport) PageDown() {
	v.ScrollDown(v.pageSize())
}

// PageUp scrolls up by one page
func (v *Viewport) PageUp() {
	v.ScrollUp(v.pageSize())
}

// GotoTop scrolls to the beginning
func (v *Viewport) GotoTop() {
	v.scrollOffset = 0
	v.following = v.atBottom()
}

// GotoBottom scrolls to the end and resumes following
func (v *Viewport) GotoBottom() {
	v.following = true
	if v.provider == nil {
		return
	}
	v.scrollOffset = v.provider.LineCount() - v.height
	v.clampScroll()
}

// GotoLine scrolls so that line index is at the top and highlights it
func (v *Viewport) GotoLine(index int) {
	v.scrollOffset = index
	v.clampScroll()
	v.highlightedLine = index
	v.following = v.atBottom()
}

// CurrentLine returns the current top line number
func (v *Viewport) CurrentLine() int {
	return v.scrollOffset
}

func (v *Viewport) pageSize() int {
	if v.height > 1 {
		return v.height - 1
	}
	return 1
}

func (v *Viewport) maxScroll() int {
	if v.provider == nil {
		return 0
	}
	maxScroll := v.provider.LineCount() - v.height
	if maxScroll < 0 {
		return 0
	}
	return maxScroll
}

func (v *Viewport) atBottom() bool {
	return v.scrollOffset >= v.maxScroll()
}

// clampScroll ensures scroll offset is within valid bounds
func (v *Viewport) clampScroll() {
	maxScroll := v.maxScroll()
	if v.scrollOffset > maxScroll {
		v.scrollOffset = maxScroll
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// Render returns the viewport content as a string
func (v *Viewport) Render() string {
	if v.provider == nil || v.height <= 0 {
		return ""
	}

	lines, err := v.provider.GetLines(v.scrollOffset, v.height)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var builder strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", v.provider.LineCount()))

	contentWidth := v.width
	if v.showLineNumbers {
		contentWidth -= lineNumWidth + 1
	}
	clip := lipgloss.NewStyle()
	if contentWidth > 0 {
		clip = clip.MaxWidth(contentWidth)
	}

	for i, line := range lines {
		if i > 0 {
			builder.WriteString("\n")
		}

		idx := v.scrollOffset + i
		if v.showLineNumbers {
			numStr := fmt.Sprintf("%*d ", lineNumWidth, idx+1)
			if idx == v.highlightedLine {
				builder.WriteString(v.highlightStyle.Render(numStr))
			} else {
				builder.WriteString(v.lineNumberStyle.Render(numStr))
			}
		}

		builder.WriteString(clip.Render(v.renderer.Render(line)))
	}

	// Pad with empty lines if needed
	for i := len(lines); i < v.height; i++ {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("~")
	}

	return builder.String()
}

// PercentScrolled returns how far through the content we are
func (v *Viewport) PercentScrolled() float64 {
	if v.provider == nil || v.provider.LineCount() == 0 {
		return 0
	}

	total := v.provider.LineCount()
	if total <= v.height {
		return 100
	}

	return float64(v.scrollOffset) / float64(total-v.height) * 100
}

// SetShowLineNumbers toggles line numbers
func (v *Viewport) SetShowLineNumbers(show bool) {
	v.showLineNumbers = show
}

// ShowLineNumbers reports whether the gutter is shown
func (v *Viewport) ShowLineNumbers() bool {
	return v.showLineNumbers
}
