package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/source"
)

func TestNewPicksRendererByPath(t *testing.T) {
	cfg := config.DefaultConfig()

	_, ok := New(cfg, "/var/log/app.log").(*LogLevelRenderer)
	assert.True(t, ok)

	syntax, ok := New(cfg, "main.go").(*SyntaxRenderer)
	assert.True(t, ok)
	assert.Equal(t, "Go", syntax.Lexer())

	cfg.Display.SyntaxHighlight = false
	_, ok = New(cfg, "main.go").(*LogLevelRenderer)
	assert.True(t, ok)
}

func TestLogLevelRendererDropsTerminator(t *testing.T) {
	r := NewLogLevelRenderer(config.DefaultConfig())
	line := source.NewLine("ERROR\tfailed\r\n")

	out := r.Render(&line)
	assert.Contains(t, out, "ERROR   failed")
	assert.NotContains(t, out, "\n")
	assert.Equal(t, source.LevelError, r.Level(&line))
}

func TestSyntaxRendererSingleLine(t *testing.T) {
	r := NewSyntaxRenderer("main.go", "monokai", 4)
	line := source.NewLine("func main() {}\n")

	out := r.Render(&line)
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "main")

	empty := source.NewLine("\n")
	assert.Empty(t, r.Render(&empty))
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "a   b", ExpandTabs("a\tb", 4))
	assert.Equal(t, "    x", ExpandTabs("\tx", 4))
	assert.Equal(t, "ab\tc", ExpandTabs("ab\tc", 0))
	assert.Equal(t, strings.Repeat(" ", 8), ExpandTabs("\t\t", 4))
}

func TestIsSyntaxHighlightable(t *testing.T) {
	assert.True(t, IsSyntaxHighlightable("cmd/main.go"))
	assert.True(t, IsSyntaxHighlightable("Makefile"))
	assert.False(t, IsSyntaxHighlightable("server.log"))
}
