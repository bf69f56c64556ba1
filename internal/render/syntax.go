package render

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/TimelordUK/mfollow/internal/source"
)

// SyntaxRenderer applies syntax highlighting based on file type. Lines are
// highlighted one at a time since they arrive independently from both ends.
type SyntaxRenderer struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
	tabWidth  int
}

// NewSyntaxRenderer creates a syntax highlighting renderer for the given filename
func NewSyntaxRenderer(filename, theme string, tabWidth int) *SyntaxRenderer {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &SyntaxRenderer{
		lexer:     chroma.Coalesce(lexer),
		style:     styles.Get(theme),
		formatter: formatters.Get("terminal16m"),
		tabWidth:  tabWidth,
	}
}

// Lexer returns the name of the lexer in use
func (r *SyntaxRenderer) Lexer() string {
	return r.lexer.Config().Name
}

// Render applies syntax highlighting to a line
func (r *SyntaxRenderer) Render(line *source.Line) string {
	content := ExpandTabs(line.Content(), r.tabWidth)
	if content == "" {
		return ""
	}

	iterator, err := r.lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return content
	}

	// the formatter may add a trailing newline
	return strings.TrimRight(buf.String(), "\r\n")
}

// IsSyntaxHighlightable returns true if the file type supports syntax highlighting
func IsSyntaxHighlightable(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))

	// Common source code extensions
	syntaxExts := map[string]bool{
		".go": true, ".rs": true, ".py": true, ".js": true, ".ts": true,
		".jsx": true, ".tsx": true, ".c": true, ".cpp": true, ".h": true,
		".hpp": true, ".java": true, ".rb": true, ".php": true, ".swift": true,
		".kt": true, ".scala": true, ".cs": true, ".lua": true,
		".sh": true, ".bash": true, ".zsh": true,
		".yaml": true, ".yml": true, ".json": true, ".toml": true, ".xml": true,
		".html": true, ".css": true, ".sql": true, ".md": true,
	}

	if syntaxExts[ext] {
		return true
	}

	base := strings.ToLower(filepath.Base(filename))
	switch base {
	case "makefile", "dockerfile", "cmakelists.txt":
		return true
	}
	return false
}
