package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Follow      FollowConfig     `toml:"follow"`
	Logging     LoggingConfig    `toml:"logging"`
	Theme       ThemeConfig      `toml:"theme"`
	LogLevels   LogLevelConfig   `toml:"log_levels"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Display     DisplayConfig    `toml:"display"`
}

// FollowConfig tunes the tail and history cursors
type FollowConfig struct {
	InitialLines   int  `toml:"initial_lines"`
	HistoryLines   int  `toml:"history_lines"`
	ChunkSize      int  `toml:"chunk_size"`
	PausePollMs    int  `toml:"pause_poll_ms"`
	IdlePollMs     int  `toml:"idle_poll_ms"`
	HistoryYieldMs int  `toml:"history_yield_ms"`
	JoinTimeoutMs  int  `toml:"join_timeout_ms"`
	Notify         bool `toml:"notify"`
	FullFile       bool `toml:"full_file"`
}

// LoggingConfig controls the diagnostic log
type LoggingConfig struct {
	File   string `toml:"file"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Name          string         `toml:"name"`
	LineNumbers   string         `toml:"line_numbers"`
	StatusBar     string         `toml:"status_bar"`
	StatusBarText string         `toml:"status_bar_text"`
	Paused        string         `toml:"paused"`
	Fault         string         `toml:"fault"`
	Levels        LogLevelColors `toml:"levels"`
}

// LogLevelColors defines colors for each log level
type LogLevelColors struct {
	Trace string `toml:"trace"`
	Debug string `toml:"debug"`
	Info  string `toml:"info"`
	Warn  string `toml:"warn"`
	Error string `toml:"error"`
	Fatal string `toml:"fatal"`
}

// LogLevelConfig defines log level detection patterns
type LogLevelConfig struct {
	TracePatterns []string `toml:"trace_patterns"`
	DebugPatterns []string `toml:"debug_patterns"`
	InfoPatterns  []string `toml:"info_patterns"`
	WarnPatterns  []string `toml:"warn_patterns"`
	ErrorPatterns []string `toml:"error_patterns"`
	FatalPatterns []string `toml:"fatal_patterns"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit        []string `toml:"quit"`
	ScrollUp    []string `toml:"scroll_up"`
	ScrollDown  []string `toml:"scroll_down"`
	PageUp      []string `toml:"page_up"`
	PageDown    []string `toml:"page_down"`
	Top         []string `toml:"top"`
	Bottom      []string `toml:"bottom"`
	Pause       []string `toml:"pause"`
	Open        []string `toml:"open"`
	Goto        []string `toml:"goto"`
	LineNumbers []string `toml:"line_numbers"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	ShowLineNumbers bool   `toml:"show_line_numbers"`
	TabWidth        int    `toml:"tab_width"`
	SyntaxHighlight bool   `toml:"syntax_highlight"`
	SyntaxTheme     string `toml:"syntax_theme"`
}

const (
	defaultInitialLines   = 100
	defaultHistoryLines   = 500
	defaultChunkSize      = 8 * 1024
	defaultPausePollMs    = 100
	defaultIdlePollMs     = 500
	defaultHistoryYieldMs = 10
	defaultJoinTimeoutMs  = 1000
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Follow: FollowConfig{
			InitialLines:   defaultInitialLines,
			HistoryLines:   defaultHistoryLines,
			ChunkSize:      defaultChunkSize,
			PausePollMs:    defaultPausePollMs,
			IdlePollMs:     defaultIdlePollMs,
			HistoryYieldMs: defaultHistoryYieldMs,
			JoinTimeoutMs:  defaultJoinTimeoutMs,
			Notify:         true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Theme: ThemeConfig{
			Name:          "subtle",
			LineNumbers:   "240", // Dark gray
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Paused:        "214", // Orange
			Fault:         "167", // Soft red
			Levels: LogLevelColors{
				Trace: "240", // Dark gray
				Debug: "244", // Medium gray
				Info:  "250", // Light gray (default)
				Warn:  "214", // Orange
				Error: "167", // Soft red
				Fatal: "196", // Bright red
			},
		},
		LogLevels: LogLevelConfig{
			TracePatterns: []string{"[TRC]", "[TRACE]", "TRACE", "TRC"},
			DebugPatterns: []string{"[DBG]", "[DEBUG]", "DEBUG", "DBG"},
			InfoPatterns:  []string{"[INF]", "[INFO]", "INFO", "INF"},
			WarnPatterns:  []string{"[WRN]", "[WARN]", "[WARNING]", "WARN", "WRN", "WARNING"},
			ErrorPatterns: []string{"[ERR]", "[ERROR]", "ERROR", "ERR"},
			FatalPatterns: []string{"[FTL]", "[FATAL]", "FATAL", "FTL", "[CRIT]", "CRITICAL"},
		},
		Keybindings: KeybindingConfig{
			Quit:        []string{"q", "ctrl+c"},
			ScrollUp:    []string{"k", "up"},
			ScrollDown:  []string{"j", "down"},
			PageUp:      []string{"b", "pgup", "ctrl+u"},
			PageDown:    []string{"f", "pgdown", "ctrl+d", " "},
			Top:         []string{"g", "home"},
			Bottom:      []string{"G", "end"},
			Pause:       []string{"p"},
			Open:        []string{"o"},
			Goto:        []string{":"},
			LineNumbers: []string{"l"},
		},
		Display: DisplayConfig{
			ShowLineNumbers: true,
			TabWidth:        4,
			SyntaxHighlight: true,
			SyntaxTheme:     "monokai",
		},
	}
}

// Load loads config from the default location, falling back to defaults
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom loads config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize replaces out-of-range follow settings with their defaults
func (c *Config) Normalize() {
	f := &c.Follow
	f.InitialLines = positiveOr(f.InitialLines, defaultInitialLines)
	f.HistoryLines = positiveOr(f.HistoryLines, defaultHistoryLines)
	f.ChunkSize = positiveOr(f.ChunkSize, defaultChunkSize)
	f.PausePollMs = positiveOr(f.PausePollMs, defaultPausePollMs)
	f.IdlePollMs = positiveOr(f.IdlePollMs, defaultIdlePollMs)
	f.HistoryYieldMs = positiveOr(f.HistoryYieldMs, defaultHistoryYieldMs)
	f.JoinTimeoutMs = positiveOr(f.JoinTimeoutMs, defaultJoinTimeoutMs)

	c.Logging.File = expandHome(strings.TrimSpace(c.Logging.File))
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if c.Display.TabWidth <= 0 {
		c.Display.TabWidth = 4
	}
	if strings.TrimSpace(c.Display.SyntaxTheme) == "" {
		c.Display.SyntaxTheme = "monokai"
	}
}

// PausePoll returns the sleep used while paused
func (f FollowConfig) PausePoll() time.Duration {
	return time.Duration(f.PausePollMs) * time.Millisecond
}

// IdlePoll returns the sleep used when the tail has caught up
func (f FollowConfig) IdlePoll() time.Duration {
	return time.Duration(f.IdlePollMs) * time.Millisecond
}

// HistoryYield returns the pause between history batches
func (f FollowConfig) HistoryYield() time.Duration {
	return time.Duration(f.HistoryYieldMs) * time.Millisecond
}

// JoinTimeout bounds how long stopping a session may wait for its tasks
func (f FollowConfig) JoinTimeout() time.Duration {
	return time.Duration(f.JoinTimeoutMs) * time.Millisecond
}

// Save saves config to file
func Save(cfg *Config) error {
	return SaveTo(getConfigPath(), cfg)
}

// SaveTo writes cfg to path, creating the directory if needed
func SaveTo(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mfollow", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "mfollow", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
