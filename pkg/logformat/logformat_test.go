package logformat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/mfollow/internal/config"
	"github.com/TimelordUK/mfollow/internal/source"
)

func TestLevelDetector(t *testing.T) {
	d := NewLevelDetector(&config.DefaultConfig().LogLevels)

	tests := []struct {
		line string
		want source.LogLevel
	}{
		{"2024-01-15 10:30:45 [INF] started", source.LevelInfo},
		{"WARN disk almost full", source.LevelWarn},
		{"ERROR then FATAL shutdown", source.LevelFatal},
		{"[DBG] cache miss", source.LevelDebug},
		{"[TRACE] enter", source.LevelTrace},
		{"plain text", source.LevelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.line))
		})
	}
}

func TestLevelDetectorTagKeepsKnownLevels(t *testing.T) {
	d := NewLevelDetector(&config.DefaultConfig().LogLevels)
	lines := []source.Line{
		source.NewLine("ERROR boom\n"),
		{Text: "INFO but marked\n", Level: source.LevelDebug},
	}
	d.Tag(lines)
	assert.Equal(t, source.LevelError, lines[0].Level)
	assert.Equal(t, source.LevelDebug, lines[1].Level)
}

func TestTimestampParser(t *testing.T) {
	p := NewTimestampParser()
	p.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local) }

	tests := []struct {
		name string
		line string
		want time.Time
	}{
		{"rfc3339", "2024-01-15T10:30:45.123Z app started", time.Date(2024, 1, 15, 10, 30, 45, 123e6, time.UTC)},
		{"space millis", "2024-01-15 10:30:45.123 [INF] ok", time.Date(2024, 1, 15, 10, 30, 45, 123e6, time.Local)},
		{"bracketed", "[2024-01-15 10:30:45] ready", time.Date(2024, 1, 15, 10, 30, 45, 0, time.Local)},
		{"syslog", "Jan 15 10:30:45 host sshd[1]: accepted", time.Date(2026, 1, 15, 10, 30, 45, 0, time.Local)},
		{"syslog padded", "Feb  3 08:00:01 host cron", time.Date(2026, 2, 3, 8, 0, 1, 0, time.Local)},
		{"unix", "1705315845 event", time.Unix(1705315845, 0)},
		{"unix millis", "1705315845123 event", time.UnixMilli(1705315845123)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.line)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}

	_, ok := p.Parse("no time here")
	assert.False(t, ok)
}

func TestTimestampParserLatest(t *testing.T) {
	buf := source.NewBuffer()
	buf.Append(source.NewLine("2024-01-15 10:00:00 first\n"))
	buf.Append(source.NewLine("2024-01-15 11:00:00 second\n"))
	buf.Append(source.NewLine("    continuation\n"))

	p := NewTimestampParser()
	got, ok := p.Latest(buf, 10)
	require.True(t, ok)
	assert.Equal(t, "11:00:00", FormatTime(got))
	assert.Equal(t, "2024-01-15 11:00:00", FormatTimeWithDate(got))

	_, ok = p.Latest(buf, 1)
	assert.False(t, ok)
	assert.Empty(t, FormatTime(time.Time{}))
}
