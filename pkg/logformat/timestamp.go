package logformat

import (
	"regexp"
	"strconv"
	"time"

	"github.com/TimelordUK/mfollow/internal/source"
)

// TimestampParser detects and parses timestamps from log lines
type TimestampParser struct {
	patterns []timestampPattern
	now      func() time.Time
}

type timestampPattern struct {
	regex   *regexp.Regexp
	layouts []string
}

const (
	layoutUnix   = "unix"
	layoutUnixMs = "unix_ms"
	layoutSyslog = "Jan 2 15:04:05"
)

// NewTimestampParser creates a parser with common timestamp formats
func NewTimestampParser() *TimestampParser {
	return &TimestampParser{
		now: time.Now,
		patterns: []timestampPattern{
			// 2024-01-15T10:30:45.123Z
			{
				regex:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2}))`),
				layouts: []string{time.RFC3339Nano},
			},
			// 2024-01-15 10:30:45.123, also inside [brackets]
			{
				regex:   regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d{3})?)`),
				layouts: []string{"2006-01-02 15:04:05.000", "2006-01-02 15:04:05", "2006-01-02T15:04:05.000", "2006-01-02T15:04:05"},
			},
			// Jan 15 10:30:45
			{
				regex:   regexp.MustCompile(`([A-Z][a-z]{2} +\d{1,2} \d{2}:\d{2}:\d{2})`),
				layouts: []string{layoutSyslog, "Jan _2 15:04:05"},
			},
			// 15/Jan/2024:10:30:45 +0000
			{
				regex:   regexp.MustCompile(`(\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4})`),
				layouts: []string{"02/Jan/2006:15:04:05 -0700"},
			},
			// 1705315845123
			{
				regex:   regexp.MustCompile(`^(\d{13})(?:\D|$)`),
				layouts: []string{layoutUnixMs},
			},
			// 1705315845
			{
				regex:   regexp.MustCompile(`^(\d{10})(?:\D|$)`),
				layouts: []string{layoutUnix},
			},
		},
	}
}

// Parse attempts to extract a timestamp from a log line
func (p *TimestampParser) Parse(content string) (time.Time, bool) {
	for _, pattern := range p.patterns {
		matches := pattern.regex.FindStringSubmatch(content)
		if len(matches) < 2 {
			continue
		}
		if t, ok := p.parseMatch(matches[1], pattern.layouts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *TimestampParser) parseMatch(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		switch layout {
		case layoutUnix, layoutUnixMs:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			if layout == layoutUnixMs {
				return time.UnixMilli(n), true
			}
			return time.Unix(n, 0), true
		}

		t, err := time.ParseInLocation(layout, value, time.Local)
		if err != nil {
			continue
		}
		// syslog lines carry no year
		if t.Year() == 0 {
			t = t.AddDate(p.now().Year(), 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

// Latest scans up to limit lines backward from the end of provider and
// returns the first timestamp found, which is the newest one shown.
func (p *TimestampParser) Latest(provider source.LineProvider, limit int) (time.Time, bool) {
	count := provider.LineCount()
	for i := count - 1; i >= 0 && count-i <= limit; i-- {
		line, err := provider.GetLine(i)
		if err != nil || line == nil {
			continue
		}
		if t, ok := p.Parse(line.Content()); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime formats a timestamp for display
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04:05")
}

// FormatTimeWithDate formats a timestamp with date for display
func FormatTimeWithDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
