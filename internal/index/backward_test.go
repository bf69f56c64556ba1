package index

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/TimelordUK/mfollow/internal/errors"
	"github.com/TimelordUK/mfollow/internal/source"
)

func texts(lines []source.Line) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line.Text
	}
	return out
}

func TestReadBackwardSmallFile(t *testing.T) {
	r := bytes.NewReader([]byte("a\nb\nc\nd\n"))

	lines, offset, err := ReadBackward(r, 8, 2, DefaultChunkSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"c\n", "d\n"}, texts(lines))
	assert.Equal(t, int64(4), offset)

	lines, offset, err = ReadBackward(r, offset, 500, DefaultChunkSize)
	require.NoError(t, err)
	assert.Equal(t, []string{"a\n", "b\n"}, texts(lines))
	assert.Equal(t, int64(0), offset)
}

func TestReadBackwardEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		end        int64
		minLines   int
		wantLines  []string
		wantOffset int64
	}{
		{"empty file", "", 0, 10, nil, 0},
		{"end at zero", "abc\n", 0, 3, nil, 0},
		{"no lines requested", "abc\n", 4, 0, nil, 4},
		{"leading partial line is a line", "first\nsecond\n", 13, 10, []string{"first\n", "second\n"}, 0},
		{"no terminator anywhere", "only", 4, 5, []string{"only"}, 0},
		{"unterminated last segment", "a\nb\nc", 5, 2, []string{"b\n", "c"}, 2},
		{"blank lines count", "\n\n\n", 3, 2, []string{"\n", "\n"}, 1},
		{"crlf kept", "x\r\ny\r\n", 6, 1, []string{"y\r\n"}, 3},
		{"fewer than requested", "a\nb\n", 4, 9, []string{"a\n", "b\n"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, offset, err := ReadBackward(strings.NewReader(tt.content), tt.end, tt.minLines, 3)
			require.NoError(t, err)
			if tt.wantLines == nil {
				assert.Empty(t, lines)
			} else {
				assert.Equal(t, tt.wantLines, texts(lines))
			}
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestReadBackwardIsLossless(t *testing.T) {
	content := []byte("alpha\nbeta\n\ngamma delta\n\r\nlast line without newline")
	for chunk := 1; chunk <= len(content)+1; chunk++ {
		for end := int64(0); end <= int64(len(content)); end++ {
			for _, minLines := range []int{1, 2, 3, 10} {
				lines, offset, err := ReadBackward(bytes.NewReader(content), end, minLines, chunk)
				require.NoError(t, err)
				require.LessOrEqual(t, len(lines), minLines)

				var raw bytes.Buffer
				raw.Write(content[:offset])
				size := 0
				for _, line := range lines {
					raw.WriteString(line.Text)
					size += line.Size
				}
				require.Equal(t, end-offset, int64(size))
				require.Equal(t, string(content[:end]), raw.String(),
					"chunk=%d end=%d minLines=%d", chunk, end, minLines)
			}
		}
	}
}

func TestReadBackwardStopsOnceEnoughLines(t *testing.T) {
	content := strings.Repeat("0123456789\n", 100)
	r := &countingReader{r: strings.NewReader(content)}

	lines, offset, err := ReadBackward(r, int64(len(content)), 2, 11)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, int64(len(content)-22), offset)
	assert.Equal(t, 3, r.calls)
}

func TestReadBackwardMultiByteAcrossChunks(t *testing.T) {
	content := "héllo wörld\n日本語のログ\n"
	for chunk := 1; chunk < 8; chunk++ {
		lines, offset, err := ReadBackward(strings.NewReader(content), int64(len(content)), 2, chunk)
		require.NoError(t, err)
		assert.Equal(t, []string{"héllo wörld\n", "日本語のログ\n"}, texts(lines))
		assert.Equal(t, int64(0), offset)
		assert.Equal(t, len("日本語のログ\n"), lines[1].Size)
	}
}

func TestReadBackwardInvalidBytesAreReplaced(t *testing.T) {
	content := []byte("ok\nbad \xff\xfe bytes\n")
	lines, offset, err := ReadBackward(bytes.NewReader(content), int64(len(content)), 1, 4)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, utf8.ValidString(lines[0].Text))
	assert.Contains(t, lines[0].Text, "�")
	assert.Equal(t, len("bad \xff\xfe bytes\n"), lines[0].Size)
	assert.Equal(t, int64(3), offset)
}

func TestReadBackwardErrors(t *testing.T) {
	_, _, err := ReadBackward(strings.NewReader("a\n"), 2, 1, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidChunk)

	_, _, err = ReadBackward(strings.NewReader("a\n"), -1, 1, 4)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOffset)

	boom := errors.New("device error")
	_, offset, err := ReadBackward(failingReader{err: boom}, 100, 5, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsIOFailure(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(100), offset)

	_, _, err = ReadBackward(strings.NewReader("a\nb\n"), 10, 2, 4)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOffset)

	// a reader that cannot report its size reads short instead
	_, _, err = ReadBackward(struct{ io.ReaderAt }{strings.NewReader("a\n")}, 50, 1, 4)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCompleteEnd(t *testing.T) {
	tests := []struct {
		content string
		want    int64
	}{
		{"", 0},
		{"a\nb\n", 4},
		{"a\nb\npartial", 4},
		{"no newline at all", 0},
		{"x\n" + strings.Repeat("y", 50), 2},
	}

	for _, tt := range tests {
		got, err := CompleteEnd(strings.NewReader(tt.content), int64(len(tt.content)), 4)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "content %q", tt.content)
	}

	_, err := CompleteEnd(failingReader{err: errors.New("gone")}, 10, 4)
	assert.True(t, apperrors.IsIOFailure(err))

	_, err = CompleteEnd(strings.NewReader("a\n"), 3, 4)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOffset)
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "plain\n", Decode([]byte("plain\n")))
	got := Decode([]byte{'a', 0xc3, '\n'})
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, "a"))
	assert.True(t, strings.HasSuffix(got, "\n"))
}

type countingReader struct {
	r     io.ReaderAt
	calls int
}

func (c *countingReader) ReadAt(p []byte, off int64) (int, error) {
	c.calls++
	return c.r.ReadAt(p, off)
}

type failingReader struct {
	err error
}

func (f failingReader) ReadAt([]byte, int64) (int, error) {
	return 0, f.err
}
