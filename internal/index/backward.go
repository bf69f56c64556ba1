package index

import (
	"bytes"
	"io"

	apperrors "github.com/TimelordUK/mfollow/internal/errors"
	"github.com/TimelordUK/mfollow/internal/source"
)

// DefaultChunkSize is the number of bytes read per backward step
const DefaultChunkSize = 8 * 1024

// ReadBackward collects the last minLines lines that end at offset end by
// reading r backward in chunkSize blocks. Lines are returned oldest first
// with their terminators, together with the offset where the first returned
// line starts. Reading stops as soon as enough line boundaries are buffered,
// so at most one chunk more than needed is read.
func ReadBackward(r io.ReaderAt, end int64, minLines, chunkSize int) ([]source.Line, int64, error) {
	if chunkSize <= 0 {
		return nil, end, apperrors.ErrInvalidChunk
	}
	if end < 0 || beyondSize(r, end) {
		return nil, end, apperrors.ErrInvalidOffset
	}
	if end == 0 || minLines <= 0 {
		return nil, end, nil
	}

	var data []byte
	buf := make([]byte, chunkSize)
	pos := end

	for pos > 0 && countSegments(data) <= minLines {
		n := int64(chunkSize)
		if n > pos {
			n = pos
		}
		start := pos - n
		read, err := r.ReadAt(buf[:n], start)
		if int64(read) < n {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, end, apperrors.NewIOFailure("read backward", start, err)
		}

		grown := make([]byte, 0, int(n)+len(data))
		grown = append(grown, buf[:n]...)
		data = append(grown, data...)
		pos = start
	}

	segments := splitSegments(data)
	if len(segments) > minLines {
		segments = segments[len(segments)-minLines:]
	}

	lines := make([]source.Line, len(segments))
	consumed := int64(0)
	for i, seg := range segments {
		lines[i] = source.Line{Text: Decode(seg), Size: len(seg)}
		consumed += int64(len(seg))
	}
	return lines, end - consumed, nil
}

// CompleteEnd returns the offset just past the last newline before size,
// or 0 when the first size bytes contain no newline. Content after it is an
// unterminated line still being written.
func CompleteEnd(r io.ReaderAt, size int64, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		return 0, apperrors.ErrInvalidChunk
	}
	if size < 0 || beyondSize(r, size) {
		return 0, apperrors.ErrInvalidOffset
	}

	buf := make([]byte, chunkSize)
	pos := size
	for pos > 0 {
		n := int64(chunkSize)
		if n > pos {
			n = pos
		}
		start := pos - n
		read, err := r.ReadAt(buf[:n], start)
		if int64(read) < n {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, apperrors.NewIOFailure("find line end", start, err)
		}
		if idx := bytes.LastIndexByte(buf[:n], '\n'); idx >= 0 {
			return start + int64(idx) + 1, nil
		}
		pos = start
	}
	return 0, nil
}

// beyondSize reports whether off lies past the end of r, for readers that
// know their size
func beyondSize(r io.ReaderAt, off int64) bool {
	s, ok := r.(interface{ Size() int64 })
	return ok && off > s.Size()
}

// countSegments returns how many line segments data splits into
func countSegments(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	count := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		count++
	}
	return count
}

// splitSegments splits data after every newline, keeping the terminators
func splitSegments(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	segments := bytes.SplitAfter(data, []byte{'\n'})
	if len(segments[len(segments)-1]) == 0 {
		segments = segments[:len(segments)-1]
	}
	return segments
}
