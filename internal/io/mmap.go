package io

import (
	"os"
	"runtime/debug"
	"sync"

	"golang.org/x/exp/mmap"

	apperrors "github.com/TimelordUK/mfollow/internal/errors"
)

// MappedFile provides memory-mapped read access to a file as it was when
// opened. Bytes appended later are outside the mapping, which suits the
// backward history walk: content before the split point never changes.
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string

	closeOnce sync.Once
	closeErr  error
}

// OpenMapped opens a file with memory mapping
func OpenMapped(path string) (*MappedFile, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	return &MappedFile{
		reader: reader,
		size:   int64(reader.Len()),
		path:   path,
	}, nil
}

// ReadAt reads len(p) bytes at offset. Pages cut off by a truncation of the
// file fault on access; that fault is returned as ErrFileTruncated.
func (m *MappedFile) ReadAt(p []byte, off int64) (n int, err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(interface{ Addr() uintptr }); !ok {
			panic(r)
		}
		n, err = 0, apperrors.ErrFileTruncated
	}()
	return m.reader.ReadAt(p, off)
}

// CurrentSize returns the size of the file on disk now, which may differ
// from the mapped size
func (m *MappedFile) CurrentSize() (int64, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Size returns the mapped size
func (m *MappedFile) Size() int64 {
	return m.size
}

// Path returns the file path
func (m *MappedFile) Path() string {
	return m.path
}

// Close unmaps the file. It is safe to call more than once.
func (m *MappedFile) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.reader.Close()
	})
	return m.closeErr
}
