package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileOpenErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"missing", fs.ErrNotExist, FileNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, FileAccessDenied},
		{"other", errors.New("boom"), FileOpenFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileOpenError("/var/log/app.log", tt.err)
			assert.Equal(t, tt.want, err.Kind())
			assert.Equal(t, "/var/log/app.log", err.Path())
			assert.Contains(t, err.Error(), "/var/log/app.log")
			assert.True(t, IsFileOpenError(fmt.Errorf("start: %w", err)))
			assert.True(t, Is(err, tt.err))
		})
	}
}

func TestNotRegularError(t *testing.T) {
	err := NewNotRegularError("/tmp")
	assert.Equal(t, NotRegular, err.Kind())
	assert.Equal(t, "not a regular file: /tmp", err.Error())
}

func TestIOFailure(t *testing.T) {
	err := NewIOFailure("read backward", 4096, errors.New("disk gone"))
	assert.Equal(t, ReadFailed, err.Kind())
	assert.Equal(t, int64(4096), err.Offset())
	assert.Equal(t, "read backward", err.Op())
	assert.Equal(t, "read backward at offset 4096: read failed: disk gone", err.Error())
	assert.False(t, Is(err, ErrHandleClosed))
	assert.True(t, IsIOFailure(err))

	closed := NewIOFailure("read line", 10, os.ErrClosed)
	assert.Equal(t, HandleClosed, closed.Kind())
	assert.True(t, Is(closed, ErrHandleClosed))
	assert.True(t, Is(fmt.Errorf("tail: %w", closed), os.ErrClosed))
}

func TestWrapKeepsKind(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	wrapped := Wrap(NewIOFailure("read", 0, os.ErrClosed), "history")
	assert.Equal(t, HandleClosed, KindOf(wrapped))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.True(t, Is(fmt.Errorf("stop: %w", ErrJoinTimeout), ErrJoinTimeout))
}

func TestPanicError(t *testing.T) {
	err := NewPanicError("tail", "nil map")
	assert.Equal(t, TaskPanic, KindOf(err))
	assert.Equal(t, "tail task panicked: nil map", err.Error())
}

func TestIOFailureTruncated(t *testing.T) {
	err := NewIOFailure("read backward", 128, ErrFileTruncated)
	assert.Equal(t, FileTruncated, KindOf(err))
	assert.ErrorIs(t, err, ErrFileTruncated)
	assert.NotErrorIs(t, err, ErrHandleClosed)
}
