package handle

import (
	stderrors "errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

// countingKind records close calls and can be told to fail.
func countingKind(calls *int, closeErr error) *Kind {
	return NewKind("counting", windows.ERROR_INVALID_HANDLE, func(windows.Handle) error {
		*calls++
		return closeErr
	})
}

func TestWrapRejectsNullHandle(t *testing.T) {
	_, err := Wrap(0, Object)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, syscall.Errno(windows.ERROR_INVALID_HANDLE)))
}

func TestWrapRejectsInvalidHandleValue(t *testing.T) {
	_, err := Wrap(windows.InvalidHandle, Object)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, syscall.Errno(windows.ERROR_INVALID_HANDLE)))
}

func TestWrapCarriesKindInvalidCode(t *testing.T) {
	_, err := Wrap(0, Window)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, syscall.Errno(windows.ERROR_INVALID_WINDOW_HANDLE)))
}

func TestWrapAcceptsLiveHandle(t *testing.T) {
	h, err := Wrap(windows.Handle(42), Registry)
	require.NoError(t, err)
	assert.Equal(t, windows.Handle(42), h.Raw())
	assert.Equal(t, Registry, h.Kind())
}

func TestCloseRunsAtMostOnce(t *testing.T) {
	var calls int
	h := New(windows.Handle(7), countingKind(&calls, nil))

	require.NoError(t, h.Close())
	assert.Equal(t, 1, calls)
	assert.True(t, h.Closed())

	// Later calls are no-ops even though the first one succeeded.
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, calls)
}

func TestCloseFailureIsReturnedOnce(t *testing.T) {
	var calls int
	h := New(windows.Handle(7), countingKind(&calls, syscall.Errno(windows.ERROR_INVALID_HANDLE)))

	err := h.Close()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, syscall.Errno(windows.ERROR_INVALID_HANDLE)))
	assert.Equal(t, 1, calls)

	// A failed close still consumes the handle's single close attempt.
	require.NoError(t, h.Close())
	assert.Equal(t, 1, calls)
}

func TestRootHandleNeverCloses(t *testing.T) {
	var calls int
	h := NewRoot(windows.Handle(windows.HKEY_LOCAL_MACHINE), countingKind(&calls, nil))

	require.True(t, h.IsRoot())
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 0, calls)
}

func TestNilCloseKindIsNoOp(t *testing.T) {
	h := New(windows.Handle(99), Window)
	require.NoError(t, h.Close())
	assert.False(t, h.Closed())
}

func TestNilHandleCloseIsNoOp(t *testing.T) {
	var h *Handle
	require.NoError(t, h.Close())
}
