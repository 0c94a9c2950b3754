//go:build amd64 || arm64

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestPointArg(t *testing.T) {
	assert.Equal(t, uintptr(0), pointArg(0, 0))
	assert.Equal(t, uintptr(0x000000140000000a), pointArg(10, 20))
	// Negative coordinates keep their 32-bit two's complement halves.
	assert.Equal(t, uintptr(0xfffffffeffffffff), pointArg(-1, -2))
	// y must land in the high half, not be shifted out.
	assert.Equal(t, uintptr(0x0000000100000000), pointArg(0, 1))
}

func TestRepeatedEnumerationReusesCallback(t *testing.T) {
	// The process-wide callback budget is a few thousand; minting one per
	// enumeration would blow it here. All passes must share enumCallback.
	tid := windows.GetCurrentThreadId()
	for i := 0; i < 5000; i++ {
		ThreadWindows(tid)
	}

	wins, err := Windows()
	require.NoError(t, err)
	assert.NotEmpty(t, wins)
}

func TestEnumerationsDoNotShareResults(t *testing.T) {
	first, err := Windows()
	require.NoError(t, err)
	second, err := Windows()
	require.NoError(t, err)

	// Each pass appends into its own slice handed through lParam.
	assert.InDelta(t, len(first), len(second), 25)
}

func TestFindChildOfDesktop(t *testing.T) {
	desktop := Desktop()

	first, err := desktop.FindChild(nil, "", "")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Exists())

	// Scanning after the first child yields a different window.
	second, err := desktop.FindChild(first, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.HWND(), second.HWND())
}

func TestFindChildNoMatch(t *testing.T) {
	_, err := Desktop().FindChild(nil, "safewin-no-such-class-5c1e", "")
	assert.Error(t, err)
}
