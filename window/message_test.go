//go:build amd64 || arm64

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestNewMessage(t *testing.T) {
	w := fromHWND(0x1234)
	m := NewMessage(w, MsgUser+1, 7, 9)
	assert.Equal(t, w, m.Window)
	assert.Equal(t, uint32(MsgUser+1), m.ID)
	assert.Equal(t, uintptr(7), m.WParam)
	assert.Equal(t, uintptr(9), m.LParam)
}

func TestBroadcastTargetsAllWindows(t *testing.T) {
	m := Broadcast(MsgNull, 0, 0)
	assert.Equal(t, windows.Handle(broadcastHWND), m.Window.HWND())
}

func TestMessageHWNDNilWindow(t *testing.T) {
	m := Message{ID: MsgNull}
	assert.Equal(t, uintptr(0), m.hwnd())
}

func TestRegisterMessageIsStable(t *testing.T) {
	first, err := RegisterMessage("safewin.test.message")
	require.NoError(t, err)
	// Registered messages live in the 0xC000-0xFFFF range.
	assert.GreaterOrEqual(t, first, uint32(0xC000))

	second, err := RegisterMessage("safewin.test.message")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDesktopWindow(t *testing.T) {
	d := Desktop()
	require.NotNil(t, d)
	assert.True(t, d.Exists())
	assert.True(t, d.IsVisible())
}

func TestWindowsEnumeration(t *testing.T) {
	wins, err := Windows()
	require.NoError(t, err)
	// Even a bare session has message-only and shell windows.
	assert.NotEmpty(t, wins)

	for _, w := range wins[:min(len(wins), 10)] {
		pid, tid, err := w.ProcessThreadIDs()
		require.NoError(t, err)
		assert.NotZero(t, pid)
		assert.NotZero(t, tid)
	}
}

func TestStaleHWND(t *testing.T) {
	// An HWND nothing ever created does not identify a window.
	w := fromHWND(0x7fff_0001)
	assert.False(t, w.Exists())
	assert.False(t, w.IsVisible())
}
