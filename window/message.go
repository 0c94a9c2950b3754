//go:build amd64 || arm64

package window

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/winerror"
)

// Common message identifiers.
const (
	MsgNull       = 0x0000
	MsgClose      = 0x0010
	MsgQuit       = 0x0012
	MsgUser       = 0x0400
	MsgApp        = 0x8000
	MsgSysCommand = 0x0112
)

// broadcastHWND addresses all top-level windows.
const broadcastHWND = 0xffff

// Message is one window message: destination, identifier and the two
// pointer-sized payload words.
type Message struct {
	Window *Window
	ID     uint32
	WParam uintptr
	LParam uintptr
}

// NewMessage builds a message addressed to w.
func NewMessage(w *Window, id uint32, wparam, lparam uintptr) Message {
	return Message{Window: w, ID: id, WParam: wparam, LParam: lparam}
}

// Broadcast builds a message addressed to every top-level window.
func Broadcast(id uint32, wparam, lparam uintptr) Message {
	return Message{Window: fromHWND(broadcastHWND), ID: id, WParam: wparam, LParam: lparam}
}

func (m Message) hwnd() uintptr {
	if m.Window == nil {
		return 0
	}
	return uintptr(m.Window.HWND())
}

// Post places the message on the destination thread's queue and returns
// without waiting for it to be processed.
func (m Message) Post() error {
	r1, _, callErr := procPostMessageW.Call(m.hwnd(), uintptr(m.ID), m.WParam, m.LParam)
	if r1 == 0 {
		return errors.Wrap(winerror.From("PostMessageW", callErr), "window: post message")
	}
	return nil
}

// PostThread places the message on the queue of the given thread, with no
// destination window. The thread must have a message queue.
func (m Message) PostThread(tid uint32) error {
	r1, _, callErr := procPostThreadMessageW.Call(uintptr(tid), uintptr(m.ID), m.WParam, m.LParam)
	if r1 == 0 {
		return errors.Wrapf(winerror.From("PostThreadMessageW", callErr), "window: post to thread %d", tid)
	}
	return nil
}

// Send delivers the message and blocks until the destination window
// procedure returns. A hung destination hangs the caller; prefer
// SendTimeout for windows not under the caller's control.
func (m Message) Send() (uintptr, error) {
	r1, _, _ := procSendMessageW.Call(m.hwnd(), uintptr(m.ID), m.WParam, m.LParam)
	// SendMessage's return value is defined by the message, not by the
	// call, so failure is not detectable here.
	return r1, nil
}

// SendNotify delivers the message without waiting for the result when the
// destination belongs to another thread.
func (m Message) SendNotify() error {
	r1, _, callErr := procSendNotifyMessageW.Call(m.hwnd(), uintptr(m.ID), m.WParam, m.LParam)
	if r1 == 0 {
		return errors.Wrap(winerror.From("SendNotifyMessageW", callErr), "window: send notify")
	}
	return nil
}

// TimeoutFlag adjusts SendTimeout behavior, matching the SMTO_* flags.
type TimeoutFlag uint32

const (
	TimeoutNormal          TimeoutFlag = 0x0000
	TimeoutBlock           TimeoutFlag = 0x0001
	TimeoutAbortIfHung     TimeoutFlag = 0x0002
	TimeoutNoTimeoutIfHung TimeoutFlag = 0x0008
	TimeoutErrorOnExit     TimeoutFlag = 0x0020
)

// SendTimeout delivers the message and waits at most timeout for the
// destination to process it. Timeout granularity is milliseconds.
func (m Message) SendTimeout(flags TimeoutFlag, timeout time.Duration) (uintptr, error) {
	var result uintptr
	r1, _, callErr := procSendMessageTimeoutW.Call(
		m.hwnd(),
		uintptr(m.ID),
		m.WParam,
		m.LParam,
		uintptr(flags),
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&result)),
	)
	if r1 == 0 {
		werr := winerror.From("SendMessageTimeoutW", callErr)
		if code, ok := winerror.Code(werr); ok && code == windows.ERROR_TIMEOUT {
			return 0, errors.Wrap(werr, "window: send timed out")
		}
		return 0, errors.Wrap(werr, "window: send with timeout")
	}
	return result, nil
}

// PostQuit posts a WM_QUIT with the given exit code to the calling thread's
// own queue, ending its message loop.
func PostQuit(code int32) {
	procPostQuitMessage.Call(uintptr(code))
}

// RegisterMessage returns the system-wide message identifier registered for
// name. Repeated calls with the same name return the same identifier.
func RegisterMessage(name string) (uint32, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, errors.Wrapf(err, "window: encode message name %q", name)
	}
	r1, _, callErr := procRegisterWindowMsgW.Call(uintptr(unsafe.Pointer(namep)))
	if r1 == 0 {
		return 0, errors.Wrapf(winerror.From("RegisterWindowMessageW", callErr), "window: register message %q", name)
	}
	return uint32(r1), nil
}
