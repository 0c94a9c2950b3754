//go:build amd64 || arm64

// Package window wraps top-level window discovery, inspection and control.
//
// An HWND is an identifier, not a kernel handle. The OS can reuse one as
// soon as its window is destroyed, so a Window may go stale at any time;
// state queries report the window as it was at the moment of the call.
// The package assumes a 64-bit target; by-value POINT arguments pack into
// a single call word only there.
package window

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/handle"
	"github.com/noelhorvath/safewin/winerror"
)

// Window identifies one window by HWND.
type Window struct {
	h *handle.Handle
}

func fromHWND(hwnd uintptr) *Window {
	return &Window{h: handle.New(windows.Handle(hwnd), handle.Window)}
}

// HWND returns the raw window identifier.
func (w *Window) HWND() windows.Handle { return w.h.Raw() }

func utf16PtrOrNil(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	p, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "window: encode %q", s)
	}
	return p, nil
}

// Find locates a top-level window by class name and title. Either argument
// may be empty to match any value.
func Find(class, title string) (*Window, error) {
	classp, err := utf16PtrOrNil(class)
	if err != nil {
		return nil, err
	}
	titlep, err := utf16PtrOrNil(title)
	if err != nil {
		return nil, err
	}
	r1, _, callErr := procFindWindowW.Call(
		uintptr(unsafe.Pointer(classp)),
		uintptr(unsafe.Pointer(titlep)),
	)
	if r1 == 0 {
		return nil, errors.Wrap(winerror.From("FindWindowW", callErr), "window: find")
	}
	return fromHWND(r1), nil
}

// FindChild locates a child window of w by class name and title, either of
// which may be empty. The search scans children in Z order starting after
// prev; nil starts from the first child.
func (w *Window) FindChild(prev *Window, class, title string) (*Window, error) {
	classp, err := utf16PtrOrNil(class)
	if err != nil {
		return nil, err
	}
	titlep, err := utf16PtrOrNil(title)
	if err != nil {
		return nil, err
	}
	var after uintptr
	if prev != nil {
		after = uintptr(prev.HWND())
	}
	r1, _, callErr := procFindWindowExW.Call(
		uintptr(w.HWND()),
		after,
		uintptr(unsafe.Pointer(classp)),
		uintptr(unsafe.Pointer(titlep)),
	)
	if r1 == 0 {
		return nil, errors.Wrap(winerror.From("FindWindowExW", callErr), "window: find child")
	}
	return fromHWND(r1), nil
}

// FindByClass locates a top-level window by class name.
func FindByClass(class string) (*Window, error) { return Find(class, "") }

// FindByTitle locates a top-level window by title.
func FindByTitle(title string) (*Window, error) { return Find("", title) }

// enumCallback collects HWNDs from an Enum*Windows pass into the slice the
// lParam points at. Returning 1 keeps the enumeration going. Memory backing
// a syscall.NewCallback is never released and a process may only create a
// bounded number of callbacks, so this single one is shared by every
// enumeration.
var enumCallback = syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
	out := (*[]*Window)(unsafe.Pointer(lparam))
	*out = append(*out, fromHWND(hwnd))
	return 1
})

// Windows lists all top-level windows.
func Windows() ([]*Window, error) {
	var out []*Window
	r1, _, callErr := procEnumWindows.Call(enumCallback, uintptr(unsafe.Pointer(&out)))
	if r1 == 0 {
		return nil, errors.Wrap(winerror.From("EnumWindows", callErr), "window: enumerate")
	}
	return out, nil
}

// ThreadWindows lists the windows owned by the given thread. An empty result
// is not an error; threads without a message queue own no windows.
func ThreadWindows(tid uint32) []*Window {
	var out []*Window
	// EnumThreadWindows returns FALSE both on failure and when the thread
	// owns no windows, so the return value carries no signal.
	procEnumThreadWindows.Call(uintptr(tid), enumCallback, uintptr(unsafe.Pointer(&out)))
	return out
}

// Children lists the direct and indirect child windows of w.
func (w *Window) Children() []*Window {
	var out []*Window
	procEnumChildWindows.Call(uintptr(w.HWND()), enumCallback, uintptr(unsafe.Pointer(&out)))
	return out
}

// Foreground returns the window the user is working with, or nil when
// no window has focus (for instance during a desktop switch).
func Foreground() *Window {
	r1, _, _ := procGetForegroundWindow.Call()
	if r1 == 0 {
		return nil
	}
	return fromHWND(r1)
}

// Desktop returns the desktop window covering the whole screen.
func Desktop() *Window {
	r1, _, _ := procGetDesktopWindow.Call()
	return fromHWND(r1)
}

// Shell returns the shell's desktop window, or nil if no shell is running.
func Shell() *Window {
	r1, _, _ := procGetShellWindow.Call()
	if r1 == 0 {
		return nil
	}
	return fromHWND(r1)
}

// Top returns the highest window in the Z order, or nil if there is none.
func Top() *Window {
	r1, _, _ := procGetTopWindow.Call(0)
	if r1 == 0 {
		return nil
	}
	return fromHWND(r1)
}

// pointArg packs a POINT for APIs that take it by value. On 64-bit Windows
// the two LONGs travel in a single word, y in the high half.
func pointArg(x, y int32) uintptr {
	return uintptr(uint64(uint32(x)) | uint64(uint32(y))<<32)
}

// FromPoint returns the window containing the given screen point, or nil
// when the point is over no window.
func FromPoint(x, y int32) *Window {
	r1, _, _ := procWindowFromPoint.Call(pointArg(x, y))
	if r1 == 0 {
		return nil
	}
	return fromHWND(r1)
}

// Exists reports whether the HWND still identifies a live window.
func (w *Window) Exists() bool {
	r1, _, _ := procIsWindow.Call(uintptr(w.HWND()))
	return r1 != 0
}

// IsVisible reports whether the window has the visible style bit.
func (w *Window) IsVisible() bool {
	r1, _, _ := procIsWindowVisible.Call(uintptr(w.HWND()))
	return r1 != 0
}

// IsMinimized reports whether the window is iconic.
func (w *Window) IsMinimized() bool {
	r1, _, _ := procIsIconic.Call(uintptr(w.HWND()))
	return r1 != 0
}

// IsMaximized reports whether the window is zoomed.
func (w *Window) IsMaximized() bool {
	r1, _, _ := procIsZoomed.Call(uintptr(w.HWND()))
	return r1 != 0
}

// Title reads the window's title bar text. Windows without a title return
// the empty string.
func (w *Window) Title() (string, error) {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(w.HWND()))
	if n == 0 {
		return "", nil
	}
	buf := make([]uint16, n+1)
	r1, _, callErr := procGetWindowTextW.Call(
		uintptr(w.HWND()),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if r1 == 0 {
		if code, ok := winerror.Code(callErr); ok && code != 0 {
			return "", errors.Wrap(winerror.From("GetWindowTextW", callErr), "window: get title")
		}
		return "", nil
	}
	return windows.UTF16ToString(buf[:r1]), nil
}

// SetTitle replaces the window's title bar text.
func (w *Window) SetTitle(title string) error {
	titlep, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return errors.Wrapf(err, "window: encode title %q", title)
	}
	r1, _, callErr := procSetWindowTextW.Call(uintptr(w.HWND()), uintptr(unsafe.Pointer(titlep)))
	if r1 == 0 {
		return errors.Wrap(winerror.From("SetWindowTextW", callErr), "window: set title")
	}
	return nil
}

// ClassName reads the name of the window's class.
func (w *Window) ClassName() (string, error) {
	// Class names are at most 256 characters.
	buf := make([]uint16, 257)
	r1, _, callErr := procGetClassNameW.Call(
		uintptr(w.HWND()),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if r1 == 0 {
		return "", errors.Wrap(winerror.From("GetClassNameW", callErr), "window: get class name")
	}
	return windows.UTF16ToString(buf[:r1]), nil
}

// ProcessThreadIDs returns the pid and tid of the window's creator.
func (w *Window) ProcessThreadIDs() (pid, tid uint32, err error) {
	r1, _, callErr := procGetWindowThreadProcessId.Call(
		uintptr(w.HWND()),
		uintptr(unsafe.Pointer(&pid)),
	)
	if r1 == 0 {
		return 0, 0, errors.Wrap(winerror.From("GetWindowThreadProcessId", callErr), "window: resolve owner")
	}
	return pid, uint32(r1), nil
}

// ShowState selects how Show presents a window, matching the SW_* commands.
type ShowState int32

const (
	ShowHide            ShowState = 0
	ShowNormal          ShowState = 1
	ShowMinimized       ShowState = 2
	ShowMaximized       ShowState = 3
	ShowNoActivate      ShowState = 4
	ShowDefault         ShowState = 10
	ShowRestore         ShowState = 9
	ShowMinimizeNoFocus ShowState = 7
)

// Show sets the window's show state and reports whether the window was
// visible before the call.
func (w *Window) Show(state ShowState) bool {
	r1, _, _ := procShowWindow.Call(uintptr(w.HWND()), uintptr(int32(state)))
	return r1 != 0
}

// Minimize collapses the window to an icon. Unlike Show(ShowMinimized) it
// works on windows owned by hung threads.
func (w *Window) Minimize() error {
	r1, _, callErr := procCloseWindow.Call(uintptr(w.HWND()))
	if r1 == 0 {
		return errors.Wrap(winerror.From("CloseWindow", callErr), "window: minimize")
	}
	return nil
}

// Close asks the window to close by posting WM_CLOSE. The application
// decides how to respond; it may prompt the user or refuse.
func (w *Window) Close() error {
	return NewMessage(w, MsgClose, 0, 0).Post()
}

// SetForeground brings the window to the foreground. The OS refuses the
// request unless the caller holds foreground rights.
func (w *Window) SetForeground() error {
	r1, _, callErr := procSetForegroundWindow.Call(uintptr(w.HWND()))
	if r1 == 0 {
		return errors.Wrap(winerror.From("SetForegroundWindow", callErr), "window: set foreground")
	}
	return nil
}
