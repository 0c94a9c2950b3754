// Package handle owns raw Win32 handles and releases them at most once.
//
// A handle's behavior on close depends on what it identifies: kernel object
// handles must go through CloseHandle exactly once, while window handles and
// predefined registry roots are plain identifiers with no close call at all.
// That distinction is captured by Kind, which pairs a close function with the
// error code marking an invalid handle of that class.
package handle

import (
	"log"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/winerror"
)

// CloseFunc releases a raw OS handle.
type CloseFunc func(windows.Handle) error

// Kind describes a class of system resource: how a live handle is released
// and which error code marks an invalid one. Kinds with a nil close function
// wrap pseudo handles that the OS never requires closing.
type Kind struct {
	name        string
	invalidCode syscall.Errno
	close       CloseFunc
}

// NewKind builds a resource kind. close may be nil for pseudo handles.
func NewKind(name string, invalidCode syscall.Errno, close CloseFunc) *Kind {
	return &Kind{name: name, invalidCode: invalidCode, close: close}
}

var (
	// Object is a kernel object handle, released with CloseHandle.
	Object = NewKind("object", windows.ERROR_INVALID_HANDLE, windows.CloseHandle)

	// Registry covers HKEY values. Predefined hive roots need no close, and
	// opened subkeys are closed with RegCloseKey by the registry package, so
	// the kind itself does not close.
	Registry = NewKind("registry", windows.ERROR_INVALID_HANDLE, nil)

	// Window covers HWND values, which are identifiers rather than kernel
	// handles. There is nothing to close.
	Window = NewKind("window", windows.ERROR_INVALID_WINDOW_HANDLE, nil)
)

// Name reports the kind's short name, used in error and log messages.
func (k *Kind) Name() string { return k.name }

// InvalidCode reports the error code used when a handle of this kind is
// rejected at construction.
func (k *Kind) InvalidCode() syscall.Errno { return k.invalidCode }

// Handle owns one raw OS handle. At most one owner exists for a given raw
// value; a Handle is not copied or shared, matching the OS rule that a handle
// must not be closed twice.
type Handle struct {
	raw    windows.Handle
	kind   *Kind
	root   bool
	closed bool
}

// New wraps raw without validation. Use it for values already validated by
// the API call that produced them.
func New(raw windows.Handle, kind *Kind) *Handle {
	return &Handle{raw: raw, kind: kind}
}

// NewRoot wraps a predefined handle such as a registry hive root. Close never
// reaches the OS for a root handle.
func NewRoot(raw windows.Handle, kind *Kind) *Handle {
	return &Handle{raw: raw, kind: kind, root: true}
}

// Wrap rejects null and invalid raw values. The returned error carries the
// kind's invalid-handle code.
func Wrap(raw windows.Handle, kind *Kind) (*Handle, error) {
	if raw == 0 || raw == windows.InvalidHandle {
		return nil, winerror.New("wrap "+kind.name+" handle", kind.invalidCode)
	}
	return New(raw, kind), nil
}

// Raw returns the underlying OS handle value. The caller must not close it.
func (h *Handle) Raw() windows.Handle { return h.raw }

// Kind returns the handle's resource kind.
func (h *Handle) Kind() *Kind { return h.kind }

// IsRoot reports whether this is a predefined handle exempt from closing.
func (h *Handle) IsRoot() bool { return h.root }

// Closed reports whether Close has already run.
func (h *Handle) Closed() bool { return h.closed }

// Close releases the handle. Only the first call on a non-root handle of a
// closable kind reaches the OS; later calls return nil. A close failure is
// logged as well as returned, since owners usually release handles on paths
// that cannot propagate it — leaking the handle is preferred to crashing.
func (h *Handle) Close() error {
	if h == nil || h.closed || h.root || h.kind.close == nil {
		return nil
	}
	h.closed = true
	if err := h.kind.close(h.raw); err != nil {
		werr := winerror.From("close "+h.kind.name+" handle", err)
		log.Printf("handle: %v", werr)
		return werr
	}
	return nil
}
