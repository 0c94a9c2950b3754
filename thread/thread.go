// Package thread wraps Win32 thread inspection and control. A Thread is a
// flat record taken from a snapshot of the system thread table; per-thread
// operations open a fresh handle with the least access they need and release
// it before returning.
package thread

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/handle"
	"github.com/noelhorvath/safewin/security"
	"github.com/noelhorvath/safewin/toolhelp"
	"github.com/noelhorvath/safewin/winerror"
)

// Thread identifies a thread observed in a snapshot of the thread table.
type Thread struct {
	ID       uint32
	OwnerPID uint32
}

func fromEntry(e toolhelp.ThreadEntry) Thread {
	return Thread{ID: e.TID, OwnerPID: e.OwnerPID}
}

// Threads lists the system thread table from a point-in-time snapshot. The
// table covers every process; filter on OwnerPID for a single process.
func Threads() ([]Thread, error) {
	snap, err := toolhelp.CreateThreadSnapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Close()
	entries, err := snap.Collect()
	if err != nil {
		return nil, errors.Wrap(err, "thread: enumerate")
	}
	out := make([]Thread, len(entries))
	for i, e := range entries {
		out[i] = fromEntry(e)
	}
	return out, nil
}

// FindByID returns the thread with the given tid, or nil if it is not in the
// current thread table.
func FindByID(tid uint32) (*Thread, error) {
	snap, err := toolhelp.CreateThreadSnapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Close()
	for snap.Next() {
		if e := snap.Entry(); e.TID == tid {
			t := fromEntry(e)
			return &t, nil
		}
	}
	if err := snap.Err(); err != nil {
		return nil, errors.Wrap(err, "thread: find by id")
	}
	return nil, nil
}

// CurrentID returns the tid of the calling thread.
func CurrentID() uint32 {
	return windows.GetCurrentThreadId()
}

// Switch yields the calling thread's time slice to another ready thread.
// Returns false if no other thread was ready to run.
func Switch() bool {
	r1, _, _ := procSwitchToThread.Call()
	return r1 != 0
}

func (t *Thread) open(access uint32) (*handle.Handle, error) {
	raw, err := windows.OpenThread(access, false, t.ID)
	if err != nil {
		return nil, errors.Wrapf(winerror.From("OpenThread", err), "thread: open tid %d", t.ID)
	}
	return handle.New(raw, handle.Object), nil
}

// Priority is a thread scheduling priority, relative to the owning process's
// priority class.
type Priority int32

const (
	PriorityIdle         Priority = -15
	PriorityLowest       Priority = -2
	PriorityBelowNormal  Priority = -1
	PriorityNormal       Priority = 0
	PriorityAboveNormal  Priority = 1
	PriorityHighest      Priority = 2
	PriorityTimeCritical Priority = 15
)

func (p Priority) String() string {
	switch p {
	case PriorityIdle:
		return "idle"
	case PriorityLowest:
		return "lowest"
	case PriorityBelowNormal:
		return "below normal"
	case PriorityNormal:
		return "normal"
	case PriorityAboveNormal:
		return "above normal"
	case PriorityHighest:
		return "highest"
	case PriorityTimeCritical:
		return "time critical"
	default:
		return "unknown"
	}
}

// Priority reads the thread's scheduling priority.
func (t *Thread) Priority() (Priority, error) {
	h, err := t.open(threadQueryLimitedInformation)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	r1, _, callErr := procGetThreadPriority.Call(uintptr(h.Raw()))
	if int32(r1) == threadPriorityErrorReturn {
		return 0, errors.Wrap(winerror.From("GetThreadPriority", callErr), "thread: get priority")
	}
	return Priority(int32(r1)), nil
}

// SetPriority changes the thread's scheduling priority.
func (t *Thread) SetPriority(p Priority) error {
	h, err := t.open(threadSetLimitedInformation)
	if err != nil {
		return err
	}
	defer h.Close()
	r1, _, callErr := procSetThreadPriority.Call(uintptr(h.Raw()), uintptr(int32(p)))
	if r1 == 0 {
		return errors.Wrap(winerror.From("SetThreadPriority", callErr), "thread: set priority")
	}
	return nil
}

// PriorityBoost reports whether the scheduler may temporarily boost the
// thread's priority.
func (t *Thread) PriorityBoost() (bool, error) {
	h, err := t.open(threadQueryLimitedInformation)
	if err != nil {
		return false, err
	}
	defer h.Close()
	var disabled int32
	r1, _, callErr := procGetThreadPriorityBoost.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(&disabled)))
	if r1 == 0 {
		return false, errors.Wrap(winerror.From("GetThreadPriorityBoost", callErr), "thread: get priority boost")
	}
	// The OS reports the disable flag; callers think in terms of enabled.
	return disabled == 0, nil
}

// SetPriorityBoost enables or disables priority boosting for the thread.
func (t *Thread) SetPriorityBoost(enable bool) error {
	h, err := t.open(threadSetLimitedInformation)
	if err != nil {
		return err
	}
	defer h.Close()
	var disable uintptr
	if !enable {
		disable = 1
	}
	r1, _, callErr := procSetThreadPriorityBoost.Call(uintptr(h.Raw()), disable)
	if r1 == 0 {
		return errors.Wrap(winerror.From("SetThreadPriorityBoost", callErr), "thread: set priority boost")
	}
	return nil
}

// Suspend pauses the thread and returns its previous suspend count.
func (t *Thread) Suspend() (uint32, error) {
	h, err := t.open(threadSuspendResume)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	r1, _, callErr := procSuspendThread.Call(uintptr(h.Raw()))
	if int32(r1) == -1 {
		return 0, errors.Wrap(winerror.From("SuspendThread", callErr), "thread: suspend")
	}
	return uint32(r1), nil
}

// Resume decrements the thread's suspend count and returns the previous
// count; the thread runs again once the count reaches zero.
func (t *Thread) Resume() (uint32, error) {
	h, err := t.open(threadSuspendResume)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	r1, _, callErr := procResumeThread.Call(uintptr(h.Raw()))
	if int32(r1) == -1 {
		return 0, errors.Wrap(winerror.From("ResumeThread", callErr), "thread: resume")
	}
	return uint32(r1), nil
}

// Terminate forcibly ends the thread with the given exit code. The thread
// gets no chance to clean up; use as a last resort.
func (t *Thread) Terminate(code uint32) error {
	h, err := t.open(threadTerminate)
	if err != nil {
		return err
	}
	defer h.Close()
	r1, _, callErr := procTerminateThread.Call(uintptr(h.Raw()), uintptr(code))
	if r1 == 0 {
		return errors.Wrap(winerror.From("TerminateThread", callErr), "thread: terminate")
	}
	return nil
}

// ExitCode reads the thread's exit code; ok is false while it still runs.
func (t *Thread) ExitCode() (code uint32, ok bool, err error) {
	h, err := t.open(threadQueryLimitedInformation)
	if err != nil {
		return 0, false, err
	}
	defer h.Close()
	var raw uint32
	r1, _, callErr := procGetExitCodeThread.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(&raw)))
	if r1 == 0 {
		return 0, false, errors.Wrap(winerror.From("GetExitCodeThread", callErr), "thread: get exit code")
	}
	if raw == stillActive {
		return 0, false, nil
	}
	return raw, true, nil
}

// IsAlive reports whether the thread has not yet exited. A thread that
// exited with code 259 (STILL_ACTIVE) is indistinguishable from a live one.
func (t *Thread) IsAlive() (bool, error) {
	_, exited, err := t.ExitCode()
	if err != nil {
		return false, err
	}
	return !exited, nil
}

// Owner resolves the DOMAIN\user owning the thread's process. Threads only
// carry a token of their own while impersonating, so the process token is
// the stable answer.
func (t *Thread) Owner() (string, error) {
	return security.ProcessTokenOwner(t.OwnerPID)
}

// Description reads the thread's description string (Windows 10 1607+).
func (t *Thread) Description() (string, error) {
	h, err := t.open(threadQueryLimitedInformation)
	if err != nil {
		return "", err
	}
	defer h.Close()
	var descp *uint16
	r1, _, _ := procGetThreadDescription.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(&descp)))
	// GetThreadDescription returns an HRESULT.
	if int32(r1) < 0 {
		return "", errors.Errorf("thread: get description: hresult %#x", uint32(r1))
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(descp)))
	return windows.UTF16PtrToString(descp), nil
}

// SetDescription sets the thread's description string (Windows 10 1607+).
func (t *Thread) SetDescription(desc string) error {
	h, err := t.open(threadSetLimitedInformation)
	if err != nil {
		return err
	}
	defer h.Close()
	descp, err := windows.UTF16PtrFromString(desc)
	if err != nil {
		return errors.Wrapf(err, "thread: encode description %q", desc)
	}
	r1, _, _ := procSetThreadDescription.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(descp)))
	if int32(r1) < 0 {
		return errors.Errorf("thread: set description: hresult %#x", uint32(r1))
	}
	return nil
}
