// Package toolhelp exposes Toolhelp32 system snapshots as forward cursors
// over the process and thread tables.
//
// A Snapshot is created from CreateToolhelp32Snapshot and iterated with the
// scanner protocol: Next advances, Entry reads the current row, and Err
// reports whether iteration stopped because the table was exhausted (nil) or
// because a call failed. The first/next primitives mutate enumeration state
// inside the OS object referenced by the handle, so a Snapshot must only be
// used from one goroutine with sequential calls.
package toolhelp

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/handle"
	"github.com/noelhorvath/safewin/winerror"
)

// ProcessEntry is one row of the process table, copied out of a
// PROCESSENTRY32W structure.
type ProcessEntry struct {
	PID       uint32
	ParentPID uint32
	ExeFile   string
}

// ThreadEntry is one row of the thread table.
type ThreadEntry struct {
	TID      uint32
	OwnerPID uint32
}

// Entry is a snapshot row kind.
type Entry interface {
	ProcessEntry | ThreadEntry
}

// stepFunc pulls one row from the snapshot identified by the raw handle.
// ok is false on the no-more-entries sentinel; err is set for real failures.
type stepFunc[E Entry] func(windows.Handle) (entry E, ok bool, err error)

// Snapshot is a restartable forward cursor over a Toolhelp32 snapshot.
type Snapshot[E Entry] struct {
	h     *handle.Handle
	first stepFunc[E]
	next  stepFunc[E]

	started bool
	done    bool
	cur     E
	err     error
}

// CreateProcessSnapshot opens a snapshot of the system process table and
// validates that it can produce a first entry.
func CreateProcessSnapshot() (*Snapshot[ProcessEntry], error) {
	return CreateProcessSnapshotWithPID(0)
}

// CreateProcessSnapshotWithPID is CreateProcessSnapshot with an explicit pid
// argument to the OS call. The pid is ignored for whole-table process
// snapshots but kept for parity with snapshot kinds that require one.
func CreateProcessSnapshotWithPID(pid uint32) (*Snapshot[ProcessEntry], error) {
	return create[ProcessEntry](windows.TH32CS_SNAPPROCESS, pid, firstProcess, nextProcess)
}

// CreateThreadSnapshot opens a snapshot of the system thread table.
func CreateThreadSnapshot() (*Snapshot[ThreadEntry], error) {
	return CreateThreadSnapshotWithPID(0)
}

// CreateThreadSnapshotWithPID is CreateThreadSnapshot with an explicit pid
// argument to the OS call.
func CreateThreadSnapshotWithPID(pid uint32) (*Snapshot[ThreadEntry], error) {
	return create[ThreadEntry](windows.TH32CS_SNAPTHREAD, pid, firstThread, nextThread)
}

func create[E Entry](flags, pid uint32, first, next stepFunc[E]) (*Snapshot[E], error) {
	raw, err := windows.CreateToolhelp32Snapshot(flags, pid)
	if err != nil {
		return nil, errors.Wrap(winerror.From("CreateToolhelp32Snapshot", err), "toolhelp: create snapshot")
	}
	h, err := handle.Wrap(raw, handle.Object)
	if err != nil {
		return nil, errors.Wrap(err, "toolhelp: create snapshot")
	}
	s := &Snapshot[E]{h: h, first: first, next: next}
	// A freshly opened snapshot must prove it can yield a first entry before
	// it is handed to the caller; Next maps later failures to end-of-stream
	// state, so this is the only place an open-but-broken handle surfaces.
	// The probe is not cached: the first Next re-issues the first-entry call,
	// which restarts the OS cursor, so no row is lost.
	if _, _, err := s.first(h.Raw()); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "toolhelp: probe first entry")
	}
	return s, nil
}

// Next advances the cursor to the next entry. It returns false when the table
// is exhausted or a call failed; Err tells the two apart.
func (s *Snapshot[E]) Next() bool {
	if s.done {
		return false
	}
	var (
		e   E
		ok  bool
		err error
	)
	if s.started {
		e, ok, err = s.next(s.h.Raw())
	} else {
		e, ok, err = s.first(s.h.Raw())
		s.started = true
	}
	if err != nil || !ok {
		s.done = true
		s.err = err
		return false
	}
	s.cur = e
	return true
}

// Entry returns the row produced by the last successful Next.
func (s *Snapshot[E]) Entry() E { return s.cur }

// Err reports the failure that ended iteration, or nil if the cursor is still
// active or was exhausted normally.
func (s *Snapshot[E]) Err() error { return s.err }

// Started reports whether the first entry has been pulled since creation or
// the last Reset.
func (s *Snapshot[E]) Started() bool { return s.started }

// Reset re-arms the cursor at the first entry without reopening the OS
// snapshot. Unlike Next, a failure here is returned to the caller.
func (s *Snapshot[E]) Reset() error {
	if _, _, err := s.first(s.h.Raw()); err != nil {
		return errors.Wrap(err, "toolhelp: reset")
	}
	var zero E
	s.started = false
	s.done = false
	s.err = nil
	s.cur = zero
	return nil
}

// Collect drains the cursor from its current position.
func (s *Snapshot[E]) Collect() ([]E, error) {
	var out []E
	for s.Next() {
		out = append(out, s.Entry())
	}
	return out, s.Err()
}

// Close releases the snapshot handle. Safe to call more than once.
func (s *Snapshot[E]) Close() error {
	s.done = true
	return s.h.Close()
}

// step maps the outcome of a first/next call: the no-more-entries sentinel
// ends iteration without an error, anything else is a real failure.
func step(op string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if code, ok := winerror.Code(err); ok && code == syscall.Errno(windows.ERROR_NO_MORE_FILES) {
		return false, nil
	}
	return false, winerror.From(op, err)
}

func newProcessEntry(raw *windows.ProcessEntry32) ProcessEntry {
	return ProcessEntry{
		PID:       raw.ProcessID,
		ParentPID: raw.ParentProcessID,
		ExeFile:   windows.UTF16ToString(raw.ExeFile[:]),
	}
}

func firstProcess(h windows.Handle) (ProcessEntry, bool, error) {
	var raw windows.ProcessEntry32
	raw.Size = uint32(unsafe.Sizeof(raw))
	if ok, err := step("Process32FirstW", windows.Process32First(h, &raw)); !ok {
		return ProcessEntry{}, false, err
	}
	return newProcessEntry(&raw), true, nil
}

func nextProcess(h windows.Handle) (ProcessEntry, bool, error) {
	var raw windows.ProcessEntry32
	raw.Size = uint32(unsafe.Sizeof(raw))
	if ok, err := step("Process32NextW", windows.Process32Next(h, &raw)); !ok {
		return ProcessEntry{}, false, err
	}
	return newProcessEntry(&raw), true, nil
}

func firstThread(h windows.Handle) (ThreadEntry, bool, error) {
	var raw windows.ThreadEntry32
	raw.Size = uint32(unsafe.Sizeof(raw))
	if ok, err := step("Thread32First", windows.Thread32First(h, &raw)); !ok {
		return ThreadEntry{}, false, err
	}
	return ThreadEntry{TID: raw.ThreadID, OwnerPID: raw.OwnerProcessID}, true, nil
}

func nextThread(h windows.Handle) (ThreadEntry, bool, error) {
	var raw windows.ThreadEntry32
	raw.Size = uint32(unsafe.Sizeof(raw))
	if ok, err := step("Thread32Next", windows.Thread32Next(h, &raw)); !ok {
		return ThreadEntry{}, false, err
	}
	return ThreadEntry{TID: raw.ThreadID, OwnerPID: raw.OwnerProcessID}, true, nil
}
