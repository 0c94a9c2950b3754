// Package process wraps Win32 process inspection and control. A Process is a
// flat record taken from a point-in-time snapshot of the process table;
// per-process operations open a fresh handle with the least access they need
// and release it before returning.
package process

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/handle"
	"github.com/noelhorvath/safewin/security"
	"github.com/noelhorvath/safewin/toolhelp"
	"github.com/noelhorvath/safewin/winerror"
)

// Process identifies a process observed in a snapshot of the process table.
// The record stays valid after the process exits; operations on a dead
// process fail when they open it.
type Process struct {
	ID       uint32
	ParentID uint32
	Name     string
}

func fromEntry(e toolhelp.ProcessEntry) Process {
	return Process{ID: e.PID, ParentID: e.ParentPID, Name: e.ExeFile}
}

// Processes lists the system process table from a point-in-time snapshot.
func Processes() ([]Process, error) {
	snap, err := toolhelp.CreateProcessSnapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Close()
	entries, err := snap.Collect()
	if err != nil {
		return nil, errors.Wrap(err, "process: enumerate")
	}
	out := make([]Process, len(entries))
	for i, e := range entries {
		out[i] = fromEntry(e)
	}
	return out, nil
}

// FindByID returns the process with the given pid, or nil if it is not in
// the current process table.
func FindByID(pid uint32) (*Process, error) {
	snap, err := toolhelp.CreateProcessSnapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Close()
	for snap.Next() {
		if e := snap.Entry(); e.PID == pid {
			p := fromEntry(e)
			return &p, nil
		}
	}
	if err := snap.Err(); err != nil {
		return nil, errors.Wrap(err, "process: find by id")
	}
	return nil, nil
}

// CurrentID returns the pid of the calling process.
func CurrentID() uint32 {
	return windows.GetCurrentProcessId()
}

// Exit terminates the calling process with the given exit code.
func Exit(code uint32) {
	windows.ExitProcess(code)
}

// PIDs returns the raw pid list reported by EnumProcesses. The list includes
// the idle process (pid 0), which cannot be opened.
func PIDs() ([]uint32, error) {
	buf := make([]uint32, 1024)
	for {
		var ret uint32
		if err := windows.EnumProcesses(buf, &ret); err != nil {
			return nil, errors.Wrap(winerror.From("EnumProcesses", err), "process: list pids")
		}
		n := int(ret / 4)
		if n < len(buf) {
			return buf[:n:n], nil
		}
		// A full buffer means truncation; EnumProcesses gives no better signal.
		buf = make([]uint32, len(buf)*2)
	}
}

func (p *Process) open(access uint32) (*handle.Handle, error) {
	raw, err := windows.OpenProcess(access, false, p.ID)
	if err != nil {
		return nil, errors.Wrapf(winerror.From("OpenProcess", err), "process: open pid %d", p.ID)
	}
	return handle.New(raw, handle.Object), nil
}

// PriorityClass is a process scheduling priority class.
type PriorityClass uint32

const (
	PriorityIdle        = PriorityClass(windows.IDLE_PRIORITY_CLASS)
	PriorityBelowNormal = PriorityClass(windows.BELOW_NORMAL_PRIORITY_CLASS)
	PriorityNormal      = PriorityClass(windows.NORMAL_PRIORITY_CLASS)
	PriorityAboveNormal = PriorityClass(windows.ABOVE_NORMAL_PRIORITY_CLASS)
	PriorityHigh        = PriorityClass(windows.HIGH_PRIORITY_CLASS)
	PriorityRealtime    = PriorityClass(windows.REALTIME_PRIORITY_CLASS)
)

func (c PriorityClass) String() string {
	switch c {
	case PriorityIdle:
		return "idle"
	case PriorityBelowNormal:
		return "below normal"
	case PriorityNormal:
		return "normal"
	case PriorityAboveNormal:
		return "above normal"
	case PriorityHigh:
		return "high"
	case PriorityRealtime:
		return "realtime"
	default:
		return "unknown"
	}
}

// PriorityClass reads the process's scheduling priority class.
func (p *Process) PriorityClass() (PriorityClass, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	c, err := windows.GetPriorityClass(h.Raw())
	if err != nil {
		return 0, errors.Wrap(winerror.From("GetPriorityClass", err), "process: get priority class")
	}
	return PriorityClass(c), nil
}

// SetPriorityClass changes the process's scheduling priority class.
func (p *Process) SetPriorityClass(c PriorityClass) error {
	h, err := p.open(processSetInformation)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := windows.SetPriorityClass(h.Raw(), uint32(c)); err != nil {
		return errors.Wrap(winerror.From("SetPriorityClass", err), "process: set priority class")
	}
	return nil
}

// Times carries the process timing counters. Exit is the zero time while the
// process is still running.
type Times struct {
	Creation time.Time
	Exit     time.Time
	Kernel   time.Duration
	User     time.Duration
}

func filetimeToDuration(ft windows.Filetime) time.Duration {
	ticks := uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime)
	return time.Duration(ticks * 100)
}

// Times reads the process's creation/exit times and CPU usage.
func (p *Process) Times() (*Times, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(h.Raw(), &creation, &exit, &kernel, &user); err != nil {
		return nil, errors.Wrap(winerror.From("GetProcessTimes", err), "process: get times")
	}
	t := &Times{
		Creation: time.Unix(0, creation.Nanoseconds()),
		Kernel:   filetimeToDuration(kernel),
		User:     filetimeToDuration(user),
	}
	if exit.HighDateTime != 0 || exit.LowDateTime != 0 {
		t.Exit = time.Unix(0, exit.Nanoseconds())
	}
	return t, nil
}

// IOCounters is the cumulative I/O activity of a process.
type IOCounters struct {
	ReadOperations  uint64
	WriteOperations uint64
	OtherOperations uint64
	ReadBytes       uint64
	WriteBytes      uint64
	OtherBytes      uint64
}

// IOCounters reads the process's cumulative I/O counters.
func (p *Process) IOCounters() (*IOCounters, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	var raw ioCounters
	r1, _, callErr := procGetProcessIoCounters.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(&raw)))
	if r1 == 0 {
		return nil, errors.Wrap(winerror.From("GetProcessIoCounters", callErr), "process: get io counters")
	}
	return &IOCounters{
		ReadOperations:  raw.ReadOperationCount,
		WriteOperations: raw.WriteOperationCount,
		OtherOperations: raw.OtherOperationCount,
		ReadBytes:       raw.ReadTransferCount,
		WriteBytes:      raw.WriteTransferCount,
		OtherBytes:      raw.OtherTransferCount,
	}, nil
}

// HandleCount reads the number of handles the process currently holds open.
func (p *Process) HandleCount() (uint32, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	var count uint32
	r1, _, callErr := procGetProcessHandleCount.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(&count)))
	if r1 == 0 {
		return 0, errors.Wrap(winerror.From("GetProcessHandleCount", callErr), "process: get handle count")
	}
	return count, nil
}

// MemoryPriority is the default memory priority assigned to a process's
// threads, from lowest (1) to normal (5).
type MemoryPriority uint32

const (
	MemoryPriorityVeryLow     MemoryPriority = 1
	MemoryPriorityLow         MemoryPriority = 2
	MemoryPriorityMedium      MemoryPriority = 3
	MemoryPriorityBelowNormal MemoryPriority = 4
	MemoryPriorityNormal      MemoryPriority = 5
)

// MemoryPriority reads the process's default memory priority.
func (p *Process) MemoryPriority() (MemoryPriority, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	var info memoryPriorityInformation
	r1, _, callErr := procGetProcessInformation.Call(
		uintptr(h.Raw()),
		processMemoryPriority,
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
	)
	if r1 == 0 {
		return 0, errors.Wrap(winerror.From("GetProcessInformation", callErr), "process: get memory priority")
	}
	return MemoryPriority(info.MemoryPriority), nil
}

// SetMemoryPriority changes the process's default memory priority.
func (p *Process) SetMemoryPriority(prio MemoryPriority) error {
	h, err := p.open(processSetInformation)
	if err != nil {
		return err
	}
	defer h.Close()
	info := memoryPriorityInformation{MemoryPriority: uint32(prio)}
	r1, _, callErr := procSetProcessInformation.Call(
		uintptr(h.Raw()),
		processMemoryPriority,
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
	)
	if r1 == 0 {
		return errors.Wrap(winerror.From("SetProcessInformation", callErr), "process: set memory priority")
	}
	return nil
}

// IsCritical reports whether the process is marked critical, meaning its
// termination crashes the system.
func (p *Process) IsCritical() (bool, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return false, err
	}
	defer h.Close()
	var critical int32
	r1, _, callErr := procIsProcessCritical.Call(uintptr(h.Raw()), uintptr(unsafe.Pointer(&critical)))
	if r1 == 0 {
		return false, errors.Wrap(winerror.From("IsProcessCritical", callErr), "process: query critical flag")
	}
	return critical != 0, nil
}

// PathFormat selects the path style returned by FullImageName.
type PathFormat uint32

const (
	// PathWin32 is a drive-letter path, e.g. C:\Windows\explorer.exe.
	PathWin32 PathFormat = 0
	// PathNative is a device path, e.g. \Device\HarddiskVolume3\...
	PathNative PathFormat = windows.PROCESS_NAME_NATIVE
)

// FullImageName reads the full path of the process's executable image.
func (p *Process) FullImageName(format PathFormat) (string, error) {
	h, err := p.open(windows.PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return "", err
	}
	defer h.Close()
	buf := make([]uint16, windows.MAX_PATH)
	for {
		size := uint32(len(buf))
		err := windows.QueryFullProcessImageName(h.Raw(), uint32(format), &buf[0], &size)
		if err == nil {
			return windows.UTF16ToString(buf[:size]), nil
		}
		if code, ok := winerror.Code(err); ok && code == windows.ERROR_INSUFFICIENT_BUFFER {
			buf = make([]uint16, len(buf)*2)
			continue
		}
		return "", errors.Wrap(winerror.From("QueryFullProcessImageNameW", err), "process: query image name")
	}
}

// Terminate forcibly ends the process with the given exit code.
func (p *Process) Terminate(code uint32) error {
	h, err := p.open(windows.PROCESS_TERMINATE)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := windows.TerminateProcess(h.Raw(), code); err != nil {
		return errors.Wrap(winerror.From("TerminateProcess", err), "process: terminate")
	}
	return nil
}

// Owner resolves the DOMAIN\user owning the process's primary token.
func (p *Process) Owner() (string, error) {
	return security.ProcessTokenOwner(p.ID)
}
