package thread

import (
	"golang.org/x/sys/windows"
)

// kernel32 procs not surfaced by golang.org/x/sys/windows.
var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetThreadPriority      = kernel32.NewProc("GetThreadPriority")
	procSetThreadPriority      = kernel32.NewProc("SetThreadPriority")
	procGetThreadPriorityBoost = kernel32.NewProc("GetThreadPriorityBoost")
	procSetThreadPriorityBoost = kernel32.NewProc("SetThreadPriorityBoost")
	procSuspendThread          = kernel32.NewProc("SuspendThread")
	procResumeThread           = kernel32.NewProc("ResumeThread")
	procTerminateThread        = kernel32.NewProc("TerminateThread")
	procGetExitCodeThread      = kernel32.NewProc("GetExitCodeThread")
	procSwitchToThread         = kernel32.NewProc("SwitchToThread")
	procGetThreadDescription   = kernel32.NewProc("GetThreadDescription")
	procSetThreadDescription   = kernel32.NewProc("SetThreadDescription")
)

// Thread access rights absent from golang.org/x/sys/windows.
const (
	threadTerminate               = 0x0001
	threadSuspendResume           = 0x0002
	threadSetInformation          = 0x0020
	threadQueryInformation        = 0x0040
	threadSetLimitedInformation   = 0x0400
	threadQueryLimitedInformation = 0x0800
)

// GetThreadPriority reports this sentinel instead of a priority on failure.
const threadPriorityErrorReturn = 0x7fffffff

// GetExitCodeThread reports this while the thread is still running.
const stillActive = 259
