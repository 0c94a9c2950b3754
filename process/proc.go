package process

import (
	"golang.org/x/sys/windows"
)

// kernel32 procs not surfaced by golang.org/x/sys/windows.
var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetProcessHandleCount = kernel32.NewProc("GetProcessHandleCount")
	procGetProcessInformation = kernel32.NewProc("GetProcessInformation")
	procSetProcessInformation = kernel32.NewProc("SetProcessInformation")
	procGetProcessIoCounters  = kernel32.NewProc("GetProcessIoCounters")
	procIsProcessCritical     = kernel32.NewProc("IsProcessCritical")
)

// PROCESS_INFORMATION_CLASS values for Get/SetProcessInformation.
const (
	processMemoryPriority = 0
)

// Access right absent from golang.org/x/sys/windows.
const processSetInformation = 0x0200

// ioCounters mirrors the IO_COUNTERS layout filled by GetProcessIoCounters.
type ioCounters struct {
	ReadOperationCount  uint64
	WriteOperationCount uint64
	OtherOperationCount uint64
	ReadTransferCount   uint64
	WriteTransferCount  uint64
	OtherTransferCount  uint64
}

// memoryPriorityInformation mirrors MEMORY_PRIORITY_INFORMATION.
type memoryPriorityInformation struct {
	MemoryPriority uint32
}
