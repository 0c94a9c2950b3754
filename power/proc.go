package power

import (
	"golang.org/x/sys/windows"
)

// powrprof procs. These return a Win32 error code as the call result rather
// than through GetLastError.
var (
	powrprof = windows.NewLazySystemDLL("powrprof.dll")

	procPowerEnumerate        = powrprof.NewProc("PowerEnumerate")
	procPowerGetActiveScheme  = powrprof.NewProc("PowerGetActiveScheme")
	procPowerSetActiveScheme  = powrprof.NewProc("PowerSetActiveScheme")
	procPowerReadFriendlyName = powrprof.NewProc("PowerReadFriendlyName")
	procPowerReadACValueIndex = powrprof.NewProc("PowerReadACValueIndex")
	procPowerReadDCValueIndex = powrprof.NewProc("PowerReadDCValueIndex")
)

// POWER_DATA_ACCESSOR values selecting what PowerEnumerate walks.
const (
	accessScheme            = 16
	accessSubgroup          = 17
	accessIndividualSetting = 18
)
