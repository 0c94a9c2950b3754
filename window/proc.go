//go:build amd64 || arm64

package window

import (
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procFindWindowW              = user32.NewProc("FindWindowW")
	procFindWindowExW            = user32.NewProc("FindWindowExW")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procEnumThreadWindows        = user32.NewProc("EnumThreadWindows")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsIconic                 = user32.NewProc("IsIconic")
	procIsZoomed                 = user32.NewProc("IsZoomed")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procSetWindowTextW           = user32.NewProc("SetWindowTextW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procShowWindow               = user32.NewProc("ShowWindow")
	procCloseWindow              = user32.NewProc("CloseWindow")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procGetDesktopWindow         = user32.NewProc("GetDesktopWindow")
	procGetShellWindow           = user32.NewProc("GetShellWindow")
	procGetTopWindow             = user32.NewProc("GetTopWindow")
	procWindowFromPoint          = user32.NewProc("WindowFromPoint")

	procPostMessageW        = user32.NewProc("PostMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procSendMessageW        = user32.NewProc("SendMessageW")
	procSendNotifyMessageW  = user32.NewProc("SendNotifyMessageW")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
	procPostQuitMessage     = user32.NewProc("PostQuitMessage")
	procRegisterWindowMsgW  = user32.NewProc("RegisterWindowMessageW")
)
