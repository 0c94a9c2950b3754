// Package security wraps access token inspection and privilege control for
// the current and other processes.
package security

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/winerror"
)

var (
	advapi32                 = windows.NewLazySystemDLL("advapi32.dll")
	procLookupPrivilegeNameW = advapi32.NewProc("LookupPrivilegeNameW")
)

const sePrivilegeEnabled = 0x00000002

// EnablePrivilege enables the named privilege, e.g. "SeDebugPrivilege", on
// the current process token. The privilege must already be present in the
// token; enabling only flips its attribute.
func EnablePrivilege(name string) error {
	var luid windows.LUID
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return errors.Wrapf(err, "security: encode privilege name %q", name)
	}
	if err := windows.LookupPrivilegeValue(nil, namep, &luid); err != nil {
		return errors.Wrapf(winerror.From("LookupPrivilegeValueW", err), "security: lookup privilege %q", name)
	}

	privs := windows.Tokenprivileges{PrivilegeCount: 1}
	privs.Privileges[0].Luid = luid
	privs.Privileges[0].Attributes = sePrivilegeEnabled

	var token windows.Token
	err = windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES, &token)
	if err != nil {
		return errors.Wrap(winerror.From("OpenProcessToken", err), "security: open process token")
	}
	defer token.Close()

	err = windows.AdjustTokenPrivileges(token, false, &privs, uint32(unsafe.Sizeof(privs)), nil, nil)
	if err != nil {
		return errors.Wrapf(winerror.From("AdjustTokenPrivileges", err), "security: enable privilege %q", name)
	}
	return nil
}

// EnableDebugPrivilege enables SeDebugPrivilege, which elevated callers need
// to open handles to processes they do not own.
func EnableDebugPrivilege() error {
	return EnablePrivilege("SeDebugPrivilege")
}

// TokenOwner resolves the DOMAIN\user name of the token's user SID.
func TokenOwner(token windows.Token) (string, error) {
	user, err := token.GetTokenUser()
	if err != nil {
		return "", errors.Wrap(winerror.From("GetTokenInformation", err), "security: get token user")
	}
	account, domain, _, err := user.User.Sid.LookupAccount("")
	if err != nil {
		return "", errors.Wrap(winerror.From("LookupAccountSidW", err), "security: resolve user SID")
	}
	return fmt.Sprintf(`%s\%s`, domain, account), nil
}

// ProcessTokenOwner resolves the owner of the primary token of the process
// identified by pid.
func ProcessTokenOwner(pid uint32) (string, error) {
	proc, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", errors.Wrapf(winerror.From("OpenProcess", err), "security: open process %d", pid)
	}
	defer windows.CloseHandle(proc)

	var token windows.Token
	if err := windows.OpenProcessToken(proc, windows.TOKEN_QUERY, &token); err != nil {
		return "", errors.Wrapf(winerror.From("OpenProcessToken", err), "security: open token of process %d", pid)
	}
	defer token.Close()
	return TokenOwner(token)
}

// TokenPrivileges lists the privilege names held by the token, enabled or
// not.
func TokenPrivileges(token windows.Token) ([]string, error) {
	var size uint32
	// Size probe; expected to fail with ERROR_INSUFFICIENT_BUFFER.
	windows.GetTokenInformation(token, windows.TokenPrivileges, nil, 0, &size)
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	err := windows.GetTokenInformation(token, windows.TokenPrivileges, &buf[0], size, &size)
	if err != nil {
		return nil, errors.Wrap(winerror.From("GetTokenInformation", err), "security: get token privileges")
	}

	privs := (*windows.Tokenprivileges)(unsafe.Pointer(&buf[0]))
	names := make([]string, 0, privs.PrivilegeCount)
	for _, la := range privs.AllPrivileges() {
		name, err := privilegeName(la.Luid)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func privilegeName(luid windows.LUID) (string, error) {
	buf := make([]uint16, 64)
	for {
		n := uint32(len(buf))
		r1, _, callErr := procLookupPrivilegeNameW.Call(
			0, // lpSystemName: local system
			uintptr(unsafe.Pointer(&luid)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&n)),
		)
		if r1 != 0 {
			return windows.UTF16ToString(buf[:n]), nil
		}
		if code, ok := winerror.Code(callErr); ok && code == windows.ERROR_INSUFFICIENT_BUFFER {
			buf = make([]uint16, n+1)
			continue
		}
		return "", errors.Wrap(winerror.From("LookupPrivilegeNameW", callErr), "security: resolve privilege name")
	}
}
