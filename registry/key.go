// Package registry wraps live Windows registry access: predefined hive roots,
// key descriptors, one-shot key metadata, typed value reads, and forward-only
// enumerators over subkeys and values.
//
// A Key is a lightweight descriptor (root plus optional relative path); it
// holds no open handle. Operations open a handle with the least access they
// need and close it before returning. Predefined roots are pseudo handles
// that are never opened or closed.
package registry

import (
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/winerror"
)

// RootKey identifies a predefined registry hive.
type RootKey windows.Handle

const (
	ClassesRoot              = RootKey(windows.HKEY_CLASSES_ROOT)
	CurrentConfig            = RootKey(windows.HKEY_CURRENT_CONFIG)
	CurrentUser              = RootKey(windows.HKEY_CURRENT_USER)
	CurrentUserLocalSettings = RootKey(0x80000007)
	LocalMachine             = RootKey(windows.HKEY_LOCAL_MACHINE)
	PerformanceData          = RootKey(windows.HKEY_PERFORMANCE_DATA)
	PerformanceNlsText       = RootKey(0x80000060)
	PerformanceText          = RootKey(0x80000050)
	Users                    = RootKey(windows.HKEY_USERS)
)

// Name reports the conventional HKEY_* name of the hive.
func (r RootKey) Name() string {
	switch r {
	case ClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case CurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	case CurrentUser:
		return "HKEY_CURRENT_USER"
	case CurrentUserLocalSettings:
		return "HKEY_CURRENT_USER_LOCAL_SETTINGS"
	case LocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case PerformanceData:
		return "HKEY_PERFORMANCE_DATA"
	case PerformanceNlsText:
		return "HKEY_PERFORMANCE_NLSTEXT"
	case PerformanceText:
		return "HKEY_PERFORMANCE_TEXT"
	case Users:
		return "HKEY_USERS"
	default:
		return "HKEY_UNKNOWN"
	}
}

// Key returns the descriptor for the hive root itself.
func (r RootKey) Key() *Key {
	return &Key{root: r}
}

// SubKey builds a descriptor for path under the hive and validates it by
// opening it once with query access, caching the key's class string.
func (r RootKey) SubKey(path string) (*Key, error) {
	k := &Key{root: r, path: path}
	h, err := openKeyHandle(k, windows.KEY_QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	k.class, err = queryClass(h)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// keyHandle wraps an HKEY. Predefined roots are flagged so Close never calls
// RegCloseKey on them; RegCloseKey runs at most once for opened subkeys.
type keyHandle struct {
	hkey   windows.Handle
	root   bool
	closed bool
}

func openKeyHandle(k *Key, access uint32) (*keyHandle, error) {
	if k.path == "" {
		return &keyHandle{hkey: windows.Handle(k.root), root: true}, nil
	}
	p, err := windows.UTF16PtrFromString(k.path)
	if err != nil {
		return nil, errors.Wrapf(err, "registry: encode key path %q", k.path)
	}
	var h windows.Handle
	if err := windows.RegOpenKeyEx(windows.Handle(k.root), p, 0, access, &h); err != nil {
		return nil, errors.Wrapf(winerror.From("RegOpenKeyExW", err), "registry: open %s\\%s", k.root.Name(), k.path)
	}
	return &keyHandle{hkey: h}, nil
}

// Close releases the key handle. Failures are logged, never propagated: by
// the time a handle is released the caller already has its result.
func (h *keyHandle) Close() {
	if h == nil || h.root || h.closed {
		return
	}
	h.closed = true
	if err := windows.RegCloseKey(h.hkey); err != nil {
		log.Printf("registry: %v", winerror.From("RegCloseKey", err))
	}
}

// KeyInfo is key metadata fetched in a single RegQueryInfoKeyW call.
// Enumerators cache it to pre-size read buffers; lengths count UTF-16 code
// units without the terminator, except MaxValueLen which is in bytes.
type KeyInfo struct {
	SubKeyCount        uint32
	MaxSubKeyLen       uint32
	MaxClassLen        uint32
	ValueCount         uint32
	MaxValueNameLen    uint32
	MaxValueLen        uint32
	SecurityDescriptor uint32
	LastWriteTime      time.Time
}

func queryInfo(h *keyHandle) (*KeyInfo, error) {
	var (
		info KeyInfo
		ft   windows.Filetime
	)
	err := windows.RegQueryInfoKey(h.hkey, nil, nil, nil,
		&info.SubKeyCount, &info.MaxSubKeyLen, &info.MaxClassLen,
		&info.ValueCount, &info.MaxValueNameLen, &info.MaxValueLen,
		&info.SecurityDescriptor, &ft)
	if err != nil {
		return nil, errors.Wrap(winerror.From("RegQueryInfoKeyW", err), "registry: query key info")
	}
	info.LastWriteTime = time.Unix(0, ft.Nanoseconds())
	return &info, nil
}

func queryClass(h *keyHandle) (string, error) {
	buf := make([]uint16, 64)
	for {
		n := uint32(len(buf))
		err := windows.RegQueryInfoKey(h.hkey, &buf[0], &n, nil,
			nil, nil, nil, nil, nil, nil, nil, nil)
		if err == nil {
			return windows.UTF16ToString(buf[:n]), nil
		}
		if code, ok := winerror.Code(err); ok && code == windows.ERROR_MORE_DATA {
			buf = make([]uint16, n+1)
			continue
		}
		return "", errors.Wrap(winerror.From("RegQueryInfoKeyW", err), "registry: query key class")
	}
}

// Key is a descriptor for a registry key: a hive root plus an optional
// relative path and the key's cached class string.
type Key struct {
	root  RootKey
	path  string
	class string
}

// Root returns the hive the key lives under.
func (k *Key) Root() RootKey { return k.root }

// Path returns the key's path relative to its root; empty for the root.
func (k *Key) Path() string { return k.path }

// IsRoot reports whether the descriptor names a predefined hive root.
func (k *Key) IsRoot() bool { return k.path == "" }

// Name returns the key's own name: the last path element, or the hive name
// for a root descriptor.
func (k *Key) Name() string {
	if k.IsRoot() {
		return k.root.Name()
	}
	if i := strings.LastIndexByte(k.path, '\\'); i >= 0 {
		return k.path[i+1:]
	}
	return k.path
}

// Class queries the key's class string from the OS.
func (k *Key) Class() (string, error) {
	h, err := openKeyHandle(k, windows.KEY_QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer h.Close()
	return queryClass(h)
}

// CachedClass returns the class captured when the descriptor was built by
// SubKey or subkey enumeration; empty if it was never fetched.
func (k *Key) CachedClass() string { return k.class }

// Info fetches the key's metadata.
func (k *Key) Info() (*KeyInfo, error) {
	h, err := openKeyHandle(k, windows.KEY_QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return queryInfo(h)
}

// joinPath appends a subkey name to a parent path.
func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + `\` + name
}
