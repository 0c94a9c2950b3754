// Package power wraps the power policy store: scheme discovery, the active
// scheme, and per-setting value indexes.
//
// Enumeration follows the same cursor protocol as the registry package:
// Next advances, Err reports a mid-walk failure, and exhaustion ends the
// walk with a nil Err.
package power

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/winerror"
)

// callErrno interprets a powrprof result word as a Win32 error code.
func callErrno(r1 uintptr) syscall.Errno {
	return syscall.Errno(r1)
}

// enumerate reads the GUID at index under the given scheme/subgroup scope.
// The second return is false once the index is past the last element.
func enumerate(scheme, subgroup *windows.GUID, access uint32, index uint32) (windows.GUID, bool, error) {
	var out windows.GUID
	size := uint32(unsafe.Sizeof(out))
	r1, _, _ := procPowerEnumerate.Call(
		0, // RootPowerKey: local machine
		uintptr(unsafe.Pointer(scheme)),
		uintptr(unsafe.Pointer(subgroup)),
		uintptr(access),
		uintptr(index),
		uintptr(unsafe.Pointer(&out)),
		uintptr(unsafe.Pointer(&size)),
	)
	switch code := callErrno(r1); code {
	case 0:
		return out, true, nil
	case windows.ERROR_NO_MORE_ITEMS:
		return windows.GUID{}, false, nil
	default:
		return windows.GUID{}, false, winerror.New("PowerEnumerate", code)
	}
}

// guidCursor walks one PowerEnumerate scope in index order. Forward-only.
type guidCursor struct {
	scheme   *windows.GUID
	subgroup *windows.GUID
	access   uint32

	index uint32
	cur   windows.GUID
	done  bool
	err   error
}

// Next advances to the next GUID. It returns false at the end of the scope
// or on failure; Err tells the two apart.
func (c *guidCursor) Next() bool {
	if c.done {
		return false
	}
	g, ok, err := enumerate(c.scheme, c.subgroup, c.access, c.index)
	if err != nil || !ok {
		c.done = true
		c.err = err
		return false
	}
	c.cur = g
	c.index++
	return true
}

// Err reports the failure that ended the walk, nil after clean exhaustion.
func (c *guidCursor) Err() error { return c.err }

// Index reports how many elements Next has yielded.
func (c *guidCursor) Index() uint32 { return c.index }

// Scheme identifies one power scheme by GUID.
type Scheme struct {
	GUID windows.GUID
}

// SchemeEnumerator walks the installed power schemes.
type SchemeEnumerator struct {
	guidCursor
}

// Schemes returns a cursor over all installed power schemes.
func Schemes() *SchemeEnumerator {
	return &SchemeEnumerator{guidCursor{access: accessScheme}}
}

// Scheme returns the scheme at the cursor. Valid after a true Next.
func (e *SchemeEnumerator) Scheme() Scheme { return Scheme{GUID: e.cur} }

// Collect drains the cursor into a slice.
func (e *SchemeEnumerator) Collect() ([]Scheme, error) {
	var out []Scheme
	for e.Next() {
		out = append(out, e.Scheme())
	}
	if err := e.Err(); err != nil {
		return nil, errors.Wrap(err, "power: enumerate schemes")
	}
	return out, nil
}

// ActiveScheme returns the scheme currently in effect.
func ActiveScheme() (Scheme, error) {
	var guidp *windows.GUID
	r1, _, _ := procPowerGetActiveScheme.Call(0, uintptr(unsafe.Pointer(&guidp)))
	if code := callErrno(r1); code != 0 {
		return Scheme{}, errors.Wrap(winerror.New("PowerGetActiveScheme", code), "power: get active scheme")
	}
	// The OS allocates the GUID; copy it out before freeing.
	g := *guidp
	windows.LocalFree(windows.Handle(unsafe.Pointer(guidp)))
	return Scheme{GUID: g}, nil
}

// SetActive makes this scheme the active one.
func (s Scheme) SetActive() error {
	r1, _, _ := procPowerSetActiveScheme.Call(0, uintptr(unsafe.Pointer(&s.GUID)))
	if code := callErrno(r1); code != 0 {
		return errors.Wrap(winerror.New("PowerSetActiveScheme", code), "power: set active scheme")
	}
	return nil
}

// readFriendlyName reads the display name at the given scope. The buffer
// holds UTF-16; the size probe and read may race a rename, so retry once.
func readFriendlyName(scheme, subgroup, setting *windows.GUID) (string, error) {
	var size uint32
	for {
		var bufp unsafe.Pointer
		var buf []uint16
		if size > 0 {
			buf = make([]uint16, (size+1)/2)
			bufp = unsafe.Pointer(&buf[0])
		}
		r1, _, _ := procPowerReadFriendlyName.Call(
			0,
			uintptr(unsafe.Pointer(scheme)),
			uintptr(unsafe.Pointer(subgroup)),
			uintptr(unsafe.Pointer(setting)),
			uintptr(bufp),
			uintptr(unsafe.Pointer(&size)),
		)
		switch code := callErrno(r1); code {
		case 0:
			if buf == nil {
				return "", nil
			}
			return windows.UTF16ToString(buf), nil
		case windows.ERROR_MORE_DATA:
			continue
		default:
			return "", winerror.New("PowerReadFriendlyName", code)
		}
	}
}

// FriendlyName returns the scheme's display name, e.g. "Balanced".
func (s Scheme) FriendlyName() (string, error) {
	name, err := readFriendlyName(&s.GUID, nil, nil)
	if err != nil {
		return "", errors.Wrap(err, "power: read scheme name")
	}
	return name, nil
}

// SchemeFriendlyName returns the display name of the scheme with the given
// GUID.
func SchemeFriendlyName(guid windows.GUID) (string, error) {
	return Scheme{GUID: guid}.FriendlyName()
}

// SetActiveScheme makes the scheme with the given GUID the active one.
func SetActiveScheme(guid windows.GUID) error {
	return Scheme{GUID: guid}.SetActive()
}

// Subgroup identifies a group of settings within a scheme.
type Subgroup struct {
	Scheme Scheme
	GUID   windows.GUID
}

// SubgroupEnumerator walks the setting subgroups of one scheme.
type SubgroupEnumerator struct {
	guidCursor
	scheme Scheme
}

// Subgroups returns a cursor over the scheme's setting subgroups.
func (s Scheme) Subgroups() *SubgroupEnumerator {
	e := &SubgroupEnumerator{scheme: s}
	e.guidCursor = guidCursor{scheme: &e.scheme.GUID, access: accessSubgroup}
	return e
}

// Subgroup returns the subgroup at the cursor. Valid after a true Next.
func (e *SubgroupEnumerator) Subgroup() Subgroup {
	return Subgroup{Scheme: e.scheme, GUID: e.cur}
}

// FriendlyName returns the subgroup's display name.
func (g Subgroup) FriendlyName() (string, error) {
	name, err := readFriendlyName(&g.Scheme.GUID, &g.GUID, nil)
	if err != nil {
		return "", errors.Wrap(err, "power: read subgroup name")
	}
	return name, nil
}

// Setting identifies one power setting within a subgroup.
type Setting struct {
	Subgroup Subgroup
	GUID     windows.GUID
}

// SettingEnumerator walks the settings of one subgroup.
type SettingEnumerator struct {
	guidCursor
	subgroup Subgroup
}

// Settings returns a cursor over the subgroup's individual settings.
func (g Subgroup) Settings() *SettingEnumerator {
	e := &SettingEnumerator{subgroup: g}
	e.guidCursor = guidCursor{
		scheme:   &e.subgroup.Scheme.GUID,
		subgroup: &e.subgroup.GUID,
		access:   accessIndividualSetting,
	}
	return e
}

// Setting returns the setting at the cursor. Valid after a true Next.
func (e *SettingEnumerator) Setting() Setting {
	return Setting{Subgroup: e.subgroup, GUID: e.cur}
}

// FriendlyName returns the setting's display name.
func (s Setting) FriendlyName() (string, error) {
	name, err := readFriendlyName(&s.Subgroup.Scheme.GUID, &s.Subgroup.GUID, &s.GUID)
	if err != nil {
		return "", errors.Wrap(err, "power: read setting name")
	}
	return name, nil
}

func (s Setting) readValueIndex(proc *windows.LazyProc, op string) (uint32, error) {
	var value uint32
	r1, _, _ := proc.Call(
		0,
		uintptr(unsafe.Pointer(&s.Subgroup.Scheme.GUID)),
		uintptr(unsafe.Pointer(&s.Subgroup.GUID)),
		uintptr(unsafe.Pointer(&s.GUID)),
		uintptr(unsafe.Pointer(&value)),
	)
	if code := callErrno(r1); code != 0 {
		return 0, errors.Wrap(winerror.New(op, code), "power: read value index")
	}
	return value, nil
}

// ACValueIndex reads the setting's value index while on AC power.
func (s Setting) ACValueIndex() (uint32, error) {
	return s.readValueIndex(procPowerReadACValueIndex, "PowerReadACValueIndex")
}

// DCValueIndex reads the setting's value index while on battery.
func (s Setting) DCValueIndex() (uint32, error) {
	return s.readValueIndex(procPowerReadDCValueIndex, "PowerReadDCValueIndex")
}
