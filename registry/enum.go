package registry

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/winerror"
)

// RegEnumValueW is not surfaced by golang.org/x/sys/windows.
var (
	advapi32          = windows.NewLazySystemDLL("advapi32.dll")
	procRegEnumValueW = advapi32.NewProc("RegEnumValueW")
)

func regEnumValue(key windows.Handle, index uint32, name *uint16, nameLen *uint32, typ *uint32, data *byte, dataLen *uint32) error {
	r1, _, _ := procRegEnumValueW.Call(
		uintptr(key),
		uintptr(index),
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(nameLen)),
		0,
		uintptr(unsafe.Pointer(typ)),
		uintptr(unsafe.Pointer(data)),
		uintptr(unsafe.Pointer(dataLen)),
	)
	if r1 != 0 {
		return syscall.Errno(r1)
	}
	return nil
}

// EnumError is an enumerator construction failure. Key is set when the key
// handle opened but the metadata query failed, so the caller keeps the
// descriptor to retry or inspect; it is nil when the open itself failed.
type EnumError struct {
	Key *Key
	Err error
}

func (e *EnumError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("registry: enumerate %s\\%s: %v", e.Key.root.Name(), e.Key.path, e.Err)
	}
	return fmt.Sprintf("registry: enumerate: %v", e.Err)
}

func (e *EnumError) Unwrap() error { return e.Err }

// SubKeyEnumerator is a forward-only cursor over a key's immediate subkeys.
// The index only increases; re-iteration requires a new enumerator, which
// opens a new key handle. Single-threaded use only.
type SubKeyEnumerator struct {
	h     *keyHandle
	key   *Key
	info  KeyInfo
	index uint32

	nameBuf  []uint16
	classBuf []uint16

	cur  *Key
	err  error
	done bool
}

// SubKeys opens an enumerator over the key's subkeys. The key is opened with
// query and enumerate access and its metadata is fetched once to size the
// name and class buffers.
func (k *Key) SubKeys() (*SubKeyEnumerator, error) {
	h, info, err := openForEnum(k)
	if err != nil {
		return nil, err
	}
	return &SubKeyEnumerator{
		h:    h,
		key:  k,
		info: *info,
		// max+1 leaves room for the terminator the OS reports separately, so
		// a name exactly at the maximum length still fits.
		nameBuf:  make([]uint16, info.MaxSubKeyLen+1),
		classBuf: make([]uint16, info.MaxClassLen+1),
	}, nil
}

func openForEnum(k *Key) (*keyHandle, *KeyInfo, error) {
	h, err := openKeyHandle(k, windows.KEY_QUERY_VALUE|windows.KEY_ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, nil, &EnumError{Err: err}
	}
	info, err := queryInfo(h)
	if err != nil {
		h.Close()
		return nil, nil, &EnumError{Key: k, Err: err}
	}
	return h, info, nil
}

// Next advances to the next subkey. It returns false when the key has no
// more subkeys or a call failed; Err tells the two apart.
func (e *SubKeyEnumerator) Next() bool {
	if e.done {
		return false
	}
	nameLen := uint32(len(e.nameBuf))
	classLen := uint32(len(e.classBuf))
	err := windows.RegEnumKeyEx(e.h.hkey, e.index, &e.nameBuf[0], &nameLen,
		nil, &e.classBuf[0], &classLen, nil)
	if err != nil {
		e.finish("RegEnumKeyExW", err)
		return false
	}
	name := windows.UTF16ToString(e.nameBuf[:nameLen])
	e.cur = &Key{
		root:  e.key.root,
		path:  joinPath(e.key.path, name),
		class: windows.UTF16ToString(e.classBuf[:classLen]),
	}
	e.index++
	return true
}

// Key returns the subkey produced by the last successful Next. The returned
// descriptor shares the parent's root and extends its path.
func (e *SubKeyEnumerator) Key() *Key { return e.cur }

// Err reports the failure that ended enumeration, nil on clean exhaustion.
func (e *SubKeyEnumerator) Err() error { return e.err }

// Index returns the zero-based position of the next subkey to enumerate.
func (e *SubKeyEnumerator) Index() uint32 { return e.index }

// Info returns the key metadata captured at construction. SubKeyCount bounds
// the number of entries this enumerator can yield.
func (e *SubKeyEnumerator) Info() KeyInfo { return e.info }

// Close releases the key handle early. Next returns false afterwards.
func (e *SubKeyEnumerator) Close() {
	e.done = true
	e.h.Close()
}

func (e *SubKeyEnumerator) finish(op string, err error) {
	e.done = true
	if code, ok := winerror.Code(err); !ok || code != windows.ERROR_NO_MORE_ITEMS {
		e.err = winerror.From(op, err)
	}
	e.h.Close()
}

// ValueInfo is one named value yielded by a ValueEnumerator.
type ValueInfo struct {
	Name  string
	Value *Value
}

// ValueEnumerator is a forward-only cursor over a key's named values. Unlike
// process and thread snapshots, the registry reports value counts up front,
// so Count is exact.
type ValueEnumerator struct {
	h     *keyHandle
	key   *Key
	info  KeyInfo
	index uint32

	nameBuf []uint16
	dataBuf []byte

	cur  ValueInfo
	err  error
	done bool
}

// Values opens an enumerator over the key's values.
func (k *Key) Values() (*ValueEnumerator, error) {
	h, info, err := openForEnum(k)
	if err != nil {
		return nil, err
	}
	return &ValueEnumerator{
		h:       h,
		key:     k,
		info:    *info,
		nameBuf: make([]uint16, info.MaxValueNameLen+1),
		dataBuf: make([]byte, info.MaxValueLen),
	}, nil
}

// Next advances to the next value.
func (e *ValueEnumerator) Next() bool {
	if e.done {
		return false
	}
	nameLen := uint32(len(e.nameBuf))
	dataLen := uint32(len(e.dataBuf))
	var datap *byte
	if dataLen > 0 {
		datap = &e.dataBuf[0]
	}
	var typ uint32
	err := regEnumValue(e.h.hkey, e.index, &e.nameBuf[0], &nameLen, &typ, datap, &dataLen)
	if err != nil {
		e.finish("RegEnumValueW", err)
		return false
	}
	// The data buffer is reused on the next pull; hand out a copy.
	data := make([]byte, dataLen)
	copy(data, e.dataBuf[:dataLen])
	e.cur = ValueInfo{
		Name:  windows.UTF16ToString(e.nameBuf[:nameLen]),
		Value: NewValue(data, Type(typ)),
	}
	e.index++
	return true
}

// Value returns the entry produced by the last successful Next.
func (e *ValueEnumerator) Value() ValueInfo { return e.cur }

// Err reports the failure that ended enumeration, nil on clean exhaustion.
func (e *ValueEnumerator) Err() error { return e.err }

// Index returns the zero-based position of the next value to enumerate.
func (e *ValueEnumerator) Index() uint32 { return e.index }

// Count returns the exact number of values the key held at construction.
func (e *ValueEnumerator) Count() int { return int(e.info.ValueCount) }

// Info returns the key metadata captured at construction.
func (e *ValueEnumerator) Info() KeyInfo { return e.info }

// Close releases the key handle early. Next returns false afterwards.
func (e *ValueEnumerator) Close() {
	e.done = true
	e.h.Close()
}

func (e *ValueEnumerator) finish(op string, err error) {
	e.done = true
	if code, ok := winerror.Code(err); !ok || code != windows.ERROR_NO_MORE_ITEMS {
		e.err = winerror.From(op, err)
	}
	e.h.Close()
}
