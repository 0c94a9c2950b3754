package registry

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
	"golang.org/x/text/encoding/unicode"

	"github.com/noelhorvath/safewin/winerror"
)

// Type is a registry value type.
type Type uint32

const (
	None           = Type(windows.REG_NONE)
	String         = Type(windows.REG_SZ)
	ExpandString   = Type(windows.REG_EXPAND_SZ)
	Binary         = Type(windows.REG_BINARY)
	DWord          = Type(windows.REG_DWORD)
	DWordBigEndian = Type(windows.REG_DWORD_BIG_ENDIAN)
	Link           = Type(windows.REG_LINK)
	MultiString    = Type(windows.REG_MULTI_SZ)
	QWord          = Type(windows.REG_QWORD)
)

func (t Type) String() string {
	switch t {
	case None:
		return "REG_NONE"
	case String:
		return "REG_SZ"
	case ExpandString:
		return "REG_EXPAND_SZ"
	case Binary:
		return "REG_BINARY"
	case DWord:
		return "REG_DWORD"
	case DWordBigEndian:
		return "REG_DWORD_BIG_ENDIAN"
	case Link:
		return "REG_LINK"
	case MultiString:
		return "REG_MULTI_SZ"
	case QWord:
		return "REG_QWORD"
	default:
		return fmt.Sprintf("REG_TYPE(%d)", uint32(t))
	}
}

var (
	// ErrValueType marks a decode against the wrong registry value type.
	ErrValueType = errors.New("registry: value type mismatch")
	// ErrValueSize marks value data too short or oddly sized for its type.
	ErrValueSize = errors.New("registry: invalid value size")
)

// Value is raw registry value data together with its type. Decoders return
// ErrValueType when asked for a representation the type does not have and
// ErrValueSize when the data cannot carry it.
type Value struct {
	data []byte
	typ  Type
}

// NewValue wraps already-fetched value data. The slice is not copied.
func NewValue(data []byte, typ Type) *Value {
	return &Value{data: data, typ: typ}
}

// Type returns the registry type the value was stored with.
func (v *Value) Type() Type { return v.typ }

// Raw returns the undecoded value data.
func (v *Value) Raw() []byte { return v.data }

// Text decodes a REG_SZ, REG_EXPAND_SZ, or REG_LINK value. Expanded strings
// are returned verbatim; environment references are not expanded.
func (v *Value) Text() (string, error) {
	switch v.typ {
	case String, ExpandString, Link:
		return decodeUTF16(v.data)
	default:
		return "", errors.Wrapf(ErrValueType, "want string type, have %s", v.typ)
	}
}

// Texts decodes a REG_MULTI_SZ value into its component strings.
func (v *Value) Texts() ([]string, error) {
	if v.typ != MultiString {
		return nil, errors.Wrapf(ErrValueType, "want %s, have %s", MultiString, v.typ)
	}
	if len(v.data) == 0 {
		return nil, nil
	}
	if len(v.data)%2 != 0 {
		return nil, ErrValueSize
	}
	// The block ends with an empty string: two null terminators. Tolerate a
	// missing final terminator, which mis-written values commonly lack.
	var out []string
	start := 0
	for i := 0; i+1 < len(v.data); i += 2 {
		if v.data[i] != 0 || v.data[i+1] != 0 {
			continue
		}
		if i == start {
			break
		}
		s, err := decodeUTF16(v.data[start:i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		start = i + 2
	}
	if start < len(v.data) && !allZero(v.data[start:]) {
		s, err := decodeUTF16(v.data[start:])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Uint32 decodes a REG_DWORD or REG_DWORD_BIG_ENDIAN value.
func (v *Value) Uint32() (uint32, error) {
	switch v.typ {
	case DWord:
		if len(v.data) < 4 {
			return 0, ErrValueSize
		}
		return binary.LittleEndian.Uint32(v.data), nil
	case DWordBigEndian:
		if len(v.data) < 4 {
			return 0, ErrValueSize
		}
		return binary.BigEndian.Uint32(v.data), nil
	default:
		return 0, errors.Wrapf(ErrValueType, "want %s, have %s", DWord, v.typ)
	}
}

// Uint64 decodes a REG_QWORD value.
func (v *Value) Uint64() (uint64, error) {
	if v.typ != QWord {
		return 0, errors.Wrapf(ErrValueType, "want %s, have %s", QWord, v.typ)
	}
	if len(v.data) < 8 {
		return 0, ErrValueSize
	}
	return binary.LittleEndian.Uint64(v.data), nil
}

// decodeUTF16 converts UTF-16LE value data to a Go string, dropping the
// trailing terminator when present.
func decodeUTF16(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if len(data)%2 != 0 {
		return "", ErrValueSize
	}
	if len(data) >= 2 && data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", errors.Wrap(err, "registry: decode utf-16 value")
	}
	return string(out), nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Value reads the named value of the key. An empty name is rejected; use
// DefaultValue for the key's unnamed value.
func (k *Key) Value(name string) (*Value, error) {
	if name == "" {
		return nil, errors.New("registry: empty value name, use DefaultValue")
	}
	return k.readValue(name)
}

// RawValue reads the named value without wrapping it, for callers that do
// their own decoding.
func (k *Key) RawValue(name string) ([]byte, Type, error) {
	v, err := k.Value(name)
	if err != nil {
		return nil, None, err
	}
	return v.Raw(), v.Type(), nil
}

// DefaultValue reads the key's unnamed (default) value.
func (k *Key) DefaultValue() (*Value, error) {
	return k.readValue("")
}

func (k *Key) readValue(name string) (*Value, error) {
	h, err := openKeyHandle(k, windows.KEY_QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	var namep *uint16
	if name != "" {
		namep, err = windows.UTF16PtrFromString(name)
		if err != nil {
			return nil, errors.Wrapf(err, "registry: encode value name %q", name)
		}
	}

	var typ, size uint32
	if err := windows.RegQueryValueEx(h.hkey, namep, nil, &typ, nil, &size); err != nil {
		return nil, errors.Wrapf(winerror.From("RegQueryValueExW", err), "registry: query value %q", name)
	}
	// The value can grow between the size probe and the read.
	for {
		buf := make([]byte, size)
		var bufp *byte
		if size > 0 {
			bufp = &buf[0]
		}
		err := windows.RegQueryValueEx(h.hkey, namep, nil, &typ, bufp, &size)
		if err == nil {
			return NewValue(buf[:size], Type(typ)), nil
		}
		if code, ok := winerror.Code(err); !ok || code != windows.ERROR_MORE_DATA {
			return nil, errors.Wrapf(winerror.From("RegQueryValueExW", err), "registry: read value %q", name)
		}
	}
}
