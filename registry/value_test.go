package registry

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// utf16le encodes s as UTF-16LE with a trailing null terminator, the layout
// string values have on the wire.
func utf16le(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return append(out, 0, 0)
}

func TestTextDecodesString(t *testing.T) {
	v := NewValue(utf16le(`C:\Windows`), String)
	s, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, `C:\Windows`, s)
}

func TestTextDecodesExpandString(t *testing.T) {
	v := NewValue(utf16le(`%SystemRoot%\system32`), ExpandString)
	s, err := v.Text()
	require.NoError(t, err)
	// Environment references come back verbatim.
	assert.Equal(t, `%SystemRoot%\system32`, s)
}

func TestTextWithoutTerminator(t *testing.T) {
	data := utf16le("abc")
	v := NewValue(data[:len(data)-2], String)
	s, err := v.Text()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
}

func TestTextEmpty(t *testing.T) {
	s, err := NewValue(nil, String).Text()
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestTextRejectsOddLength(t *testing.T) {
	_, err := NewValue([]byte{0x41}, String).Text()
	assert.True(t, stderrors.Is(err, ErrValueSize))
}

func TestTextRejectsWrongType(t *testing.T) {
	_, err := NewValue([]byte{1, 0, 0, 0}, DWord).Text()
	assert.True(t, stderrors.Is(err, ErrValueType))
}

func TestTextsDecodesMultiString(t *testing.T) {
	data := append(utf16le("one"), utf16le("two")...)
	data = append(data, 0, 0) // block terminator
	got, err := NewValue(data, MultiString).Texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestTextsToleratesMissingBlockTerminator(t *testing.T) {
	data := append(utf16le("one"), utf16le("two")...)
	got, err := NewValue(data, MultiString).Texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestTextsEmpty(t *testing.T) {
	got, err := NewValue(nil, MultiString).Texts()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTextsRejectsWrongType(t *testing.T) {
	_, err := NewValue(utf16le("x"), String).Texts()
	assert.True(t, stderrors.Is(err, ErrValueType))
}

func TestUint32LittleEndian(t *testing.T) {
	n, err := NewValue([]byte{0x78, 0x56, 0x34, 0x12}, DWord).Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), n)
}

func TestUint32BigEndian(t *testing.T) {
	n, err := NewValue([]byte{0x12, 0x34, 0x56, 0x78}, DWordBigEndian).Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), n)
}

func TestUint32Short(t *testing.T) {
	_, err := NewValue([]byte{1, 2}, DWord).Uint32()
	assert.True(t, stderrors.Is(err, ErrValueSize))
}

func TestUint32WrongType(t *testing.T) {
	_, err := NewValue([]byte{1, 2, 3, 4, 5, 6, 7, 8}, QWord).Uint32()
	assert.True(t, stderrors.Is(err, ErrValueType))
}

func TestUint64(t *testing.T) {
	n, err := NewValue([]byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}, QWord).Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789abcdef), n)
}

func TestUint64Short(t *testing.T) {
	_, err := NewValue([]byte{1, 2, 3, 4}, QWord).Uint64()
	assert.True(t, stderrors.Is(err, ErrValueSize))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "REG_SZ", String.String())
	assert.Equal(t, "REG_MULTI_SZ", MultiString.String())
	assert.Equal(t, "REG_TYPE(99)", Type(99).String())
}

func TestValueRejectsEmptyName(t *testing.T) {
	_, err := CurrentUser.Key().Value("")
	assert.Error(t, err)
}
