package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// currentVersionPath is present on every Windows installation and carries
// both subkeys and values.
const currentVersionPath = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`

func TestRootKeyNames(t *testing.T) {
	assert.Equal(t, "HKEY_LOCAL_MACHINE", LocalMachine.Name())
	assert.Equal(t, "HKEY_CURRENT_USER", CurrentUser.Name())
	assert.Equal(t, "HKEY_UNKNOWN", RootKey(0).Name())
}

func TestRootKeyDescriptor(t *testing.T) {
	k := LocalMachine.Key()
	assert.True(t, k.IsRoot())
	assert.Equal(t, "", k.Path())
	assert.Equal(t, "HKEY_LOCAL_MACHINE", k.Name())
}

func TestSubKeyValidatesAtOpen(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)
	assert.Equal(t, currentVersionPath, k.Path())
	assert.Equal(t, "CurrentVersion", k.Name())
}

func TestSubKeyRejectsMissingPath(t *testing.T) {
	_, err := LocalMachine.SubKey(`SOFTWARE\safewin-no-such-key-5c1e`)
	assert.Error(t, err)
}

func TestKeyInfoCountsMatchEnumeration(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	info, err := k.Info()
	require.NoError(t, err)
	assert.NotZero(t, info.SubKeyCount)
	assert.NotZero(t, info.ValueCount)
	assert.False(t, info.LastWriteTime.IsZero())
}

func TestSubKeyEnumeration(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	enum, err := k.SubKeys()
	require.NoError(t, err)
	defer enum.Close()

	var seen int
	for enum.Next() {
		sub := enum.Key()
		seen++
		assert.Equal(t, LocalMachine, sub.Root())
		// Enumerated subkeys extend the parent path, so they are usable as
		// descriptors in their own right.
		assert.True(t, strings.HasPrefix(sub.Path(), currentVersionPath+`\`))
		assert.NotEmpty(t, sub.Name())
	}
	require.NoError(t, enum.Err())
	assert.Equal(t, int(enum.Info().SubKeyCount), seen)
}

func TestSubKeyEnumerationExhaustionIsSticky(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	enum, err := k.SubKeys()
	require.NoError(t, err)
	for enum.Next() {
	}
	require.NoError(t, enum.Err())
	assert.False(t, enum.Next())
	assert.NoError(t, enum.Err())
}

func TestZeroSubKeyEnumeration(t *testing.T) {
	// ActiveComputerName never has subkeys.
	k, err := LocalMachine.SubKey(`SYSTEM\CurrentControlSet\Control\ComputerName\ActiveComputerName`)
	require.NoError(t, err)

	enum, err := k.SubKeys()
	require.NoError(t, err)
	defer enum.Close()

	assert.False(t, enum.Next())
	assert.NoError(t, enum.Err())
	assert.Zero(t, enum.Info().SubKeyCount)
}

func TestValueEnumeration(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	enum, err := k.Values()
	require.NoError(t, err)
	defer enum.Close()

	require.NotZero(t, enum.Count())
	var names []string
	for enum.Next() {
		vi := enum.Value()
		names = append(names, vi.Name)
		require.NotNil(t, vi.Value)
	}
	require.NoError(t, enum.Err())
	assert.Len(t, names, enum.Count())
}

func TestValueEnumerationDataSurvivesAdvance(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	enum, err := k.Values()
	require.NoError(t, err)
	defer enum.Close()

	var held []ValueInfo
	for enum.Next() {
		held = append(held, enum.Value())
	}
	require.NoError(t, enum.Err())

	// Every held entry must still decode; the enumerator's scratch buffer
	// must not alias the handed-out data.
	for _, vi := range held {
		if vi.Value.Type() == String {
			_, err := vi.Value.Text()
			assert.NoError(t, err)
		}
	}
}

func TestReadNamedValue(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	v, err := k.Value("ProductName")
	require.NoError(t, err)
	require.Equal(t, String, v.Type())

	name, err := v.Text()
	require.NoError(t, err)
	assert.Contains(t, name, "Windows")
}

func TestEnumeratorCloseStopsIteration(t *testing.T) {
	k, err := LocalMachine.SubKey(currentVersionPath)
	require.NoError(t, err)

	enum, err := k.SubKeys()
	require.NoError(t, err)
	enum.Close()
	assert.False(t, enum.Next())
	assert.NoError(t, enum.Err())
}

func TestEnumErrorKeepsDescriptor(t *testing.T) {
	k := &Key{root: LocalMachine, path: `SOFTWARE\safewin-no-such-key-5c1e`}
	_, err := k.SubKeys()
	require.Error(t, err)

	var enumErr *EnumError
	require.ErrorAs(t, err, &enumErr)
	// The open failed, so no descriptor survives.
	assert.Nil(t, enumErr.Key)
}
