package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noelhorvath/safewin/registry"
)

func TestRootKeyByName(t *testing.T) {
	tests := []struct {
		in   string
		want registry.RootKey
	}{
		{"HKLM", registry.LocalMachine},
		{"hklm", registry.LocalMachine},
		{"HKEY_LOCAL_MACHINE", registry.LocalMachine},
		{"HKCU", registry.CurrentUser},
		{"HKCR", registry.ClassesRoot},
		{"HKU", registry.Users},
		{"HKCC", registry.CurrentConfig},
	}
	for _, tt := range tests {
		got, err := rootKeyByName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRootKeyByNameUnknown(t *testing.T) {
	_, err := rootKeyByName("HKXX")
	assert.Error(t, err)
}

func TestKeyArgRootOnly(t *testing.T) {
	k, err := keyArg([]string{"HKLM"})
	require.NoError(t, err)
	assert.True(t, k.IsRoot())
}

func TestRenderValue(t *testing.T) {
	assert.Equal(t, "7", renderValue(registry.NewValue([]byte{7, 0, 0, 0}, registry.DWord)))
	assert.Equal(t, "0a0b", renderValue(registry.NewValue([]byte{0x0a, 0x0b}, registry.Binary)))
}
