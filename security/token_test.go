package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestProcessTokenOwnerSelf(t *testing.T) {
	owner, err := ProcessTokenOwner(windows.GetCurrentProcessId())
	require.NoError(t, err)
	assert.Contains(t, owner, `\`)
}

func TestTokenPrivilegesSelf(t *testing.T) {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token)
	require.NoError(t, err)
	defer token.Close()

	privs, err := TokenPrivileges(token)
	require.NoError(t, err)
	require.NotEmpty(t, privs)
	for _, name := range privs {
		assert.True(t, strings.HasPrefix(name, "Se"), "privilege name %q", name)
	}
}

func TestEnablePrivilegeHeldByEveryToken(t *testing.T) {
	// SeChangeNotifyPrivilege is present and enabled in every token.
	require.NoError(t, EnablePrivilege("SeChangeNotifyPrivilege"))
}

func TestEnablePrivilegeUnknownName(t *testing.T) {
	assert.Error(t, EnablePrivilege("SeNoSuchPrivilege"))
}
