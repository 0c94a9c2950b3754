package thread

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func currentThread(t *testing.T) *Thread {
	t.Helper()
	th, err := FindByID(CurrentID())
	require.NoError(t, err)
	require.NotNil(t, th, "current thread must be in the thread table")
	return th
}

func TestThreadsContainsSelf(t *testing.T) {
	threads, err := Threads()
	require.NoError(t, err)
	require.NotEmpty(t, threads)

	self := CurrentID()
	found := false
	for _, th := range threads {
		if th.ID == self {
			found = true
			assert.Equal(t, windows.GetCurrentProcessId(), th.OwnerPID)
		}
	}
	assert.True(t, found)
}

func TestFindByIDMissing(t *testing.T) {
	// TIDs are multiples of four; an odd tid can never exist.
	th, err := FindByID(3)
	require.NoError(t, err)
	assert.Nil(t, th)
}

func TestPriorityRoundTrip(t *testing.T) {
	th := currentThread(t)

	orig, err := th.Priority()
	require.NoError(t, err)
	assert.NotEqual(t, "unknown", orig.String())

	require.NoError(t, th.SetPriority(orig))

	got, err := th.Priority()
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestPriorityBoostRoundTrip(t *testing.T) {
	th := currentThread(t)

	orig, err := th.PriorityBoost()
	require.NoError(t, err)

	require.NoError(t, th.SetPriorityBoost(orig))

	got, err := th.PriorityBoost()
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestExitCodeOfLiveThread(t *testing.T) {
	th := currentThread(t)

	_, exited, err := th.ExitCode()
	require.NoError(t, err)
	assert.False(t, exited)

	alive, err := th.IsAlive()
	require.NoError(t, err)
	assert.True(t, alive)
}

func TestDescriptionRoundTrip(t *testing.T) {
	th := currentThread(t)

	require.NoError(t, th.SetDescription("safewin test thread"))

	desc, err := th.Description()
	require.NoError(t, err)
	assert.Equal(t, "safewin test thread", desc)
}

func TestSuspendResumeCounts(t *testing.T) {
	// Suspending the calling thread would deadlock the test, so exercise the
	// count bookkeeping on a sacrificial thread parked on a channel.
	done := make(chan struct{})
	tidCh := make(chan uint32, 1)
	go func() {
		// Pin the goroutine so the tid stays valid while suspended.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		tidCh <- windows.GetCurrentThreadId()
		<-done
	}()
	defer close(done)

	th := Thread{ID: <-tidCh, OwnerPID: windows.GetCurrentProcessId()}

	prev, err := th.Suspend()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), prev)

	prev, err = th.Resume()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), prev)
}
