package toolhelp

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/noelhorvath/safewin/handle"
	"github.com/noelhorvath/safewin/winerror"
)

// fakeSnapshot builds a Snapshot over a scripted row set without touching the
// OS. failAt injects a failure when the cursor reaches that index; use a
// negative value for a clean run.
func fakeSnapshot(rows []ProcessEntry, failAt int) *Snapshot[ProcessEntry] {
	pos := 0
	stepAt := func() (ProcessEntry, bool, error) {
		if pos == failAt {
			return ProcessEntry{}, false, winerror.New("Process32NextW", syscall.Errno(windows.ERROR_INVALID_HANDLE))
		}
		if pos >= len(rows) {
			return ProcessEntry{}, false, nil
		}
		e := rows[pos]
		pos++
		return e, true, nil
	}
	return &Snapshot[ProcessEntry]{
		h: handle.NewRoot(windows.Handle(1), handle.Object),
		first: func(windows.Handle) (ProcessEntry, bool, error) {
			pos = 0
			return stepAt()
		},
		next: func(windows.Handle) (ProcessEntry, bool, error) {
			return stepAt()
		},
	}
}

var fakeRows = []ProcessEntry{
	{PID: 4, ParentPID: 0, ExeFile: "System"},
	{PID: 100, ParentPID: 4, ExeFile: "smss.exe"},
	{PID: 200, ParentPID: 100, ExeFile: "csrss.exe"},
}

func TestSnapshotYieldsAllRows(t *testing.T) {
	s := fakeSnapshot(fakeRows, -1)

	var got []ProcessEntry
	for s.Next() {
		got = append(got, s.Entry())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, fakeRows, got)
}

func TestSnapshotExhaustionIsSticky(t *testing.T) {
	s := fakeSnapshot(fakeRows, -1)
	for s.Next() {
	}
	require.NoError(t, s.Err())

	// Once exhausted the cursor stays exhausted.
	assert.False(t, s.Next())
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
}

func TestSnapshotFailureSurfacesInErr(t *testing.T) {
	s := fakeSnapshot(fakeRows, 2)

	var got []ProcessEntry
	for s.Next() {
		got = append(got, s.Entry())
	}
	require.Error(t, s.Err())
	code, ok := winerror.Code(s.Err())
	require.True(t, ok)
	assert.Equal(t, syscall.Errno(windows.ERROR_INVALID_HANDLE), code)
	assert.Len(t, got, 2)

	// The failure is sticky as well.
	assert.False(t, s.Next())
	assert.Error(t, s.Err())
}

func TestSnapshotStarted(t *testing.T) {
	s := fakeSnapshot(fakeRows, -1)
	assert.False(t, s.Started())

	require.True(t, s.Next())
	assert.True(t, s.Started())
}

func TestSnapshotResetReplaysFromFirstRow(t *testing.T) {
	s := fakeSnapshot(fakeRows, -1)
	for s.Next() {
	}
	require.NoError(t, s.Err())

	require.NoError(t, s.Reset())
	assert.False(t, s.Started())

	got, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, fakeRows, got)
}

func TestSnapshotResetFailurePropagates(t *testing.T) {
	s := fakeSnapshot(fakeRows, 0)
	assert.Error(t, s.Reset())
}

func TestSnapshotCollect(t *testing.T) {
	s := fakeSnapshot(fakeRows, -1)
	got, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, fakeRows, got)

	// Collect drains from the current position, so a second call is empty.
	got, err = s.Collect()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProcessSnapshotContainsSelf(t *testing.T) {
	s, err := CreateProcessSnapshot()
	require.NoError(t, err)
	defer s.Close()

	self := windows.GetCurrentProcessId()
	seen := 0
	for s.Next() {
		if s.Entry().PID == self {
			seen++
			assert.NotEmpty(t, s.Entry().ExeFile)
		}
	}
	require.NoError(t, s.Err())
	assert.Equal(t, 1, seen, "current process should appear exactly once")
}

func TestThreadSnapshotContainsCurrentThread(t *testing.T) {
	s, err := CreateThreadSnapshot()
	require.NoError(t, err)
	defer s.Close()

	tid := windows.GetCurrentThreadId()
	found := false
	for s.Next() {
		e := s.Entry()
		if e.TID == tid {
			found = true
			assert.Equal(t, windows.GetCurrentProcessId(), e.OwnerPID)
		}
	}
	require.NoError(t, s.Err())
	assert.True(t, found, "current thread should be in the thread table")
}

func TestSnapshotResetOnLiveHandle(t *testing.T) {
	s, err := CreateProcessSnapshot()
	require.NoError(t, err)
	defer s.Close()

	first, err := s.Collect()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, s.Reset())
	second, err := s.Collect()
	require.NoError(t, err)

	// The snapshot is frozen at creation, so a replay sees identical rows.
	assert.Equal(t, first, second)
}
