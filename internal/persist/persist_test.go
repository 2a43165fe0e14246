package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/snake/internal/leaderboard"
)

// copyTestBinary places a copy of the running test binary in a temporary
// directory. The test binary links the leaderboard package, so it carries
// the reserved region like the real game does. go test strips the symbol
// table, so the copy is found through the marker.
func copyTestBinary(t *testing.T, mode os.FileMode) string {
	t.Helper()

	self, err := os.Executable()
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "snake.bin")
	require.NoError(t, copyFile(self, dst))
	require.NoError(t, os.Chmod(dst, mode))
	return dst
}

func TestTempPath(t *testing.T) {
	assert.Equal(t, "/opt/snake.tmp", tempPath("/opt/snake.exe"))
	assert.Equal(t, "/opt/snake.tmp", tempPath("/opt/snake"))
}

func TestReadTableDefault(t *testing.T) {
	exe := copyTestBinary(t, 0o755)

	table, err := ReadTable(exe)
	require.NoError(t, err)
	assert.Equal(t, leaderboard.Default(), table)
}

func TestFlushRoundTrip(t *testing.T) {
	exe := copyTestBinary(t, 0o751)

	m, err := Open(Options{Executable: exe})
	require.NoError(t, err)
	defer m.Close()

	_, ok := m.Table().RankInsert("alice", 42)
	require.True(t, ok)
	_, ok = m.Table().RankInsert("bob", 7)
	require.True(t, ok)
	require.NoError(t, m.Flush())

	_, err = os.Stat(m.TempPath())
	assert.ErrorIs(t, err, os.ErrNotExist)

	info, err := os.Stat(exe)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o751), info.Mode().Perm())

	table, err := ReadTable(exe)
	require.NoError(t, err)
	assert.Equal(t, m.Table(), table)
	assert.Equal(t, "alice", table.Records[0].NameString())
	assert.Equal(t, uint16(42), table.Records[0].Score)
	assert.Equal(t, "bob", table.Records[1].NameString())

	assert.NoError(t, m.Close())
}

func TestFlushTwice(t *testing.T) {
	exe := copyTestBinary(t, 0o755)

	m, err := Open(Options{Executable: exe})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Flush())
	assert.ErrorIs(t, m.Flush(), ErrAlreadyFlushed)
}

// eraseMarker zeroes the marker in the executable at path.
func eraseMarker(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	at := bytes.Index(data, leaderboard.Marker())
	require.GreaterOrEqual(t, at, 0)
	copy(data[at:at+leaderboard.MarkerSize], make([]byte, leaderboard.MarkerSize))
	require.NoError(t, os.WriteFile(path, data, 0o755))
}

func TestFlushMissingRegion(t *testing.T) {
	exe := copyTestBinary(t, 0o755)
	eraseMarker(t, exe)
	before, err := os.ReadFile(exe)
	require.NoError(t, err)

	m, err := Open(Options{Executable: exe})
	require.NoError(t, err)
	defer m.Close()

	assert.ErrorIs(t, m.Flush(), ErrRegionNotFound)

	_, err = os.Stat(m.TempPath())
	assert.ErrorIs(t, err, os.ErrNotExist, "failed flush removes the copy")

	after, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, before, after, "executable untouched")
}

func TestFlushKeepsMarker(t *testing.T) {
	exe := copyTestBinary(t, 0o755)

	m, err := Open(Options{Executable: exe})
	require.NoError(t, err)
	defer m.Close()

	_, ok := m.Table().RankInsert("carol", 3)
	require.True(t, ok)
	require.NoError(t, m.Flush())

	data, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(data, leaderboard.Marker()))

	// A second session starts from the saved table.
	saved, err := ReadTable(exe)
	require.NoError(t, err)
	m2, err := Open(Options{Executable: exe, Table: saved})
	require.NoError(t, err)
	defer m2.Close()
	_, ok = m2.Table().RankInsert("dave", 2)
	require.True(t, ok)
	require.NoError(t, m2.Flush())

	table, err := ReadTable(exe)
	require.NoError(t, err)
	assert.Equal(t, "carol", table.Records[0].NameString())
	assert.Equal(t, "dave", table.Records[1].NameString())
	assert.Equal(t, uint16(2), table.Records[1].Score)
}

func TestOpenMissingExecutable(t *testing.T) {
	_, err := Open(Options{Executable: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

func TestCloseWithoutFlush(t *testing.T) {
	exe := copyTestBinary(t, 0o755)

	m, err := Open(Options{Executable: exe})
	require.NoError(t, err)

	_, err = os.Stat(m.TempPath())
	require.NoError(t, err, "copy exists while open")

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	_, err = os.Stat(m.TempPath())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocateUnknownFormat(t *testing.T) {
	_, err := locate([]byte("#!/bin/sh\necho hi\n"), leaderboard.ReservedSymbol, leaderboard.Marker())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
