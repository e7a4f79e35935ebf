package sequencer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	fs := memFS(t, map[string]string{
		"a.txt": "{0,127},-\n-,{3,64}\n",
		"b.txt": "-,-,{1,1}\n",
	})
	ds, _ := drums(2)
	set := NewPatternSet()
	_, err := set.Load(fs, []string{"a.txt", "b.txt"}, ds)
	require.NoError(t, err)

	now := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	snap, err := SaveSnapshot(fs, "/snaps", set, "break beat", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15_14-30-00_break-beat", snap)

	paths, err := SnapshotPaths(fs, "/snaps", snap)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("/snaps", snap, "pattern1.txt"),
		filepath.Join("/snaps", snap, "pattern2.txt"),
	}, paths)

	again := NewPatternSet()
	n, err := again.Load(fs, paths, ds)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, set.Pattern(0).String(), again.Pattern(0).String())
	assert.Equal(t, set.Pattern(1).String(), again.Pattern(1).String())
}

func TestListSnapshotsNewestFirst(t *testing.T) {
	fs := afero.NewMemMapFs()
	set := NewPatternSet()
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	_, err := SaveSnapshot(fs, "/snaps", set, "", base)
	require.NoError(t, err)
	_, err = SaveSnapshot(fs, "/snaps", set, "later", base.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/snaps/not-a-snapshot", 0755))

	snaps, err := ListSnapshots(fs, "/snaps")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "later", snaps[0].Name)
	assert.Equal(t, "", snaps[1].Name)
	assert.True(t, snaps[0].Timestamp.After(snaps[1].Timestamp))

	snaps, err = ListSnapshots(fs, "/missing")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSnapshotPathsNewestAndEmpty(t *testing.T) {
	fs := memFS(t, map[string]string{"a.txt": "-\n"})
	ds, _ := drums(1)
	set := NewPatternSet()
	_, err := set.Load(fs, []string{"a.txt"}, ds)
	require.NoError(t, err)

	_, err = SnapshotPaths(fs, "/snaps", "")
	assert.EqualError(t, err, "no snapshots in /snaps")

	snap, err := SaveSnapshot(fs, "/snaps", set, "", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	paths, err := SnapshotPaths(fs, "/snaps", "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/snaps", snap, "pattern1.txt")}, paths)

	empty, err := SaveSnapshot(fs, "/snaps", NewPatternSet(), "empty", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = SnapshotPaths(fs, "/snaps", empty)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "a-b-c-d", sanitizeName("a b/c:d"))
	assert.Equal(t, "what", sanitizeName(`wh*a?"t`))
}
