package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askort/hotwords/pkg/domain"
)

// storeAt pins the store clock to a fixed Beijing time
func storeAt(t *testing.T, dir string, hour, minute int) *Store {
	t.Helper()
	s, err := NewStore(dir)
	require.NoError(t, err)
	s.now = func() time.Time {
		return time.Date(2026, 8, 24, hour, minute, 0, 0, s.loc)
	}
	return s
}

func TestStore_SaveAndList(t *testing.T) {
	dir := t.TempDir()

	snap := domain.NewSourceSnapshot("weibo", "微博", "09时30分")
	snap.Add("早间新闻", "", "", 1)

	s := storeAt(t, dir, 9, 30)
	path, err := s.Save([]*domain.SourceSnapshot{snap}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026年08月24日", "txt", "09时30分.txt"), path)

	later := domain.NewSourceSnapshot("weibo", "微博", "10时05分")
	later.Add("早间新闻", "", "", 2)
	later.Add("午间新闻", "", "", 1)

	s2 := storeAt(t, dir, 10, 5)
	_, err = s2.Save([]*domain.SourceSnapshot{later}, nil)
	require.NoError(t, err)

	entries, err := s2.ListChronological()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "09时30分", entries[0].TimeLabel)
	assert.Equal(t, "10时05分", entries[1].TimeLabel)
	assert.Equal(t, "10时05分", entries[1].Snapshots[0].TimeLabel)

	latest, ok, err := s2.ReadLatest()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10时05分", latest.TimeLabel)
	require.Len(t, latest.Snapshots, 1)
	assert.Len(t, latest.Snapshots[0].Order, 2)
}

func TestStore_MissingDayDirectory(t *testing.T) {
	s := storeAt(t, t.TempDir(), 12, 0)

	entries, err := s.ListChronological()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok, err := s.ReadLatest()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := storeAt(t, dir, 8, 0)

	snap := domain.NewSourceSnapshot("weibo", "微博", "08时00分")
	snap.Add("新闻", "", "", 1)
	_, err := s.Save([]*domain.SourceSnapshot{snap}, nil)
	require.NoError(t, err)

	dayDir := filepath.Join(dir, "2026年08月24日", "txt")
	require.NoError(t, os.WriteFile(filepath.Join(dayDir, "notes.md"), []byte("unrelated"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dayDir, "sub"), 0o750))

	entries, err := s.ListChronological()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "08时00分", entries[0].TimeLabel)
}
