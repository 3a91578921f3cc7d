package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askort/hotwords/pkg/domain"
)

func TestDetectNew_FirstSnapshotAllNew(t *testing.T) {
	entries := []Entry{
		entryWith("09时00分", func(s *domain.SourceSnapshot) {
			s.Add("A", "", "", 1)
			s.Add("B", "", "", 2)
		}),
	}

	newTitles := DetectNew(entries)
	require.Contains(t, newTitles, "微博")
	assert.Equal(t, map[string]bool{"A": true, "B": true}, newTitles["微博"])
}

func TestDetectNew_AgainstHistory(t *testing.T) {
	entries := []Entry{
		entryWith("09时00分", func(s *domain.SourceSnapshot) {
			s.Add("A", "", "", 1)
			s.Add("B", "", "", 2)
		}),
		entryWith("10时00分", func(s *domain.SourceSnapshot) {
			s.Add("B", "", "", 1)
			s.Add("C", "", "", 2)
		}),
	}

	newTitles := DetectNew(entries)
	assert.Equal(t, map[string]bool{"C": true}, newTitles["微博"], "only C is new relative to history {A,B}")
}

func TestDetectNew_PerSourceHistory(t *testing.T) {
	first := domain.NewSourceSnapshot("", "微博", "09时00分")
	first.Add("共同标题", "", "", 1)
	latestWeibo := domain.NewSourceSnapshot("", "微博", "10时00分")
	latestWeibo.Add("共同标题", "", "", 2)
	latestToutiao := domain.NewSourceSnapshot("", "头条", "10时00分")
	latestToutiao.Add("共同标题", "", "", 1)

	entries := []Entry{
		{TimeLabel: "09时00分", Snapshots: []*domain.SourceSnapshot{first}},
		{TimeLabel: "10时00分", Snapshots: []*domain.SourceSnapshot{latestWeibo, latestToutiao}},
	}

	newTitles := DetectNew(entries)
	assert.Empty(t, newTitles["微博"], "seen before for this source")
	assert.Equal(t, map[string]bool{"共同标题": true}, newTitles["头条"], "history is per source")
}

func TestDetectNew_NoSnapshots(t *testing.T) {
	assert.Empty(t, DetectNew(nil))
}
