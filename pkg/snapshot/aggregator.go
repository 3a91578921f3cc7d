package snapshot

import (
	"sort"

	"github.com/askort/hotwords/pkg/domain"
)

// Aggregate folds a chronological sequence of snapshot files into a per-source
// history: alias → title → merged info. On first sight of a title the entry
// starts with Count=1 and FirstTime=LastTime=the file's label; every later
// sighting overwrites LastTime, increments Count and appends unseen ranks.
// Each physical file must be passed exactly once, refolding a file
// double-counts.
//
// The result is keyed by display alias, not source id: historical files only
// persist the alias. Use MapToIDs to recover id-keyed history.
func Aggregate(entries []Entry) map[string]map[string]*domain.AggregatedInfo {
	out := map[string]map[string]*domain.AggregatedInfo{}

	for _, entry := range entries {
		for _, snap := range entry.Snapshots {
			perSource := out[snap.Alias]
			if perSource == nil {
				perSource = map[string]*domain.AggregatedInfo{}
				out[snap.Alias] = perSource
			}
			for _, title := range snap.Order {
				rec := snap.Titles[title]
				info := perSource[title]
				if info == nil {
					info = &domain.AggregatedInfo{
						FirstTime: entry.TimeLabel,
						LastTime:  entry.TimeLabel,
						Count:     1,
						Ranks:     append([]int(nil), rec.Ranks...),
						URL:       rec.URL,
						MobileURL: rec.MobileURL,
					}
					perSource[title] = info
					continue
				}
				info.LastTime = entry.TimeLabel
				info.Count++
				for _, r := range rec.Ranks {
					appendRank(info, r)
				}
				if info.URL == "" {
					info.URL = rec.URL
				}
				if info.MobileURL == "" {
					info.MobileURL = rec.MobileURL
				}
			}
		}
	}
	return out
}

func appendRank(info *domain.AggregatedInfo, rank int) {
	for _, r := range info.Ranks {
		if r == rank {
			return
		}
	}
	info.Ranks = append(info.Ranks, rank)
}

// MapToIDs re-keys alias-keyed history by source id using the live alias→id
// table. Aliases with no live id are returned as orphans, sorted, and are
// excluded from the id-keyed result; callers decide how loudly to report
// them.
func MapToIDs(byAlias map[string]map[string]*domain.AggregatedInfo, aliasToID map[string]string) (map[string]map[string]*domain.AggregatedInfo, []string) {
	byID := map[string]map[string]*domain.AggregatedInfo{}
	var orphans []string

	for alias, titles := range byAlias {
		id, ok := aliasToID[alias]
		if !ok {
			orphans = append(orphans, alias)
			continue
		}
		byID[id] = titles
	}
	sort.Strings(orphans)
	return byID, orphans
}
