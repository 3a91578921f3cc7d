// Package stats computes per-group frequency statistics over the titles of a
// run, annotated with the day's aggregated history and new-title flags.
package stats

import (
	"math"
	"sort"

	"github.com/askort/hotwords/pkg/domain"
	"github.com/askort/hotwords/pkg/match"
)

// Engine holds the runtime knobs of a statistics run. Both values come from
// configuration, the engine never computes them.
type Engine struct {
	RankThreshold      int // ranks at or below are highlighted
	MinTotalForPercent int // below this many seen titles percentages stay 0
}

// Compute matches every (source, title) pair against the rule set and returns
// one FrequencyStat per configured group plus the number of titles seen.
// A title is attributed to at most one group per source; zero-hit groups are
// still emitted with Count=0 so silent rules stay visible. Stats are ordered
// by descending count, ties keep the configured group order.
func (e *Engine) Compute(snapshots []*domain.SourceSnapshot, groups []domain.WordGroup, filterWords []string,
	aggregated map[string]map[string]*domain.AggregatedInfo, newTitles map[string]map[string]bool) ([]domain.FrequencyStat, int) {

	statIdx := make(map[string]int, len(groups))
	result := make([]domain.FrequencyStat, 0, len(groups))
	for _, g := range groups {
		statIdx[g.Key] = len(result)
		result = append(result, domain.FrequencyStat{Key: g.Key})
	}

	processed := map[string]map[string]bool{}
	total := 0

	for _, snap := range snapshots {
		seen := processed[snap.Alias]
		if seen == nil {
			seen = map[string]bool{}
			processed[snap.Alias] = seen
		}
		for _, title := range snap.Order {
			if seen[title] {
				continue
			}
			seen[title] = true
			total++

			group, ok := match.MatchedGroup(title, groups, filterWords)
			if !ok {
				continue
			}

			idx := statIdx[group.Key]
			result[idx].Count++
			result[idx].Titles = append(result[idx].Titles,
				e.annotate(snap.Titles[title], snap.Alias, aggregated[snap.Alias][title], newTitles[snap.Alias][title]))
		}
	}

	for i := range result {
		result[i].Percentage = e.percentage(result[i].Count, total)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result, total
}

// annotate builds the rendering entry for one matched title, preferring the
// aggregated history over the raw per-snapshot record
func (e *Engine) annotate(rec *domain.TitleRecord, alias string, agg *domain.AggregatedInfo, isNew bool) domain.AnnotatedTitle {
	a := domain.AnnotatedTitle{
		Title:       rec.Title,
		SourceAlias: alias,
		Ranks:       rec.Ranks,
		URL:         rec.URL,
		MobileURL:   rec.MobileURL,
		Count:       1,
		IsNew:       isNew,
	}

	if agg != nil {
		if len(agg.Ranks) > 0 {
			a.Ranks = agg.Ranks
		}
		a.Count = agg.Count
		if agg.FirstTime == agg.LastTime {
			a.TimeDisplay = agg.FirstTime
		} else {
			a.TimeDisplay = agg.FirstTime + " ~ " + agg.LastTime
		}
		if a.URL == "" {
			a.URL = agg.URL
		}
		if a.MobileURL == "" {
			a.MobileURL = agg.MobileURL
		}
	}

	if len(a.Ranks) == 0 {
		a.Ranks = []int{99} // display sentinel for "never ranked"
	}
	return a
}

func (e *Engine) percentage(count, total int) float64 {
	if total == 0 || total < e.MinTotalForPercent {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
