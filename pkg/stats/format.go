package stats

import (
	"fmt"
	"sort"
)

// FormatRankHTML renders a rank list as a bracketed value or min-max range,
// wrapped in red bold markup when the minimum rank is at or below the
// threshold. This is the shared formatting contract between the engine and
// the renderers; Bark delivery strips the markup back out.
func FormatRankHTML(ranks []int, threshold int) string {
	if len(ranks) == 0 {
		return ""
	}

	unique := append([]int(nil), ranks...)
	sort.Ints(unique)
	dedup := unique[:1]
	for _, r := range unique[1:] {
		if r != dedup[len(dedup)-1] {
			dedup = append(dedup, r)
		}
	}

	minRank, maxRank := dedup[0], dedup[len(dedup)-1]
	var body string
	if minRank == maxRank {
		body = fmt.Sprintf("[%d]", minRank)
	} else {
		body = fmt.Sprintf("[%d - %d]", minRank, maxRank)
	}

	if minRank <= threshold {
		return "<font color='red'><strong>" + body + "</strong></font>"
	}
	return body
}
