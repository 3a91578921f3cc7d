// Package notify renders the frequency report and delivers it to the
// configured push targets (Feishu webhook, Bark). Delivery is best effort:
// a missing endpoint or a failed push is logged, never fatal to the run.
package notify

import (
	"fmt"
	"strings"

	"github.com/askort/hotwords/pkg/domain"
	"github.com/askort/hotwords/pkg/stats"
)

// newMarker flags titles with no prior sighting today
const newMarker = "[新]"

// RenderReport builds the human-readable report text shared by every push
// target. Rank ranges carry the HTML highlight markup; targets that cannot
// display HTML strip it before sending.
func RenderReport(report []domain.FrequencyStat, total int, failures domain.FailureList, rankThreshold int, separator string) string {
	var lines []string

	for _, stat := range report {
		lines = append(lines, fmt.Sprintf("%s (出现次数: %d, 占比: %.2f%%)", stat.Key, stat.Count, stat.Percentage))
		for _, t := range stat.Titles {
			line := stats.FormatRankHTML(t.Ranks, rankThreshold)
			if t.IsNew {
				line += " " + newMarker
			}
			line += " " + t.Title + " — 来源：" + t.SourceAlias
			if t.TimeDisplay != "" {
				line += fmt.Sprintf(" 「%s」", t.TimeDisplay)
			}
			if t.Count > 1 {
				line += fmt.Sprintf(" (%d次)", t.Count)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	lines = append(lines, fmt.Sprintf("共统计标题 %d 条", total))

	if len(failures) > 0 {
		lines = append(lines, separator, "以下ID请求失败：")
		for _, f := range failures {
			lines = append(lines, fmt.Sprintf("%s (ID: %s)", f.Alias, f.SourceID))
		}
	}

	return strings.Join(lines, "\n")
}
