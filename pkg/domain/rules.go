package domain

// WordGroup is one configured keyword rule: all Required words must be
// present, at least one Normal word must be present when the list is
// non-empty. Key labels the group and must be unique across the rule set.
type WordGroup struct {
	Required []string
	Normal   []string
	Key      string
}

// AnnotatedTitle is one matched title prepared for rendering
type AnnotatedTitle struct {
	Title       string
	SourceAlias string
	Ranks       []int
	URL         string
	MobileURL   string
	TimeDisplay string // "<first> ~ <last>" or "<first>", empty when unknown
	Count       int
	IsNew       bool
}

// FrequencyStat is the per-group result of a statistics run, recomputed on
// every run and never persisted
type FrequencyStat struct {
	Key        string
	Count      int
	Percentage float64
	Titles     []AnnotatedTitle
}
