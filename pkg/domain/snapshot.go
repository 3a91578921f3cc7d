package domain

// TitleRecord is one distinct title observed within a single snapshot.
// Ranks keeps every observed position in insertion order without duplicates;
// a title can surface at several positions inside one fetch cycle.
type TitleRecord struct {
	Title     string
	Ranks     []int
	URL       string
	MobileURL string
}

// AddRank appends a rank unless it is already present
func (t *TitleRecord) AddRank(rank int) {
	for _, r := range t.Ranks {
		if r == rank {
			return
		}
	}
	t.Ranks = append(t.Ranks, rank)
}

// MinRank returns the smallest observed rank, ok=false when no rank was recorded
func (t *TitleRecord) MinRank() (minRank int, ok bool) {
	if len(t.Ranks) == 0 {
		return 0, false
	}
	minRank = t.Ranks[0]
	for _, r := range t.Ranks[1:] {
		if r < minRank {
			minRank = r
		}
	}
	return minRank, true
}

// SourceSnapshot is the set of titles captured from one fetch cycle of one source.
// Order preserves discovery order, Titles indexes the same records by title.
type SourceSnapshot struct {
	SourceID  string
	Alias     string
	TimeLabel string
	Order     []string
	Titles    map[string]*TitleRecord
}

// NewSourceSnapshot creates an empty snapshot for a source
func NewSourceSnapshot(sourceID, alias, timeLabel string) *SourceSnapshot {
	return &SourceSnapshot{
		SourceID:  sourceID,
		Alias:     alias,
		TimeLabel: timeLabel,
		Titles:    map[string]*TitleRecord{},
	}
}

// Add records a title sighting at the given rank. A repeated title gets the
// rank appended to its existing record; URLs stick to the first sighting.
func (s *SourceSnapshot) Add(title, url, mobileURL string, rank int) {
	if rec, ok := s.Titles[title]; ok {
		rec.AddRank(rank)
		return
	}
	s.Titles[title] = &TitleRecord{Title: title, Ranks: []int{rank}, URL: url, MobileURL: mobileURL}
	s.Order = append(s.Order, title)
}

// Failure identifies a source whose fetch produced no snapshot
type Failure struct {
	SourceID string
	Alias    string
}

// FailureList collects failed fetches of one run
type FailureList []Failure

// AggregatedInfo is the merged view of one title across every snapshot of a
// day for one source: first/last sighting labels, sighting count and the
// union of observed ranks.
type AggregatedInfo struct {
	FirstTime string
	LastTime  string
	Count     int
	Ranks     []int
	URL       string
	MobileURL string
}
