package snapshot

// DetectNew compares the most recent snapshot file against the union of all
// earlier ones and returns, per source alias, the set of titles with no prior
// sighting today. With a single file every title in it is new (first-ever
// sighting of the day); with none the result is empty. Matching is exact
// string equality.
func DetectNew(entries []Entry) map[string]map[string]bool {
	out := map[string]map[string]bool{}
	if len(entries) == 0 {
		return out
	}

	latest := entries[len(entries)-1]

	if len(entries) == 1 {
		for _, snap := range latest.Snapshots {
			set := map[string]bool{}
			for _, title := range snap.Order {
				set[title] = true
			}
			out[snap.Alias] = set
		}
		return out
	}

	history := map[string]map[string]bool{}
	for _, entry := range entries[:len(entries)-1] {
		for _, snap := range entry.Snapshots {
			seen := history[snap.Alias]
			if seen == nil {
				seen = map[string]bool{}
				history[snap.Alias] = seen
			}
			for _, title := range snap.Order {
				seen[title] = true
			}
		}
	}

	for _, snap := range latest.Snapshots {
		set := map[string]bool{}
		for _, title := range snap.Order {
			if !history[snap.Alias][title] {
				set[title] = true
			}
		}
		out[snap.Alias] = set
	}
	return out
}
