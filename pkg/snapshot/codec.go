// Package snapshot implements the flat-text snapshot format and the per-day
// store built on top of it: encoding and decoding of fetch-cycle files,
// chronological listing, cross-snapshot aggregation and new-title detection.
package snapshot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/askort/hotwords/pkg/domain"
)

// failureMarker opens the trailing section listing sources whose fetch failed
const failureMarker = "==== 以下ID请求失败 ===="

const (
	urlTag    = " [URL:"
	mobileTag = " [MOBILE:"
)

// Diagnostic reports one line that failed to parse. Decoding skips the line
// and keeps going.
type Diagnostic struct {
	Line int // 1-based line number in the input text
	Text string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %v (%q)", d.Line, d.Err, d.Text)
}

// Encode renders snapshots and failures into the flat-text file format.
// Each snapshot becomes an alias header followed by its titles sorted by
// minimum rank, ties kept in discovery order. The format is what historical
// files already use, so it must stay byte-compatible.
func Encode(snapshots []*domain.SourceSnapshot, failures domain.FailureList) string {
	var b strings.Builder

	for _, snap := range snapshots {
		b.WriteString(snap.Alias)
		b.WriteString("\n")

		type entry struct {
			minRank int
			rec     *domain.TitleRecord
		}
		entries := make([]entry, 0, len(snap.Order))
		for _, title := range snap.Order {
			rec := snap.Titles[title]
			minRank, ok := rec.MinRank()
			if !ok {
				minRank = 99 // no rank observed, matches the historical writer
			}
			entries = append(entries, entry{minRank: minRank, rec: rec})
		}
		// stable keeps discovery order among equal ranks
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].minRank < entries[j].minRank })

		for _, e := range entries {
			b.WriteString(strconv.Itoa(e.minRank))
			b.WriteString(". ")
			b.WriteString(e.rec.Title)
			if e.rec.URL != "" {
				b.WriteString(urlTag)
				b.WriteString(e.rec.URL)
				b.WriteString("]")
			}
			if e.rec.MobileURL != "" {
				b.WriteString(mobileTag)
				b.WriteString(e.rec.MobileURL)
				b.WriteString("]")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(failures) > 0 {
		b.WriteString(failureMarker)
		b.WriteString("\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("%s (ID: %s)\n", f.Alias, f.SourceID))
		}
	}

	return b.String()
}

// Decode parses flat-text back into per-source snapshots, in file order.
// Sections are separated by blank lines; the failure section and sections
// with fewer than two non-empty lines are skipped. Bad lines are reported as
// diagnostics and skipped, the rest of the section still decodes. Decoding is
// lossy: only the minimum rank survives the round trip.
func Decode(text string) (snapshots []*domain.SourceSnapshot, diags []Diagnostic) {
	lines := strings.Split(text, "\n")

	type section struct {
		start int // 1-based line number of the first line
		lines []string
	}
	var sections []section
	var cur *section
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			cur = nil
			continue
		}
		if cur == nil {
			sections = append(sections, section{start: i + 1})
			cur = &sections[len(sections)-1]
		}
		cur.lines = append(cur.lines, line)
	}

	for _, sec := range sections {
		if strings.Contains(sec.lines[0], failureMarker) {
			continue
		}
		if len(sec.lines) < 2 {
			continue
		}
		alias := strings.TrimSpace(sec.lines[0])
		snap := domain.NewSourceSnapshot("", alias, "")
		for off, line := range sec.lines[1:] {
			title, rank, url, mobileURL, err := parseTitleLine(line)
			if err != nil {
				diags = append(diags, Diagnostic{Line: sec.start + 1 + off, Text: line, Err: err})
				continue
			}
			snap.Add(title, url, mobileURL, rank)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, diags
}

// parseTitleLine works right to left: peel the trailing MOBILE tag, then the
// trailing URL tag, then the leading "<digits>. " rank prefix. A non-numeric
// prefix means the whole line is the title with an implicit rank of 1.
func parseTitleLine(line string) (title string, rank int, url, mobileURL string, err error) {
	line, mobileURL = peelTag(line, mobileTag)
	line, url = peelTag(line, urlTag)

	rank = 1
	title = line
	if idx := strings.Index(line, ". "); idx > 0 && allDigits(line[:idx]) {
		n, convErr := strconv.Atoi(line[:idx])
		if convErr != nil {
			return "", 0, "", "", fmt.Errorf("rank prefix %q: %w", line[:idx], convErr)
		}
		rank = n
		title = line[idx+2:]
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return "", 0, "", "", fmt.Errorf("empty title")
	}
	return title, rank, url, mobileURL, nil
}

// peelTag strips a trailing " [TAG:value]" and returns the remainder and value
func peelTag(line, tag string) (rest, value string) {
	if !strings.HasSuffix(line, "]") {
		return line, ""
	}
	idx := strings.LastIndex(line, tag)
	if idx < 0 {
		return line, ""
	}
	return line[:idx], line[idx+len(tag) : len(line)-1]
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
