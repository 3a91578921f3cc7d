package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/askort/hotwords/pkg/domain"
)

// time labels follow the historical file naming, Beijing time
const (
	dayDirLayout   = "2006年01月02日"
	timeFileLayout = "15时04分"
	txtSubdir      = "txt"
)

// Entry is one decoded snapshot file: its time label and the per-source
// snapshots it contains, in file order.
type Entry struct {
	TimeLabel string
	Snapshots []*domain.SourceSnapshot
}

// Store reads and writes day-scoped snapshot files under
// <base>/<YYYY年MM月DD日>/txt/<HH时MM分>.txt. It never rewrites an existing
// file; each run appends exactly one new file to the day.
type Store struct {
	baseDir string
	loc     *time.Location
	now     func() time.Time
}

// NewStore creates a store rooted at baseDir, using Beijing time for day and
// file labels
func NewStore(baseDir string) (*Store, error) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return &Store{baseDir: baseDir, loc: loc, now: time.Now}, nil
}

// Now returns the current time in the store's timezone
func (s *Store) Now() time.Time { return s.now().In(s.loc) }

// TimeLabel returns the file label for the current time
func (s *Store) TimeLabel() string { return s.Now().Format(timeFileLayout) }

// dayDir is the directory holding the current day's snapshot files
func (s *Store) dayDir() string {
	return filepath.Join(s.baseDir, s.Now().Format(dayDirLayout), txtSubdir)
}

// Save encodes snapshots and failures into a new time-labeled file for the
// current day and returns its path. A same-label collision is overwritten,
// last writer wins.
func (s *Store) Save(snapshots []*domain.SourceSnapshot, failures domain.FailureList) (string, error) {
	dir := s.dayDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create day directory: %w", err)
	}

	path := filepath.Join(dir, s.TimeLabel()+".txt")
	text := Encode(snapshots, failures)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	return path, nil
}

// ListChronological decodes every snapshot file of the current day in time
// order. Zero-padded labels make the lexicographic filename sort
// chronological. A missing day directory yields an empty list, not an error.
func (s *Store) ListChronological() ([]Entry, error) {
	dir := s.dayDir()
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read day directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // path built from our own listing
		if err != nil {
			lgr.Printf("[WARN] skip unreadable snapshot file %s: %v", name, err)
			continue
		}
		snaps, diags := Decode(string(data))
		for _, d := range diags {
			lgr.Printf("[WARN] %s: bad snapshot line, %s", name, d)
		}
		label := strings.TrimSuffix(name, ".txt")
		for _, snap := range snaps {
			snap.TimeLabel = label
		}
		entries = append(entries, Entry{TimeLabel: label, Snapshots: snaps})
	}
	return entries, nil
}

// ReadLatest decodes the most recent snapshot file of the day, ok=false when
// the day has none
func (s *Store) ReadLatest() (Entry, bool, error) {
	entries, err := s.ListChronological()
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}
