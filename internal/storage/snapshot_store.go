// Package storage persists snapshot sets as date-partitioned JSON files:
// one directory per calendar day, one file per capture tick.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/signalforge/signalforge/internal/dates"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/news"
)

const tickLayout = "1504"

// SnapshotStore reads and writes snapshot sets under a data directory
// laid out as <dir>/<YYYY-MM-DD>/<HHMM>.json. Writes are atomic
// (temp file + rename) so readers never observe a partial tick.
type SnapshotStore struct {
	dir string
	mu  sync.Mutex // serializes appends; reads are lock-free
}

// ReadResult is the outcome of reading a day or range: the sets that
// parsed cleanly plus a count of tick files that were skipped because
// they were corrupt or unreadable.
type ReadResult struct {
	Sets    []news.SnapshotSet
	Skipped int
}

// NewSnapshotStore creates the data directory if needed.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if dir == "" {
		return nil, &news.ValidationError{Op: "snapshot store", Reason: "data directory is empty"}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}
	return &SnapshotStore{dir: dir}, nil
}

// Dir returns the store's root data directory.
func (s *SnapshotStore) Dir() string {
	return s.dir
}

// Append validates and persists one snapshot set. A tick that already
// exists for the same minute is rejected rather than overwritten.
func (s *SnapshotStore) Append(set news.SnapshotSet) error {
	if err := set.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dayDir := filepath.Join(s.dir, dates.Day(set.CapturedAt).Format(dates.Layout))
	if err := os.MkdirAll(dayDir, 0755); err != nil {
		return fmt.Errorf("failed to create day directory: %v", err)
	}

	path := filepath.Join(dayDir, set.CapturedAt.Format(tickLayout)+".json")
	if _, err := os.Stat(path); err == nil {
		return &news.ValidationError{
			Op:     "append",
			Reason: fmt.Sprintf("tick %s already recorded", set.CapturedAt.Format("2006-01-02 15:04")),
		}
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot set: %v", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish snapshot file: %v", err)
	}

	logger.Info("Snapshot set appended", "path", path, "platforms", len(set.Snapshots))
	return nil
}

// ListDates returns every day that has at least one tick file,
// ascending. A missing data directory yields an empty list.
func (s *SnapshotStore) ListDates() ([]time.Time, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list data directory: %v", err)
	}

	var days []time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		day, err := time.Parse(dates.Layout, e.Name())
		if err != nil {
			continue // not a day directory
		}
		if has, err := s.hasTicks(filepath.Join(s.dir, e.Name())); err == nil && has {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// ReadDay returns all ticks recorded on the given day in capture
// order. Corrupt tick files are logged, skipped, and counted.
func (s *SnapshotStore) ReadDay(day time.Time) (ReadResult, error) {
	dayDir := filepath.Join(s.dir, dates.Day(day).Format(dates.Layout))
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		if os.IsNotExist(err) {
			return ReadResult{}, nil
		}
		return ReadResult{}, fmt.Errorf("failed to read day directory: %v", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var res ReadResult
	for _, name := range names {
		path := filepath.Join(dayDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.warnSkipped(path, err)
			res.Skipped++
			continue
		}
		var set news.SnapshotSet
		if err := json.Unmarshal(data, &set); err != nil {
			s.warnSkipped(path, err)
			res.Skipped++
			continue
		}
		if set.CapturedAt.IsZero() {
			s.warnSkipped(path, fmt.Errorf("captured_at is unset"))
			res.Skipped++
			continue
		}
		res.Sets = append(res.Sets, set)
	}
	return res, nil
}

// ReadRange returns all ticks across the range, days ascending.
func (s *SnapshotStore) ReadRange(r dates.Range) (ReadResult, error) {
	if err := r.Validate(); err != nil {
		return ReadResult{}, err
	}
	var res ReadResult
	for _, day := range r.Days() {
		dayRes, err := s.ReadDay(day)
		if err != nil {
			return ReadResult{}, err
		}
		res.Sets = append(res.Sets, dayRes.Sets...)
		res.Skipped += dayRes.Skipped
	}
	return res, nil
}

// FilterPlatforms narrows each set to the named platforms. A nil or
// empty filter returns the input unchanged. Sets left with no
// snapshots after filtering are dropped.
func FilterPlatforms(sets []news.SnapshotSet, platforms []string) []news.SnapshotSet {
	if len(platforms) == 0 {
		return sets
	}
	want := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		want[strings.ToLower(p)] = true
	}
	var out []news.SnapshotSet
	for _, set := range sets {
		filtered := news.SnapshotSet{CapturedAt: set.CapturedAt}
		for _, snap := range set.Snapshots {
			if want[strings.ToLower(snap.Platform)] {
				filtered.Snapshots = append(filtered.Snapshots, snap)
			}
		}
		if len(filtered.Snapshots) > 0 {
			out = append(out, filtered)
		}
	}
	return out
}

// Latest returns the most recent readable tick on the most recent
// day, or ok=false when the store is empty. The skipped count reports
// corrupt ticks passed over on the way, so a caller can tell a fresh
// tick from a stale one served because the newest file was unreadable.
func (s *SnapshotStore) Latest() (news.SnapshotSet, int, bool, error) {
	days, err := s.ListDates()
	if err != nil {
		return news.SnapshotSet{}, 0, false, err
	}
	skipped := 0
	for i := len(days) - 1; i >= 0; i-- {
		res, err := s.ReadDay(days[i])
		if err != nil {
			return news.SnapshotSet{}, skipped, false, err
		}
		skipped += res.Skipped
		if len(res.Sets) > 0 {
			return res.Sets[len(res.Sets)-1], skipped, true, nil
		}
	}
	return news.SnapshotSet{}, skipped, false, nil
}

// GetStats returns store statistics for monitoring.
func (s *SnapshotStore) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"data_dir":   s.dir,
		"total_days": 0,
		"last_date":  "",
	}
	days, err := s.ListDates()
	if err != nil || len(days) == 0 {
		return stats
	}
	stats["total_days"] = len(days)
	stats["last_date"] = days[len(days)-1].Format(dates.Layout)
	return stats
}

func (s *SnapshotStore) hasTicks(dayDir string) (bool, error) {
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			return true, nil
		}
	}
	return false, nil
}

func (s *SnapshotStore) warnSkipped(path string, err error) {
	logger.Warn("Skipping unreadable snapshot file", "path", path, "error", err)
}
