package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/brensch/floodsnek/arena"
)

// ErrNotEnoughAggregates means a directory holds fewer than two aggregate
// files, so there is nothing to compare.
var ErrNotEnoughAggregates = errors.New("not enough aggregate files")

const aggregateLayout = "20060102_150405"

var aggregateName = regexp.MustCompile(`^agg_results_\d{8}_\d{6}\.json$`)

// AggregateFileName names an aggregate file for the given time.
func AggregateFileName(at time.Time) string {
	return "agg_results_" + at.Format(aggregateLayout) + ".json"
}

// WriteAggregates writes agg as indented JSON into dir and returns the path.
func WriteAggregates(dir string, agg arena.Aggregates, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create aggregate dir: %w", err)
	}
	b, err := json.MarshalIndent(agg, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode aggregates: %w", err)
	}

	path := filepath.Join(dir, AggregateFileName(at))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write aggregates: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename aggregates: %w", err)
	}
	return path, nil
}

// LoadAggregates reads one aggregate file.
func LoadAggregates(path string) (arena.Aggregates, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aggregates: %w", err)
	}
	var agg arena.Aggregates
	if err := json.Unmarshal(b, &agg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if agg == nil {
		agg = arena.Aggregates{}
	}
	return agg, nil
}

// FindLatestAggregates returns the second newest and the newest aggregate
// files in dir, judged by the timestamp in their names.
func FindLatestAggregates(dir string) (older, newer string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("read aggregate dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && aggregateName.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) < 2 {
		return "", "", fmt.Errorf("%w in %s (found %d)", ErrNotEnoughAggregates, dir, len(names))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return filepath.Join(dir, names[1]), filepath.Join(dir, names[0]), nil
}
