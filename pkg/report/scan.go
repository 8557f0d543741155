package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
)

// DefaultTagPattern matches WCAG success criterion tags like "wcag143" or "wcag1410".
const DefaultTagPattern = `wcag\d{3,4}`

var defaultTagRegexp = regexp.MustCompile(DefaultTagPattern)

// ScanStats summarises one Scan.
type ScanStats struct {
	Files      int // files whose tags were reported
	Duplicates int // files skipped because an identical report was already read
	Unreadable int // files that could not be read
	Tags       int // tags reported
}

// Scanner extracts tags from every file under a directory.
type Scanner struct {
	// Pattern selects the tags. Nil means DefaultTagPattern.
	Pattern *regexp.Regexp
	// Dedupe skips files whose contents hash the same as a file already read.
	Dedupe bool
}

// NewScanner compiles pattern; an empty pattern means DefaultTagPattern.
func NewScanner(pattern string, dedupe bool) (*Scanner, error) {
	if pattern == "" {
		return &Scanner{Pattern: defaultTagRegexp, Dedupe: dedupe}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tag pattern %q: %w", pattern, err)
	}
	return &Scanner{Pattern: re, Dedupe: dedupe}, nil
}

// Scan walks root in lexical order and calls fn for every tag match, in the
// order the matches appear. Files that cannot be read are logged and skipped.
// An error from fn stops the walk and is returned.
func (s *Scanner) Scan(root string, fn func(tag string) error) (ScanStats, error) {
	var stats ScanStats
	re := s.Pattern
	if re == nil {
		re = defaultTagRegexp
	}
	seen := make(map[uint64]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warnf("Failed to access %s: %v", path, err)
			stats.Unreadable++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("Failed to read report %s: %v", path, err)
			stats.Unreadable++
			return nil
		}

		if s.Dedupe {
			sum := xxhash.Sum64(contents)
			if first, dup := seen[sum]; dup {
				log.Debugf("Skipping %s: same contents as %s", path, first)
				stats.Duplicates++
				return nil
			}
			seen[sum] = path
		}

		stats.Files++
		for _, tag := range re.FindAll(contents, -1) {
			stats.Tags++
			if err := fn(string(tag)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to scan reports in %s: %w", root, err)
	}
	log.Debugf("Scanned %d reports (%d duplicates, %d unreadable), %d tags",
		stats.Files, stats.Duplicates, stats.Unreadable, stats.Tags)
	return stats, nil
}
