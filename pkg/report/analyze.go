/*
Package report finds the most commonly reported WCAG success criteria in a
directory of accessibility reports.

Reports are arbitrary text files. Every substring matching the tag pattern
(wcag followed by the criterion digits, e.g. wcag143) counts as one
occurrence. Tags are ranked with a rank.Ranker and paired with their titles
from a definitions file:

	1.1.1	Non-text Content
	1.4.3	Contrast (Minimum)

A typical run:

	res, err := report.Analyze(report.Options{
		DefinitionsPath: "data/wcag.tsv",
		ReportsDir:      "data/reports",
		TopK:            3,
	})
*/
package report

import (
	"fmt"

	"github.com/bastiangx/wordrank/pkg/minpq"
	"github.com/bastiangx/wordrank/pkg/rank"
)

// Options configures Analyze.
type Options struct {
	DefinitionsPath string
	ReportsDir      string
	TagPattern      string
	Dedupe          bool
	TopK            int
	Backend         minpq.Kind
}

// Finding is one ranked tag.
type Finding struct {
	Tag   string
	Title string
	Count int
}

// Result is the outcome of Analyze.
type Result struct {
	Findings []Finding
	Stats    ScanStats
	Distinct int
}

// Analyze loads the definitions, scans the reports and returns the TopK most
// frequent tags, most frequent first. Tags missing from the definitions keep
// an empty title.
func Analyze(opts Options) (*Result, error) {
	if opts.TopK < 1 {
		return nil, fmt.Errorf("%w: %d", rank.ErrInvalidK, opts.TopK)
	}
	defs, err := LoadDefinitionsFile(opts.DefinitionsPath)
	if err != nil {
		return nil, err
	}
	scanner, err := NewScanner(opts.TagPattern, opts.Dedupe)
	if err != nil {
		return nil, err
	}

	ranker := rank.New(opts.Backend)
	stats, err := scanner.Scan(opts.ReportsDir, ranker.Observe)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Distinct: ranker.Len()}
	if ranker.Len() == 0 {
		return res, nil
	}
	entries, err := ranker.Drain(opts.TopK)
	if err != nil {
		return nil, err
	}
	res.Findings = Describe(entries, defs)
	return res, nil
}

// Describe attaches definition titles to ranked entries.
func Describe(entries []rank.Entry, defs *Definitions) []Finding {
	findings := make([]Finding, len(entries))
	for i, e := range entries {
		title, _ := defs.Title(e.Item)
		findings[i] = Finding{Tag: e.Item, Title: title, Count: e.Count}
	}
	return findings
}
