package report

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bastiangx/wordrank/pkg/minpq"
	"github.com/bastiangx/wordrank/pkg/rank"
)

const sampleDefinitions = "1.1.1\tNon-text Content\n" +
	"1.4.3\tContrast (Minimum)\n" +
	"\n" +
	"1.4.10\tReflow\n" +
	"4.1.2\tName, Role, Value\n"

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefinitions(t *testing.T) {
	defs, err := LoadDefinitions(strings.NewReader(sampleDefinitions))
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}

	wantKeys := []string{"wcag111", "wcag143", "wcag1410", "wcag412"}
	if got := defs.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
	if defs.Len() != 4 {
		t.Errorf("Len() = %d", defs.Len())
	}
	if title, ok := defs.Title("wcag412"); !ok || title != "Name, Role, Value" {
		t.Errorf("Title(wcag412) = %q, %v", title, ok)
	}
	if _, ok := defs.Title("wcag999"); ok {
		t.Errorf("Title(wcag999) found")
	}
}

func TestLoadDefinitionsEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, d *Definitions)
	}{
		{
			name:  "crlf and tab in title",
			input: "2.4.4\tLink Purpose\t(In Context)\r\n",
			check: func(t *testing.T, d *Definitions) {
				if title, _ := d.Title("wcag244"); title != "Link Purpose\t(In Context)" {
					t.Errorf("title = %q", title)
				}
			},
		},
		{
			name:  "redefinition keeps position",
			input: "1.1.1\tOld\n2.1.1\tKeyboard\n1.1.1\tNew\n",
			check: func(t *testing.T, d *Definitions) {
				if got := d.Keys(); !reflect.DeepEqual(got, []string{"wcag111", "wcag211"}) {
					t.Errorf("Keys() = %v", got)
				}
				if title, _ := d.Title("wcag111"); title != "New" {
					t.Errorf("title = %q", title)
				}
			},
		},
		{name: "missing tab", input: "1.1.1 Non-text Content\n", wantErr: true},
		{name: "empty criterion", input: "\tNothing\n", wantErr: true},
		{
			name:  "empty input",
			input: "",
			check: func(t *testing.T, d *Definitions) {
				if d.Len() != 0 {
					t.Errorf("Len() = %d", d.Len())
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := LoadDefinitions(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedDefinition) {
					t.Fatalf("err = %v, want ErrMalformedDefinition", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, defs)
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.html"), `<li class="wcag111">x</li> wcag143 wcag143`)
	writeFile(t, filepath.Join(dir, "b", "c.json"), `{"tags":["wcag2aa","wcag1410","wcag412"]}`)
	writeFile(t, filepath.Join(dir, "b", "copy.html"), `<li class="wcag111">x</li> wcag143 wcag143`)

	tests := []struct {
		name     string
		dedupe   bool
		wantTags []string
		wantDup  int
	}{
		{
			name:     "all files",
			dedupe:   false,
			wantTags: []string{"wcag111", "wcag143", "wcag143", "wcag1410", "wcag412", "wcag111", "wcag143", "wcag143"},
		},
		{
			name:     "dedupe identical reports",
			dedupe:   true,
			wantTags: []string{"wcag111", "wcag143", "wcag143", "wcag1410", "wcag412"},
			wantDup:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScanner("", tt.dedupe)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			stats, err := s.Scan(dir, func(tag string) error {
				got = append(got, tag)
				return nil
			})
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if !reflect.DeepEqual(got, tt.wantTags) {
				t.Errorf("tags = %v\nwant  %v", got, tt.wantTags)
			}
			if stats.Duplicates != tt.wantDup {
				t.Errorf("Duplicates = %d, want %d", stats.Duplicates, tt.wantDup)
			}
			if stats.Tags != len(tt.wantTags) {
				t.Errorf("Tags = %d, want %d", stats.Tags, len(tt.wantTags))
			}
			if stats.Files+stats.Duplicates != 3 {
				t.Errorf("Files = %d, Duplicates = %d", stats.Files, stats.Duplicates)
			}
		})
	}
}

func TestScanStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "r.txt"), "wcag111 wcag143 wcag412")
	stop := errors.New("stop")

	s := &Scanner{}
	calls := 0
	_, err := s.Scan(dir, func(string) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want wrapped stop", err)
	}
	if calls != 2 {
		t.Errorf("callback ran %d times", calls)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := &Scanner{}
	if _, err := s.Scan(filepath.Join(t.TempDir(), "nope"), func(string) error { return nil }); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestNewScannerBadPattern(t *testing.T) {
	if _, err := NewScanner("wcag(", false); err == nil {
		t.Error("expected error for bad pattern")
	}
	s, err := NewScanner(`aria-[a-z]+`, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Pattern.FindAllString("aria-label aria-hidden wcag111", -1); len(got) != 2 {
		t.Errorf("custom pattern matched %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	defsPath := filepath.Join(dir, "wcag.tsv")
	writeFile(t, defsPath, sampleDefinitions)
	reports := filepath.Join(dir, "reports")
	writeFile(t, filepath.Join(reports, "1.html"), "wcag143 wcag111 wcag143 wcag412 wcag143")
	writeFile(t, filepath.Join(reports, "2.html"), "wcag412 wcag143 wcag999")
	writeFile(t, filepath.Join(reports, "3.html"), "wcag999 wcag999")

	for _, kind := range []minpq.Kind{minpq.KindHeap, minpq.KindUnsortedArray} {
		t.Run(kind.String(), func(t *testing.T) {
			res, err := Analyze(Options{
				DefinitionsPath: defsPath,
				ReportsDir:      reports,
				Dedupe:          true,
				TopK:            3,
				Backend:         kind,
			})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			want := []Finding{
				{Tag: "wcag143", Title: "Contrast (Minimum)", Count: 4},
				{Tag: "wcag999", Title: "", Count: 3},
				{Tag: "wcag412", Title: "Name, Role, Value", Count: 2},
			}
			if !reflect.DeepEqual(res.Findings, want) {
				t.Errorf("Findings = %+v\nwant %+v", res.Findings, want)
			}
			if res.Distinct != 4 {
				t.Errorf("Distinct = %d, want 4", res.Distinct)
			}
			if res.Stats.Files != 3 {
				t.Errorf("Stats.Files = %d", res.Stats.Files)
			}
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	dir := t.TempDir()
	defsPath := filepath.Join(dir, "wcag.tsv")
	writeFile(t, defsPath, sampleDefinitions)

	if _, err := Analyze(Options{DefinitionsPath: defsPath, ReportsDir: dir, TopK: 0}); !errors.Is(err, rank.ErrInvalidK) {
		t.Errorf("TopK 0: %v", err)
	}
	if _, err := Analyze(Options{DefinitionsPath: filepath.Join(dir, "missing.tsv"), ReportsDir: dir, TopK: 3}); err == nil {
		t.Error("expected error for missing definitions")
	}

	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0755); err != nil {
		t.Fatal(err)
	}
	res, err := Analyze(Options{DefinitionsPath: defsPath, ReportsDir: empty, TopK: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Findings) != 0 || res.Distinct != 0 {
		t.Errorf("empty reports produced %+v", res)
	}
}
