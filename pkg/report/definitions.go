package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMalformedDefinition is returned for definition lines without a tab.
var ErrMalformedDefinition = errors.New("report: malformed definition")

// Definitions maps tags such as "wcag143" to the title of the success
// criterion they refer to, in file order.
type Definitions struct {
	keys   []string
	titles map[string]string
}

// LoadDefinitionsFile reads a definitions TSV from path.
func LoadDefinitionsFile(path string) (*Definitions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions %s: %w", path, err)
	}
	defer file.Close()
	return LoadDefinitions(file)
}

// LoadDefinitions parses lines of the form
//
//	1.4.3<TAB>Contrast (Minimum)
//
// The criterion number loses its dots and gains a "wcag" prefix, so the line
// above defines "wcag143". Blank lines are skipped; a later line for the same
// tag replaces the title but keeps the original position.
func LoadDefinitions(r io.Reader) (*Definitions, error) {
	defs := &Definitions{titles: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		number, title, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing tab", ErrMalformedDefinition, lineNo)
		}
		number = strings.TrimSpace(number)
		if number == "" {
			return nil, fmt.Errorf("%w: line %d: empty criterion", ErrMalformedDefinition, lineNo)
		}
		defs.set(TagFor(number), title)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	return defs, nil
}

// TagFor turns a criterion number like "1.4.3" into its tag "wcag143".
func TagFor(criterion string) string {
	return "wcag" + strings.ReplaceAll(criterion, ".", "")
}

func (d *Definitions) set(tag, title string) {
	if _, exists := d.titles[tag]; !exists {
		d.keys = append(d.keys, tag)
	}
	d.titles[tag] = title
}

// Title returns the title defined for tag.
func (d *Definitions) Title(tag string) (string, bool) {
	if d == nil {
		return "", false
	}
	title, ok := d.titles[tag]
	return title, ok
}

// Keys returns the defined tags in file order.
func (d *Definitions) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// Len returns the number of defined tags.
func (d *Definitions) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}
