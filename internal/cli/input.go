// Package cli reads tags and commands from a terminal for interactive ranking.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/rank"
	"github.com/charmbracelet/log"
)

const help = `plain lines are observed as tags; commands:
  :top [k]           most frequent tags
  :prefix <p> [k]    most frequent tags starting with p
  :count <tag>       occurrences of tag
  :drain [k]         remove and print the most frequent tags
  :stats             distinct tags and observations
  :reset             forget everything
  :help              this text`

// InputHandler feeds lines from its input into a Ranker and prints rankings.
type InputHandler struct {
	ranker   *rank.Ranker
	in       io.Reader
	out      *log.Logger
	topK     int
	maxK     int
	noFilter bool
}

// NewInputHandler reads from stdin and prints to stderr.
func NewInputHandler(ranker *rank.Ranker, topK, maxK int, noFilter bool) *InputHandler {
	out := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	return NewInputHandlerWithIO(ranker, topK, maxK, noFilter, os.Stdin, out)
}

// NewInputHandlerWithIO is NewInputHandler with explicit input and output.
func NewInputHandlerWithIO(ranker *rank.Ranker, topK, maxK int, noFilter bool, in io.Reader, out *log.Logger) *InputHandler {
	return &InputHandler{
		ranker:   ranker,
		in:       in,
		out:      out,
		topK:     topK,
		maxK:     maxK,
		noFilter: noFilter,
	}
}

// Start runs the loop until the input ends.
func (h *InputHandler) Start() error {
	h.out.Print("wordrank CLI [BETA]")
	h.out.Print("type tags and press Enter to count them, :help for commands (Ctrl+C to exit):")

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(strings.Fields(line[1:]))
			continue
		}
		h.handleTags(line)
	}
	return scanner.Err()
}

func (h *InputHandler) handleTags(line string) {
	observed, skipped := 0, 0
	for _, tag := range utils.SplitTags(line) {
		if !h.noFilter && !utils.IsValidTag(tag) {
			log.Debugf("Filtered out tag: '%s'", tag)
			skipped++
			continue
		}
		if err := h.ranker.Observe(tag); err != nil {
			h.out.Errorf("Failed to observe '%s': %v", tag, err)
			continue
		}
		observed++
	}
	if skipped > 0 {
		h.out.Printf("Observed %d tags, skipped %d", observed, skipped)
		return
	}
	h.out.Printf("Observed %d tags", observed)
}

func (h *InputHandler) handleCommand(args []string) {
	if len(args) == 0 {
		h.out.Print(help)
		return
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "top":
		k, err := h.parseK(args, 0)
		if err != nil {
			h.out.Error(err)
			return
		}
		h.printRanked("", k, false)
	case "prefix":
		if len(args) == 0 {
			h.out.Error("usage: :prefix <p> [k]")
			return
		}
		k, err := h.parseK(args, 1)
		if err != nil {
			h.out.Error(err)
			return
		}
		h.printRanked(utils.NormalizeTag(args[0]), k, false)
	case "drain":
		k, err := h.parseK(args, 0)
		if err != nil {
			h.out.Error(err)
			return
		}
		h.printRanked("", k, true)
	case "count":
		if len(args) != 1 {
			h.out.Error("usage: :count <tag>")
			return
		}
		tag := utils.NormalizeTag(args[0])
		h.out.Printf("%s: %s", tag, utils.FormatWithCommas(h.ranker.Count(tag)))
	case "stats":
		h.out.Printf("%s distinct tags, %s observations, backend %s",
			utils.FormatWithCommas(h.ranker.Len()),
			utils.FormatWithCommas(h.ranker.Observations()),
			h.ranker.Kind())
	case "reset":
		h.ranker.Reset()
		h.out.Print("Forgot all tags")
	case "help":
		h.out.Print(help)
	default:
		h.out.Errorf("Unknown command: :%s", cmd)
	}
}

// parseK reads an optional k at args[i], defaulting to topK and clamping to maxK.
func (h *InputHandler) parseK(args []string, i int) (int, error) {
	if len(args) <= i {
		return h.topK, nil
	}
	k, err := strconv.Atoi(args[i])
	if err != nil || k < 1 {
		return 0, fmt.Errorf("invalid k: %q", args[i])
	}
	if h.maxK > 0 && k > h.maxK {
		log.Debugf("Clamping k=%d to %d", k, h.maxK)
		k = h.maxK
	}
	return k, nil
}

func (h *InputHandler) printRanked(prefix string, k int, drain bool) {
	start := time.Now()
	var (
		entries []rank.Entry
		err     error
	)
	if drain {
		entries, err = h.ranker.Drain(k)
	} else {
		entries, err = h.ranker.TopPrefix(prefix, k)
	}
	if err != nil {
		h.out.Errorf("Ranking failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for k=%d prefix='%s'", time.Since(start), k, prefix)

	if len(entries) == 0 {
		if prefix != "" {
			h.out.Warnf("No tags found for prefix: '%s'", prefix)
		} else {
			h.out.Warn("No tags observed yet")
		}
		return
	}
	for i, e := range entries {
		clTag := fmt.Sprintf("\033[38;5;75m%s\033[0m", e.Item)
		h.out.Printf("%2d. %-40s (count: %8s)", i+1, clTag, utils.FormatWithCommas(e.Count))
	}
}
