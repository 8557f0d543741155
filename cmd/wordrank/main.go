// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordrank report analyzer, ranking server and CLI [DBG].

Note: This is a BETA release. APIs and functionality may rapidly change.

wordrank counts tags and ranks them by frequency with an indexed min-priority
queue. By default it scans a directory of accessibility reports for WCAG
success criterion tags and prints the titles of the most commonly reported
ones.

# Usage

Print the three most reported criteria from ./data:

	wordrank

Use another data directory, show ten results and enable debug logging:

	wordrank -data /path/to/data -k 10 -d

The data directory holds the definitions file wcag.tsv, one
"<criterion>\t<title>" pair per line, and a reports/ directory whose files are
searched for tags such as wcag143. Either can be given directly with -defs and
-reports.

Run the msgpack IPC server, or the interactive CLI:

	wordrank -s
	wordrank -c

# Configuration

Defaults come from a TOML file, created on first run in the user config dir
or given with -config:

	[rank]
	backend = "heap"
	top_k = 3
	max_k = 64

	[report]
	definitions = "data/wcag.tsv"
	reports = "data/reports"
	tag_pattern = "wcag\\d{3,4}"
	dedupe = true

	[server]
	max_batch = 1024
	max_prefix = 60

Flags override the file.

# Command Line Flags

	-config string
	    Path to a config file
	-data string
	    Directory holding wcag.tsv and reports/
	-defs string
	    Definitions file, overrides -data
	-reports string
	    Reports directory, overrides -data
	-k int
	    Number of results
	-backend string
	    Priority queue backend: heap or array
	-d  Enable debug mode with detailed logging
	-c  Run CLI -- useful for testing and debugging
	-s  Run the msgpack IPC server on stdin/stdout
	-no-filter
	    Count every CLI token, even numbers and symbols
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/wordrank/internal/cli"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/minpq"
	"github.com/bastiangx/wordrank/pkg/rank"
	"github.com/bastiangx/wordrank/pkg/report"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	gh      = "https://github.com/bastiangx/wordrank"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between config, report, server and CLI.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a config file")
	dataDir := flag.String("data", "", "Directory holding wcag.tsv and reports/")
	defsPath := flag.String("defs", "", "Definitions file, overrides -data")
	reportsDir := flag.String("reports", "", "Reports directory, overrides -data")
	topK := flag.Int("k", 0, "Number of results (default from config)")
	backend := flag.String("backend", "", "Priority queue backend: heap or array (default from config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	serverMode := flag.Bool("s", false, "Run the msgpack IPC server on stdin/stdout")
	noFilter := flag.Bool("no-filter", false, "Count every CLI token, even numbers and symbols")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, loadedFrom, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(loadedFrom))

	if *dataDir != "" {
		applyDataDir(cfg, *dataDir)
	}
	if *defsPath != "" {
		cfg.Report.Definitions = *defsPath
	}
	if *reportsDir != "" {
		cfg.Report.Reports = *reportsDir
	}
	if *topK > 0 {
		cfg.Rank.TopK = *topK
		cfg.Rank.MaxK = max(cfg.Rank.MaxK, *topK)
	}
	if *backend != "" {
		cfg.Rank.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	switch {
	case *cliMode:
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "backend", cfg.Rank.Backend, "k", cfg.Rank.TopK, "noFilter", *noFilter)
		handler := cli.NewInputHandler(rank.New(cfg.Backend()), cfg.Rank.TopK, cfg.Rank.MaxK, *noFilter)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	case *serverMode:
		log.Debug("spawning IPC")
		srv := server.NewServer(rank.New(cfg.Backend()), cfg)
		showStartupInfo(cfg.Backend())
		if err := srv.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	default:
		runReport(cfg)
	}
}

// applyDataDir points the definitions and reports at dir, resolved the way
// the path resolver finds data next to the binary.
func applyDataDir(cfg *config.Config, dir string) {
	resolved := dir
	if pr, err := utils.NewPathResolver(); err == nil {
		resolved = pr.GetDataDir(dir)
	} else {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}
	log.Debugf("Using data dir at: %s", resolved)
	cfg.Report.Definitions = filepath.Join(resolved, utils.DefinitionsFile)
	cfg.Report.Reports = filepath.Join(resolved, utils.ReportsDir)
}

// runReport prints the title of each of the most reported criteria, one per
// line, falling back to the tag when a criterion has no definition.
func runReport(cfg *config.Config) {
	res, err := report.Analyze(report.Options{
		DefinitionsPath: cfg.Report.Definitions,
		ReportsDir:      cfg.Report.Reports,
		TagPattern:      cfg.Report.TagPattern,
		Dedupe:          cfg.Report.Dedupe,
		TopK:            cfg.Rank.TopK,
		Backend:         cfg.Backend(),
	})
	if err != nil {
		log.Fatalf("Report failed: %v", err)
	}

	log.Debug("Scan done",
		"files", res.Stats.Files,
		"duplicates", res.Stats.Duplicates,
		"unreadable", res.Stats.Unreadable,
		"tags", res.Stats.Tags,
		"distinct", res.Distinct)

	if len(res.Findings) == 0 {
		log.Warnf("No tags found in %s", cfg.Report.Reports)
		return
	}
	for _, f := range res.Findings {
		title := f.Title
		if title == "" {
			title = f.Tag
		}
		fmt.Println(title)
		log.Debug("", "tag", f.Tag, "count", utils.FormatWithCommas(f.Count))
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ wordrank ] Ranks what gets reported most!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info on stderr; stdout carries msgpack.
func showStartupInfo(kind minpq.Kind) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " wordrank ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("backend: ( %s )", kind)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
