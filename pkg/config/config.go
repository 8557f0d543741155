/*
Package config manages the TOML config for wordrank.

A missing file is created with defaults. A file that fails to decode as a
whole is parsed section by section so that valid keys still apply:

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
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/minpq"
	"github.com/bastiangx/wordrank/pkg/report"
	"github.com/charmbracelet/log"
)

// FileName is the config file name inside the config dir.
const FileName = "wordrank.toml"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds the entire config structure
type Config struct {
	Rank   RankConfig   `toml:"rank"`
	Report ReportConfig `toml:"report"`
	Server ServerConfig `toml:"server"`
}

// RankConfig selects the queue backend and result sizes.
type RankConfig struct {
	Backend string `toml:"backend"`
	TopK    int    `toml:"top_k"`
	MaxK    int    `toml:"max_k"`
}

// ReportConfig points at the definitions and reports used by the report mode.
type ReportConfig struct {
	Definitions string `toml:"definitions"`
	Reports     string `toml:"reports"`
	TagPattern  string `toml:"tag_pattern"`
	Dedupe      bool   `toml:"dedupe"`
}

// ServerConfig has server request limits.
type ServerConfig struct {
	MaxBatch  int `toml:"max_batch"`
	MaxPrefix int `toml:"max_prefix"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Rank: RankConfig{
			Backend: minpq.KindHeap.String(),
			TopK:    3,
			MaxK:    64,
		},
		Report: ReportConfig{
			Definitions: filepath.Join("data", utils.DefinitionsFile),
			Reports:     filepath.Join("data", utils.ReportsDir),
			TagPattern:  report.DefaultTagPattern,
			Dedupe:      true,
		},
		Server: ServerConfig{
			MaxBatch:  1024,
			MaxPrefix: 60,
		},
	}
}

// Validate checks every value a component would otherwise reject at use time.
func (c *Config) Validate() error {
	if _, err := minpq.ParseKind(c.Rank.Backend); err != nil {
		return fmt.Errorf("%w: rank.backend: %v", ErrInvalidConfig, err)
	}
	if c.Rank.TopK < 1 {
		return fmt.Errorf("%w: rank.top_k must be at least 1, got %d", ErrInvalidConfig, c.Rank.TopK)
	}
	if c.Rank.MaxK < c.Rank.TopK {
		return fmt.Errorf("%w: rank.max_k (%d) is below rank.top_k (%d)", ErrInvalidConfig, c.Rank.MaxK, c.Rank.TopK)
	}
	if c.Report.TagPattern != "" {
		if _, err := regexp.Compile(c.Report.TagPattern); err != nil {
			return fmt.Errorf("%w: report.tag_pattern: %v", ErrInvalidConfig, err)
		}
	}
	if c.Server.MaxBatch < 1 {
		return fmt.Errorf("%w: server.max_batch must be at least 1, got %d", ErrInvalidConfig, c.Server.MaxBatch)
	}
	if c.Server.MaxPrefix < 1 {
		return fmt.Errorf("%w: server.max_prefix must be at least 1, got %d", ErrInvalidConfig, c.Server.MaxPrefix)
	}
	return nil
}

// Backend returns the parsed rank.backend.
func (c *Config) Backend() minpq.Kind {
	kind, err := minpq.ParseKind(c.Rank.Backend)
	if err != nil {
		return minpq.KindHeap
	}
	return kind
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordrank
// 2. ~/Library/Application Support/wordrank (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primary := filepath.Join(homeDir, ".config", utils.AppName)
	if utils.CheckDirStatus(primary).Writable {
		return primary, nil
	}
	macOS := filepath.Join(homeDir, "Library", "Application Support", utils.AppName)
	if utils.CheckDirStatus(macOS).Writable {
		return macOS, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for wordrank.toml
func GetDefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/wordrank/wordrank.toml
// 3. Builtin defaults
//
// The returned path is empty when builtin defaults are used.
func LoadConfigWithPriority(customPath string) (*Config, string, error) {
	if customPath != "" {
		if _, statErr := os.Stat(customPath); statErr == nil {
			cfg, err := LoadConfig(customPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customPath)
				return cfg, customPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	cfg, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load config at default path %s: %v. Using built-in defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return cfg, defaultPath, nil
}

// InitConfig loads path, writing a default config there first if missing.
// Errors are returned only for a file that exists but holds invalid values.
func InitConfig(path string) (*Config, error) {
	dir := filepath.Dir(path)
	if err := utils.EnsureDir(dir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", dir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(path) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, path); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", path, err)
			return cfg, nil
		}
		log.Debugf("Created default config file at: %s", path)
		return cfg, nil
	}
	return LoadConfig(path)
}

// LoadConfig loads from a TOML file. Keys absent from the file keep their
// defaults; a file that does not decode is recovered per section.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := utils.LoadTOMLFile(path, cfg); err != nil {
		cfg = tryPartialParse(path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// tryPartialParse keeps every well-typed key it can find.
func tryPartialParse(path string) *Config {
	cfg := DefaultConfig()
	raw, err := utils.ParseTOMLWithRecovery(path)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", path, err)
		return cfg
	}

	if section, ok := utils.ExtractSection(raw, "rank"); ok {
		extractRankConfig(section, &cfg.Rank)
	}
	if section, ok := utils.ExtractSection(raw, "report"); ok {
		extractReportConfig(section, &cfg.Report)
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &cfg.Server)
	}
	return cfg
}

func extractRankConfig(data map[string]any, rank *RankConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		rank.Backend = val
	}
	if val, ok := utils.ExtractInt64(data, "top_k"); ok {
		rank.TopK = val
	}
	if val, ok := utils.ExtractInt64(data, "max_k"); ok {
		rank.MaxK = val
	}
}

func extractReportConfig(data map[string]any, rep *ReportConfig) {
	if val, ok := utils.ExtractString(data, "definitions"); ok {
		rep.Definitions = val
	}
	if val, ok := utils.ExtractString(data, "reports"); ok {
		rep.Reports = val
	}
	if val, ok := utils.ExtractString(data, "tag_pattern"); ok {
		rep.TagPattern = val
	}
	if val, ok := utils.ExtractBool(data, "dedupe"); ok {
		rep.Dedupe = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_batch"); ok {
		server.MaxBatch = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
}

// GetActiveConfigPath returns the absolute path of the loaded config file,
// or the default location when builtin defaults are in use.
func GetActiveConfigPath(path string) string {
	if path == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(path)
}

// SaveConfig saves into a TOML file
func SaveConfig(cfg *Config, path string) error {
	return utils.SaveTOMLFile(cfg, path)
}
