package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config directory.
const AppName = "wordrank"

// DefinitionsFile is the definitions file expected inside a data dir.
const DefinitionsFile = "wcag.tsv"

// ReportsDir is the reports directory expected inside a data dir.
const ReportsDir = "reports"

// PathResolver finds the data dir relative to the working directory, the
// binary and the user's config dir.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver locates the running executable and the user config dir.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     userConfigDir(homeDir),
	}
	log.Debugf("PathResolver: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

func userConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "darwin":
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, "."+AppName)
	}
}

// DataDirCandidates lists where GetDataDir looks for dir, in order.
func (pr *PathResolver) DataDirCandidates(dir string) []string {
	var candidates []string
	if filepath.IsAbs(dir) {
		candidates = append(candidates, dir)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, dir))
	}
	return append(candidates,
		filepath.Join(pr.executableDir, dir),
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)
}

// GetDataDir returns the first candidate holding a definitions file or a
// reports dir. When none does, the working-directory candidate is returned
// so that later errors name a sensible path.
func (pr *PathResolver) GetDataDir(dir string) string {
	candidates := pr.DataDirCandidates(dir)
	for _, path := range candidates {
		if IsDataDir(path) {
			log.Debugf("Found data directory: %s", path)
			return path
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Clean(dir)
}

// IsDataDir reports whether path holds DefinitionsFile or ReportsDir.
func IsDataDir(path string) bool {
	if !IsDir(path) {
		return false
	}
	return FileExists(filepath.Join(path, DefinitionsFile)) || IsDir(filepath.Join(path, ReportsDir))
}
