package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the application paths derived from the executable location
type Paths struct {
	ExecutableDir   string
	LogsDir         string
	ExportsDir      string
	DataFile        string
	CredentialsFile string
}

// GetPaths returns the application paths relative to the executable location.
// Paths are always relative to the executable directory, never the current
// working directory.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return PathsFor(filepath.Dir(exe)), nil
}

// PathsFor builds the path layout rooted at dir:
//
//	dir/
//	  ├── Sentiment_Analysis_Production.xlsx
//	  ├── credentials.json
//	  ├── exports/
//	  └── logs/
func PathsFor(dir string) *Paths {
	return &Paths{
		ExecutableDir:   dir,
		LogsDir:         filepath.Join(dir, DefaultLogsDir),
		ExportsDir:      filepath.Join(dir, DefaultExportsDir),
		DataFile:        filepath.Join(dir, DefaultDataFile),
		CredentialsFile: filepath.Join(dir, DefaultCredentialsFile),
	}
}

// EnsureDirectories creates the writable directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.LogsDir, p.ExportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Resolved application paths",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("data_file", p.DataFile),
		slog.Bool("data_file_exists", FileExists(p.DataFile)))
}

// PathsFromConfig returns the paths as resolved by cfg
func PathsFromConfig(cfg *Config) *Paths {
	return &Paths{
		ExecutableDir:   cfg.Paths.ExecutableDir,
		LogsDir:         cfg.Paths.LogsDir,
		ExportsDir:      cfg.Paths.ExportsDir,
		DataFile:        cfg.Data.File,
		CredentialsFile: cfg.Sheets.CredentialsFile,
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
