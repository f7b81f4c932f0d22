package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	ConfigDir string
	DataDir   string
	CacheDir  string
}

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("STRINGNET_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "stringnet"),
		DataDir:   getDir("STRINGNET_DATA_HOME", "XDG_DATA_HOME", ".local/share", "stringnet"),
		CacheDir:  getDir("STRINGNET_CACHE_HOME", "XDG_CACHE_HOME", ".cache", "stringnet"),
	}
}

func getDir(appEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check app-specific env
	if dir := os.Getenv(appEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetDatabasePath returns the path to the interaction store
func GetDatabasePath() string {
	if path := os.Getenv("STRINGNET_DB_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "string.db")
}

// GetDownloadsPath returns the path to the downloads directory
func GetDownloadsPath() string {
	return filepath.Join(GetPaths().CacheDir, "downloads")
}

// EnsureDirectories creates all necessary directories
func EnsureDirectories() error {
	paths := GetPaths()
	dirs := []string{
		paths.ConfigDir,
		paths.DataDir,
		paths.CacheDir,
		filepath.Join(paths.CacheDir, "downloads"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
