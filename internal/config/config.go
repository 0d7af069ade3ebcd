package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"shuttle/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DestinationDir pins the destination root. Empty means auto-detect the
	// first removable drive at runtime.
	DestinationDir string `toml:"destination_dir"`
	LogDir         string `toml:"log_dir"`
}

// Media lists the file extensions shuttle treats as work items.
type Media struct {
	VideoExtensions   []string `toml:"video_extensions"`
	ArchiveExtensions []string `toml:"archive_extensions"`
}

// Library contains configuration for the destination directory structure.
type Library struct {
	MoviesDir string `toml:"movies_dir"`
}

// Workflow contains worker timing and retry policy.
type Workflow struct {
	QueuePollIntervalMS int `toml:"queue_poll_interval_ms"`
	RetryDelayMS        int `toml:"retry_delay_ms"`
	// MaxDestinationRetries caps requeues caused by an unavailable
	// destination. Zero keeps retrying forever.
	MaxDestinationRetries int `toml:"max_destination_retries"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shuttle.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Media         Media         `toml:"media"`
	Library       Library       `toml:"library"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shuttle/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DestinationDir = strings.TrimSpace(c.Paths.DestinationDir); c.Paths.DestinationDir != "" {
		if c.Paths.DestinationDir, err = expandPath(c.Paths.DestinationDir); err != nil {
			return err
		}
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}
	c.Media.VideoExtensions = normalizeExtensions(c.Media.VideoExtensions)
	c.Media.ArchiveExtensions = normalizeExtensions(c.Media.ArchiveExtensions)
	c.Library.MoviesDir = strings.TrimSpace(c.Library.MoviesDir)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// Validate checks invariants the rest of the system relies on. Failures
// carry the configuration marker so callers can classify them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("%w: log_dir must not be empty", services.ErrConfiguration)
	}
	if len(c.Media.VideoExtensions) == 0 {
		return fmt.Errorf("%w: video_extensions must not be empty", services.ErrConfiguration)
	}
	if c.Library.MoviesDir == "" {
		return fmt.Errorf("%w: movies_dir must not be empty", services.ErrConfiguration)
	}
	if c.Workflow.QueuePollIntervalMS <= 0 {
		return fmt.Errorf("%w: queue_poll_interval_ms must be positive", services.ErrConfiguration)
	}
	if c.Workflow.RetryDelayMS <= 0 {
		return fmt.Errorf("%w: retry_delay_ms must be positive", services.ErrConfiguration)
	}
	if c.Workflow.MaxDestinationRetries < 0 {
		return fmt.Errorf("%w: max_destination_retries must not be negative", services.ErrConfiguration)
	}
	return nil
}

// EnsureDirectories creates directories the daemon needs at startup.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// IsVideo reports whether path carries a recognized media extension.
func (c *Config) IsVideo(path string) bool {
	return hasExtension(path, c.Media.VideoExtensions)
}

// IsArchive reports whether path carries a recognized archive extension.
func (c *Config) IsArchive(path string) bool {
	return hasExtension(path, c.Media.ArchiveExtensions)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range exts {
		if ext == candidate {
			return true
		}
	}
	return false
}

// QueuePollInterval returns the idle poll interval as a duration.
func (c *Config) QueuePollInterval() time.Duration {
	return time.Duration(c.Workflow.QueuePollIntervalMS) * time.Millisecond
}

// RetryDelay returns the destination-unavailable backoff as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Workflow.RetryDelayMS) * time.Millisecond
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
