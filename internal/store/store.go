package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kokistudios/assess/internal/taxonomy"
)

// TaxonomyConfig selects the taxonomy source.
type TaxonomyConfig struct {
	Path string `yaml:"path,omitempty"` // empty means the built-in taxonomy
}

// ExportConfig holds export settings.
type ExportConfig struct {
	RequireComplete bool   `yaml:"require_complete"`
	Placeholder     string `yaml:"placeholder"`
	Suffix          string `yaml:"suffix"`
	OutputDir       string `yaml:"output_dir"` // relative paths resolve under ASSESS_HOME
	ArchiveName     string `yaml:"archive_name"`
}

// SessionConfig holds session behavior settings.
type SessionConfig struct {
	Mode string `yaml:"mode"` // multi or single
}

// SelectionConfig holds export-selection settings.
type SelectionConfig struct {
	AutoEvict bool `yaml:"auto_evict"`
}

// Config holds assess configuration.
type Config struct {
	Version   string          `yaml:"version"`
	Taxonomy  TaxonomyConfig  `yaml:"taxonomy,omitempty"`
	Export    ExportConfig    `yaml:"export"`
	Session   SessionConfig   `yaml:"session"`
	Selection SelectionConfig `yaml:"selection"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		Export: ExportConfig{
			RequireComplete: true,
			Placeholder:     "-",
			Suffix:          ".md",
			OutputDir:       "exports",
			ArchiveName:     "assessment-reports.tar.gz",
		},
		Session: SessionConfig{
			Mode: "multi",
		},
	}
}

// ConfigKeys lists the keys accepted by SetConfigValue.
var ConfigKeys = []string{
	"taxonomy.path",
	"export.require_complete",
	"export.placeholder",
	"export.suffix",
	"export.output_dir",
	"export.archive_name",
	"session.mode",
	"selection.auto_evict",
}

// Store represents a loaded ASSESS_HOME.
type Store struct {
	Home   string
	Config Config
}

// Issue represents a health check finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Home returns the ASSESS_HOME path, respecting the ASSESS_HOME env var.
func Home() string {
	if h := os.Getenv("ASSESS_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".assess")
	}
	return filepath.Join(home, ".assess")
}

// Init creates the ASSESS_HOME directory structure.
func Init(home string, force bool) error {
	if _, err := os.Stat(home); err == nil && !force {
		return fmt.Errorf("ASSESS_HOME already exists at %s (use --force to reinitialize)", home)
	}

	cfg := DefaultConfig()
	for _, d := range []string{home, resolve(home, cfg.Export.OutputDir)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return writeConfig(home, cfg)
}

// Load reads and validates an existing ASSESS_HOME.
// Missing config fields are filled from defaults.
func Load(home string) (*Store, error) {
	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read ASSESS_HOME config at %s: %w", cfgPath, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config.yaml: %w", err)
	}
	return &Store{Home: home, Config: cfg}, nil
}

// LoadOrDefault loads home when it exists and falls back to defaults
// otherwise, so read-only commands work before `assess init`.
func LoadOrDefault(home string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); os.IsNotExist(err) {
		return &Store{Home: home, Config: DefaultConfig()}, nil
	}
	return Load(home)
}

func writeConfig(home string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SaveConfig writes the current config to config.yaml.
func (s *Store) SaveConfig() error {
	return writeConfig(s.Home, s.Config)
}

// SetConfigValue sets a config value by dot-path key (e.g. "export.suffix").
func (s *Store) SetConfigValue(key, value string) error {
	switch key {
	case "taxonomy.path":
		s.Config.Taxonomy.Path = value
	case "export.require_complete":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("export.require_complete must be true or false")
		}
		s.Config.Export.RequireComplete = b
	case "export.placeholder":
		s.Config.Export.Placeholder = value
	case "export.suffix":
		if value != "" && !strings.HasPrefix(value, ".") {
			return fmt.Errorf("export.suffix must start with a dot")
		}
		s.Config.Export.Suffix = value
	case "export.output_dir":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("export.output_dir must not be empty")
		}
		s.Config.Export.OutputDir = value
	case "export.archive_name":
		if value == "" || filepath.Base(value) != value {
			return fmt.Errorf("export.archive_name must be a plain file name")
		}
		s.Config.Export.ArchiveName = value
	case "session.mode":
		if value != "multi" && value != "single" {
			return fmt.Errorf("session.mode must be multi or single")
		}
		s.Config.Session.Mode = value
	case "selection.auto_evict":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("selection.auto_evict must be true or false")
		}
		s.Config.Selection.AutoEvict = b
	default:
		return fmt.Errorf("unknown config key: %s\nValid keys: %s", key, strings.Join(ConfigKeys, ", "))
	}
	return s.SaveConfig()
}

// Path resolves a path within ASSESS_HOME.
func (s *Store) Path(parts ...string) string {
	all := append([]string{s.Home}, parts...)
	return filepath.Join(all...)
}

// OutputDir is the export directory, resolved against ASSESS_HOME when
// relative.
func (s *Store) OutputDir() string {
	return resolve(s.Home, s.Config.Export.OutputDir)
}

// Taxonomy loads the configured taxonomy, or the built-in one when
// taxonomy.path is unset. Relative paths resolve under ASSESS_HOME.
func (s *Store) Taxonomy() (*taxonomy.Taxonomy, error) {
	if s.Config.Taxonomy.Path == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(resolve(s.Home, s.Config.Taxonomy.Path))
}

func resolve(home, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// CheckHealth verifies ASSESS_HOME structure integrity.
func CheckHealth(home string) []Issue {
	var issues []Issue

	if info, err := os.Stat(home); err != nil {
		return append(issues, Issue{"error", fmt.Sprintf("missing ASSESS_HOME: %s", home)})
	} else if !info.IsDir() {
		return append(issues, Issue{"error", fmt.Sprintf("expected directory but found file: %s", home)})
	}

	cfg := DefaultConfig()
	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		issues = append(issues, Issue{"error", fmt.Sprintf("cannot read config.yaml: %v", err)})
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		issues = append(issues, Issue{"error", fmt.Sprintf("config.yaml is not valid YAML: %v", err)})
		cfg = DefaultConfig()
	}

	out := resolve(home, cfg.Export.OutputDir)
	if info, err := os.Stat(out); err != nil {
		issues = append(issues, Issue{"warning", fmt.Sprintf("missing export directory: %s", out)})
	} else if !info.IsDir() {
		issues = append(issues, Issue{"error", fmt.Sprintf("expected directory but found file: %s", out)})
	}

	if cfg.Session.Mode != "multi" && cfg.Session.Mode != "single" {
		issues = append(issues, Issue{"error", fmt.Sprintf("session.mode %q is not multi or single", cfg.Session.Mode)})
	}

	if cfg.Taxonomy.Path != "" {
		if _, err := taxonomy.LoadFile(resolve(home, cfg.Taxonomy.Path)); err != nil {
			issues = append(issues, Issue{"error", fmt.Sprintf("taxonomy: %v", err)})
		}
	}

	return issues
}

// FixIssues attempts to repair simple issues in ASSESS_HOME.
func FixIssues(home string) []string {
	var fixed []string

	if err := os.MkdirAll(home, 0755); err != nil {
		return fixed
	}

	cfg := DefaultConfig()
	cfgPath := filepath.Join(home, "config.yaml")
	if data, err := os.ReadFile(cfgPath); err != nil {
		if writeConfig(home, cfg) == nil {
			fixed = append(fixed, "recreated missing config.yaml with defaults")
		}
	} else {
		_ = yaml.Unmarshal(data, &cfg)
	}

	out := resolve(home, cfg.Export.OutputDir)
	if _, err := os.Stat(out); err != nil {
		if err := os.MkdirAll(out, 0755); err == nil {
			fixed = append(fixed, fmt.Sprintf("recreated missing export directory: %s", cfg.Export.OutputDir))
		}
	}

	return fixed
}
