package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/harrison/proofrunner/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultScripts is the ordered list of SAW scripts verified on every run.
var DefaultScripts = []string{
	"mlkem_ntt.saw",
	"mlkem_intt.saw",
	"mlkem_poly.saw",
	"mlkem_compress.saw",
	"mlkem_encode_decode.saw",
	"mlkem_parse.saw",
	"mlkem_genmatrix.saw",
}

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool

	// DBPath is the path to the history database
	DBPath string
}

// Config represents proofrunner configuration options
type Config struct {
	// WorkDir is the directory holding the scripts; the verifier runs inside it
	WorkDir string

	// Verifier is the verifier executable (name on PATH or path)
	Verifier string

	// VerifierArgs are passed to the verifier before the script name
	VerifierArgs []string

	// Scripts is the ordered list of script file names to verify
	Scripts []string

	// SuccessMarkers are the stdout substrings that mark a proof as verified
	SuccessMarkers []string

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string

	// LogDir is the directory where run logs will be written
	LogDir string

	// StateDir holds the run lock and other per-workspace state
	StateDir string

	// ReportPath, when set, receives a Markdown or HTML report after each run
	ReportPath string

	// History contains run history configuration
	History HistoryConfig
}

// DefaultConfig returns a Config carrying the built-in verification set
func DefaultConfig() *Config {
	return &Config{
		WorkDir:        "saw",
		Verifier:       "saw",
		Scripts:        append([]string(nil), DefaultScripts...),
		SuccessMarkers: []string{"Proof succeeded!", "Verified"},
		LogLevel:       "info",
		LogDir:         filepath.Join(".proofrunner", "logs"),
		StateDir:       ".proofrunner",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(".proofrunner", "history.db"),
		},
	}
}

// fileConfig mirrors Config with optional fields so that only keys present
// in the file override the defaults.
type fileConfig struct {
	WorkDir        *string  `yaml:"work_dir" toml:"work_dir"`
	Verifier       *string  `yaml:"verifier" toml:"verifier"`
	VerifierArgs   []string `yaml:"verifier_args" toml:"verifier_args"`
	Scripts        []string `yaml:"scripts" toml:"scripts"`
	SuccessMarkers []string `yaml:"success_markers" toml:"success_markers"`
	LogLevel       *string  `yaml:"log_level" toml:"log_level"`
	LogDir         *string  `yaml:"log_dir" toml:"log_dir"`
	StateDir       *string  `yaml:"state_dir" toml:"state_dir"`
	ReportPath     *string  `yaml:"report" toml:"report"`
	History        *struct {
		Enabled *bool   `yaml:"enabled" toml:"enabled"`
		DBPath  *string `yaml:"db_path" toml:"db_path"`
	} `yaml:"history" toml:"history"`
}

// LoadConfig loads configuration from the specified file path
// The format is chosen by extension: .toml uses TOML, anything else YAML
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	raw.applyTo(cfg)
	return cfg, nil
}

// applyTo overrides cfg with every value present in the file
func (f *fileConfig) applyTo(cfg *Config) {
	if f.WorkDir != nil {
		cfg.WorkDir = *f.WorkDir
	}
	if f.Verifier != nil {
		cfg.Verifier = *f.Verifier
	}
	if f.VerifierArgs != nil {
		cfg.VerifierArgs = f.VerifierArgs
	}
	if f.Scripts != nil {
		cfg.Scripts = f.Scripts
	}
	if f.SuccessMarkers != nil {
		cfg.SuccessMarkers = f.SuccessMarkers
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		cfg.LogDir = *f.LogDir
	}
	if f.StateDir != nil {
		cfg.StateDir = *f.StateDir
	}
	if f.ReportPath != nil {
		cfg.ReportPath = *f.ReportPath
	}
	if f.History != nil {
		if f.History.Enabled != nil {
			cfg.History.Enabled = *f.History.Enabled
		}
		if f.History.DBPath != nil {
			cfg.History.DBPath = *f.History.DBPath
		}
	}
}

// LoadConfigFromDir loads .proofrunner/config.yaml (or config.toml) from dir
// If neither file exists, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(dir, ".proofrunner", name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(workDir, verifier, logLevel, logDir, reportPath *string, noHistory *bool) {
	if workDir != nil {
		c.WorkDir = *workDir
	}
	if verifier != nil {
		c.Verifier = *verifier
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if reportPath != nil {
		c.ReportPath = *reportPath
	}
	if noHistory != nil && *noHistory {
		c.History.Enabled = false
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WorkDir) == "" {
		return fmt.Errorf("work_dir cannot be empty")
	}
	if strings.TrimSpace(c.Verifier) == "" {
		return fmt.Errorf("verifier cannot be empty")
	}

	if len(c.Scripts) == 0 {
		return fmt.Errorf("scripts cannot be empty")
	}
	seen := make(map[string]bool, len(c.Scripts))
	for _, s := range c.Scripts {
		if err := models.Script(s).Validate(); err != nil {
			return fmt.Errorf("invalid scripts entry: %w", err)
		}
		if seen[s] {
			return fmt.Errorf("duplicate script %q", s)
		}
		seen[s] = true
	}

	hasMarker := false
	for _, m := range c.SuccessMarkers {
		if m != "" {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return fmt.Errorf("success_markers must contain at least one non-empty marker")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("state_dir cannot be empty")
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// LockPath returns the path of the run lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDir, "run.lock")
}
