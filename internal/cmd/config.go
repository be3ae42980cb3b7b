package cmd

import (
	"fmt"

	"github.com/harrison/proofrunner/internal/config"
	"github.com/harrison/proofrunner/internal/models"
	"github.com/harrison/proofrunner/internal/verifier"
	"github.com/spf13/cobra"
)

// addConfigFlags registers the flags shared by every command
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .proofrunner/config.yaml or config.toml)")
	cmd.Flags().String("dir", "", "Directory holding the scripts (overrides config)")
	cmd.Flags().String("verifier", "", "Verifier executable (overrides config)")
}

// loadConfig loads the config file and applies the shared flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var workDirPtr, verifierPtr *string
	if cmd.Flags().Changed("dir") {
		v, _ := cmd.Flags().GetString("dir")
		workDirPtr = &v
	}
	if cmd.Flags().Changed("verifier") {
		v, _ := cmd.Flags().GetString("verifier")
		verifierPtr = &v
	}
	cfg.MergeWithFlags(workDirPtr, verifierPtr, nil, nil, nil, nil)

	return cfg, nil
}

// runnerOptions converts the configuration into verifier options
func runnerOptions(cfg *config.Config) verifier.Options {
	return verifier.Options{
		WorkDir:  cfg.WorkDir,
		Verifier: cfg.Verifier,
		Scripts:  models.ScriptsFromStrings(cfg.Scripts),
		Markers:  cfg.SuccessMarkers,
	}
}
