package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// starterConfig mirrors the viper keys serve reads.
type starterConfig struct {
	Server struct {
		Bind string `yaml:"bind"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
	} `yaml:"storage"`
	Recognizer struct {
		Endpoint        string  `yaml:"endpoint"`
		AppID           string  `yaml:"app_id"`
		Key             string  `yaml:"key"`
		DetailIntent    string  `yaml:"detail_intent"`
		DetailThreshold float64 `yaml:"detail_threshold"`
		CancelIntent    string  `yaml:"cancel_intent"`
		HelpIntent      string  `yaml:"help_intent"`
	} `yaml:"recognizer"`
	KB struct {
		Host        string `yaml:"host"`
		ID          string `yaml:"id"`
		EndpointKey string `yaml:"endpoint_key"`
	} `yaml:"kb"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = args[0]
			}
			dir = filepath.Clean(dir)

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			var cfg starterConfig
			cfg.Server.Port = 3978
			cfg.Storage.Backend = "memory"
			cfg.Storage.Dir = "./.state"
			cfg.Recognizer.DetailIntent = "beerPreference"
			cfg.Recognizer.DetailThreshold = 0.75
			cfg.Recognizer.CancelIntent = "Utilities_Cancel"
			cfg.Recognizer.HelpIntent = "Utilities_Help"
			cfg.Logging.Level = "info"
			cfg.Logging.Format = "text"

			body, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, body, 0o644); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", cfgPath)
			return nil
		},
	}
}
