// Package config layers exporter configuration: defaults, then an
// optional YAML file, then environment variables. CLI flags override on
// top of the loaded result at the command layer.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TenantID     string `yaml:"tenantId"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	GraphBaseURL string `yaml:"graphBaseUrl"`
	OutputDir    string `yaml:"outputDir"`
	Select       string `yaml:"select"`
	ObsBuffer    int    `yaml:"obsBuffer"`
}

// Load builds the effective configuration. path may be empty; a missing
// file at an explicit path is an error, per-field env vars win over file
// values.
func Load(path string) (Config, error) {
	cfg := Config{
		GraphBaseURL: "https://graph.microsoft.com/v1.0",
		OutputDir:    ".",
		ObsBuffer:    4096,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.TenantID = getenv("INTUNE_TENANT_ID", cfg.TenantID)
	cfg.ClientID = getenv("INTUNE_CLIENT_ID", cfg.ClientID)
	cfg.ClientSecret = getenv("INTUNE_CLIENT_SECRET", cfg.ClientSecret)
	cfg.GraphBaseURL = getenv("INTUNE_GRAPH_BASE_URL", cfg.GraphBaseURL)
	cfg.OutputDir = getenv("EXPORT_OUTPUT_DIR", cfg.OutputDir)
	cfg.Select = getenv("EXPORT_SELECT", cfg.Select)
	cfg.ObsBuffer = getenvInt("EXPORT_OBS_BUFFER", cfg.ObsBuffer, 1)

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}
