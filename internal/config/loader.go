package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a podium configuration from the given YAML file
// path. After parsing, it applies defaults and environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a config in standard locations and loads the
// first one found. Search order: ./podium.yaml, ~/.podium/config.yaml
func LoadDefault() (*Config, error) {
	candidates := []string{"podium.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".podium", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no podium config found (searched: %v)", candidates)
}

// applyDefaults fills fields the file left unset.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	p := &cfg.Pipeline
	if p.Workers == 0 {
		p.Workers = 4
	}
	if p.StageTimeout == "" {
		p.StageTimeout = "90s"
	}
	if p.TransientRetries == 0 {
		p.TransientRetries = 2
	}
	if p.Remediation.SpeechThreshold == 0 {
		p.Remediation.SpeechThreshold = 3
	}
	if p.Remediation.StructureThreshold == 0 {
		p.Remediation.StructureThreshold = 3
	}
	if cfg.Notify.Port == 0 {
		cfg.Notify.Port = 465
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnv resolves *_env indirections so secrets never live in the file.
func applyEnv(cfg *Config) {
	if cfg.Database.DSNEnv != "" {
		if v := os.Getenv(cfg.Database.DSNEnv); v != "" {
			cfg.Database.DSN = v
		}
	}
}

// ParsedStageTimeout parses the configured per-stage timeout, falling
// back to 90s when the value does not parse.
func (p Pipeline) ParsedStageTimeout() time.Duration {
	d, err := time.ParseDuration(p.StageTimeout)
	if err != nil || d <= 0 {
		return 90 * time.Second
	}
	return d
}
