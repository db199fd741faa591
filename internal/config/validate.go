package config

import (
	"fmt"
	"time"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, ValidationError{Field: "server.port", Message: fmt.Sprintf("invalid port %d", cfg.Server.Port)})
	}
	if cfg.Database.DSN == "" && cfg.Database.DSNEnv == "" {
		errs = append(errs, ValidationError{Field: "database.dsn", Message: "dsn or dsn_env is required"})
	}

	p := cfg.Pipeline
	if p.Workers < 1 {
		errs = append(errs, ValidationError{Field: "pipeline.workers", Message: "must be at least 1"})
	}
	if _, err := time.ParseDuration(p.StageTimeout); err != nil {
		errs = append(errs, ValidationError{Field: "pipeline.stage_timeout", Message: fmt.Sprintf("invalid duration %q", p.StageTimeout)})
	}
	if p.TransientRetries < 0 {
		errs = append(errs, ValidationError{Field: "pipeline.transient_retries", Message: "must not be negative"})
	}
	if len(p.Personas) == 0 {
		errs = append(errs, ValidationError{Field: "pipeline.personas", Message: "at least one persona is required"})
	}
	seen := make(map[string]bool)
	for i, persona := range p.Personas {
		if persona == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("pipeline.personas[%d]", i),
				Message: "must not be empty",
			})
			continue
		}
		if seen[persona] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("pipeline.personas[%d]", i),
				Message: fmt.Sprintf("duplicate persona %q", persona),
			})
		}
		seen[persona] = true
	}

	for _, t := range []struct {
		field string
		value int
	}{
		{"pipeline.remediation.speech_threshold", p.Remediation.SpeechThreshold},
		{"pipeline.remediation.structure_threshold", p.Remediation.StructureThreshold},
	} {
		if t.value < 1 || t.value > 5 {
			errs = append(errs, ValidationError{
				Field:   t.field,
				Message: fmt.Sprintf("must be between 1 and 5, got %d", t.value),
			})
		}
	}

	if cfg.Collaborators.Judge.Endpoint == "" {
		errs = append(errs, ValidationError{Field: "collaborators.judge.endpoint", Message: "is required"})
	}
	if cfg.Collaborators.Judge.Model == "" {
		errs = append(errs, ValidationError{Field: "collaborators.judge.model", Message: "is required"})
	}
	if cfg.Collaborators.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "collaborators.rate_limit", Message: "must not be negative"})
	}

	return errs
}
