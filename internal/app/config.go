// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/specialistvlad/blockflow/internal/executor"
	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath string   // workflow document
	BlockPaths   []string // dynamic block documents, files or directories
	InputsPath   string   // runtime parameters, JSON or YAML
	OutputPath   string   // empty means the app's output writer

	LogFormat       string
	LogLevel        string
	LogFile         string
	HealthcheckPort int

	MaxConcurrentSteps int
	StepTimeout        time.Duration
	ExecutionMode      string
	RemoteURL          string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.MaxConcurrentSteps < 1 {
		return nil, fmt.Errorf("max concurrent steps must be at least 1, got %d", cfg.MaxConcurrentSteps)
	}
	if cfg.StepTimeout < 0 {
		return nil, errors.New("step timeout must not be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	mode, err := executor.ParseMode(cfg.ExecutionMode)
	if err != nil {
		return nil, err
	}
	if mode == executor.ModeRemote && cfg.RemoteURL == "" {
		return nil, errors.New("remote execution mode requires a remote URL")
	}
	cfg.ExecutionMode = string(mode)
	return &cfg, nil
}

// FileConfig is the YAML configuration file. Unset fields leave the
// corresponding setting alone.
type FileConfig struct {
	Blocks             []string `yaml:"blocks"`
	LogFormat          string   `yaml:"log_format"`
	LogLevel           string   `yaml:"log_level"`
	LogFile            string   `yaml:"log_file"`
	HealthcheckPort    *int     `yaml:"healthcheck_port"`
	MaxConcurrentSteps *int     `yaml:"max_concurrent_steps"`
	StepTimeout        string   `yaml:"step_timeout"`
	ExecutionMode      string   `yaml:"execution_mode"`
	RemoteURL          string   `yaml:"remote_url"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Apply copies every value set in the file into cfg, except for the
// settings explicit reports as given on the command line.
func (fc *FileConfig) Apply(cfg *Config, explicit func(setting string) bool) error {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	setString := func(name, v string, dst *string) {
		if v != "" && !explicit(name) {
			*dst = v
		}
	}
	setString("log-format", fc.LogFormat, &cfg.LogFormat)
	setString("log-level", fc.LogLevel, &cfg.LogLevel)
	setString("log-file", fc.LogFile, &cfg.LogFile)
	setString("execution-mode", fc.ExecutionMode, &cfg.ExecutionMode)
	setString("remote-url", fc.RemoteURL, &cfg.RemoteURL)

	if fc.HealthcheckPort != nil && !explicit("healthcheck-port") {
		cfg.HealthcheckPort = *fc.HealthcheckPort
	}
	if fc.MaxConcurrentSteps != nil && !explicit("max-concurrent-steps") {
		cfg.MaxConcurrentSteps = *fc.MaxConcurrentSteps
	}
	if fc.StepTimeout != "" && !explicit("step-timeout") {
		d, err := time.ParseDuration(fc.StepTimeout)
		if err != nil {
			return fmt.Errorf("invalid step_timeout in config file: %w", err)
		}
		cfg.StepTimeout = d
	}
	if len(fc.Blocks) > 0 && !explicit("blocks") {
		cfg.BlockPaths = append([]string(nil), fc.Blocks...)
	}
	return nil
}
