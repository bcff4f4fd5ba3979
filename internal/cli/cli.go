// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/blockflow/internal/app"
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// options are the flags shared by every command.
type options struct {
	configFile         string
	blocks             []string
	output             string
	logFormat          string
	logLevel           string
	logFile            string
	healthcheckPort    int
	maxConcurrentSteps int
	stepTimeout        time.Duration
	executionMode      string
	remoteURL          string
}

// NewRootCommand builds the blockflow command tree. Command output goes to
// outW, logs and errors to errW. Modules default to the core modules.
func NewRootCommand(outW, errW io.Writer, modules ...registry.Module) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "blockflow",
		Short: "Compile and run typed block workflows.",
		Long: `blockflow compiles workflows of typed steps, checks every connection
between them against the kinds the blocks declare, and executes them over
batches of inputs with bounded concurrency.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file.")
	flags.StringArrayVar(&opts.blocks, "blocks", nil, "Dynamic block definition file or directory (repeatable).")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write logs to this rotating file.")
	flags.IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	flags.IntVar(&opts.maxConcurrentSteps, "max-concurrent-steps", 8, "Maximum number of steps running at once.")
	flags.DurationVar(&opts.stepTimeout, "step-timeout", 0, "Time limit for every block invocation. 0 is unlimited.")
	flags.StringVar(&opts.executionMode, "execution-mode", "local", "Where delegable blocks run. Options: 'local' or 'remote'.")
	flags.StringVar(&opts.remoteURL, "remote-url", "", "Socket.IO URL of the remote worker.")

	root.AddCommand(
		newDescribeCommand(opts, outW, errW, modules),
		newValidateCommand(opts, outW, errW, modules),
		newRunCommand(opts, outW, errW, modules),
	)
	return root
}

// Execute runs the command line in args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, modules ...registry.Module) error {
	root := NewRootCommand(outW, errW, modules...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

func newDescribeCommand(opts *options, outW, errW io.Writer, modules []registry.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Describe the available blocks, kinds and connections.",
		Example: `  blockflow describe
  blockflow describe --blocks ./blocks -o catalog.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, app.Config{}, outW, errW, modules, func(a *app.App) error {
				return a.Describe(cmd.Context())
			})
		},
	}
}

func newValidateCommand(opts *options, outW, errW io.Writer, modules []registry.Module) *cobra.Command {
	return &cobra.Command{
		Use:     "validate WORKFLOW",
		Short:   "Compile a workflow and report problems without running it.",
		Example: `  blockflow validate workflow.json --blocks ./blocks`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, app.Config{WorkflowPath: args[0]}, outW, errW, modules, func(a *app.App) error {
				_, err := a.Validate(cmd.Context())
				return err
			})
		},
	}
}

func newRunCommand(opts *options, outW, errW io.Writer, modules []registry.Module) *cobra.Command {
	var inputs string
	cmd := &cobra.Command{
		Use:   "run WORKFLOW",
		Short: "Run a workflow over the given inputs.",
		Example: `  blockflow run workflow.json --inputs inputs.json
  blockflow run workflow.hcl --inputs inputs.yaml --max-concurrent-steps 2 --step-timeout 30s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := app.Config{WorkflowPath: args[0], InputsPath: inputs}
			return withApp(cmd, opts, base, outW, errW, modules, func(a *app.App) error {
				return a.Run(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&inputs, "inputs", "", "JSON or YAML file with the runtime parameters.")
	return cmd
}

// withApp builds and validates the configuration, creates the app, runs fn
// and closes the app.
func withApp(cmd *cobra.Command, opts *options, base app.Config, outW, errW io.Writer, modules []registry.Module, fn func(*app.App) error) error {
	cfg, err := buildConfig(cmd, opts, base)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("CLI configuration built.", "config", cfg)

	a, err := app.NewApp(outW, errW, cfg, modules...)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func buildConfig(cmd *cobra.Command, opts *options, base app.Config) (*app.Config, error) {
	cfg := base
	cfg.BlockPaths = opts.blocks
	cfg.OutputPath = opts.output
	cfg.LogFormat = strings.ToLower(opts.logFormat)
	cfg.LogLevel = strings.ToLower(opts.logLevel)
	cfg.LogFile = opts.logFile
	cfg.HealthcheckPort = opts.healthcheckPort
	cfg.MaxConcurrentSteps = opts.maxConcurrentSteps
	cfg.StepTimeout = opts.stepTimeout
	cfg.ExecutionMode = strings.ToLower(opts.executionMode)
	cfg.RemoteURL = opts.remoteURL

	if opts.configFile != "" {
		fc, err := app.LoadConfigFile(opts.configFile)
		if err != nil {
			return nil, err
		}
		if err := fc.Apply(&cfg, cmd.Flags().Changed); err != nil {
			return nil, err
		}
	}

	valid, err := app.NewConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return valid, nil
}
