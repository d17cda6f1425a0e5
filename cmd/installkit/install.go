package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/installkit/internal/engine"
	"github.com/alexisbeaulieu97/installkit/internal/environment"
	"github.com/alexisbeaulieu97/installkit/internal/logger"
	"github.com/alexisbeaulieu97/installkit/internal/plugins"
)

const verboseSink = "verbose"

type installOptions struct {
	ConfigPath string
	Dialect    string
	LogDir     string
	LogFile    string
	Env        []string
	Verbose    bool
}

var (
	installCmdRunner = runInstall
	builtinPlugins   = plugins.All
)

func newInstallCmd(root *rootFlags) *cobra.Command {
	opts := installOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Run every installation stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			if err := validateInstallOptions(opts); err != nil {
				return err
			}
			return installCmdRunner(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Answer file applied at boot")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "Dialog dialect: human or machine")
	cmd.Flags().StringVar(&opts.LogDir, "log-dir", "", "Directory for the log file")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Explicit log file path")
	cmd.Flags().StringArrayVarP(&opts.Env, "env", "e", nil, "Environment override KEY=type:value (repeatable)")

	return cmd
}

func buildEnvironment(opts installOptions) (*environment.Environment, error) {
	env := environment.New()
	env.Set(environment.DialogDialect, environment.DialectHuman)
	if opts.Dialect != "" {
		env.Set(environment.DialogDialect, opts.Dialect)
	}
	if opts.ConfigPath != "" {
		abs, err := filepath.Abs(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		env.Set(environment.ConfigFile, abs)
	}
	if opts.LogDir != "" {
		env.Set(environment.LogDir, opts.LogDir)
	}
	if opts.LogFile != "" {
		env.Set(environment.LogFileName, opts.LogFile)
	}
	env.Set(environment.LogVerbose, opts.Verbose)

	for _, assignment := range opts.Env {
		key, value, err := parseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		env.Set(key, value)
	}
	return env, nil
}

func newContext(opts installOptions, stderr io.Writer) (*engine.Context, error) {
	env, err := buildEnvironment(opts)
	if err != nil {
		return nil, err
	}

	router := logger.NewRouter()
	if opts.Verbose {
		router.Attach(verboseSink, zerolog.DebugLevel, logger.NewConsoleWriter(stderr))
	}
	log, err := logger.New(logger.Options{Level: "debug", Writer: router})
	if err != nil {
		return nil, err
	}

	reg := engine.NewRegistry()
	if err := reg.Register(builtinPlugins()...); err != nil {
		return nil, err
	}

	return engine.New(engine.Options{Registry: reg, Env: env, Log: log, Router: router}), nil
}

func runInstall(ctx context.Context, opts installOptions, stderr io.Writer) error {
	c, err := newContext(opts, stderr)
	if err != nil {
		return err
	}
	return c.Run(ctx)
}
