package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/internal/config"
	"github.com/aretw0/jotter/internal/platform"
)

// app carries the state shared by every command of one invocation.
type app struct {
	verbose    bool
	configPath string
	adapter    string
	path       string
	env        string
	readOnly   bool

	cfg    config.Config
	logger *slog.Logger
}

// newRootCmd builds the command tree. Each call returns independent flag state.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "jotter",
		Short: "Notes organized into notebooks and tags",
		Long: `jotter keeps notes, notebooks and tags in a namespaced key-value store.
The store can be a directory of JSON files, SQLite, Redis, S3 or memory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			opts := &slog.HandlerOptions{
				Level: level,
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(a.logger)

			return a.loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: jotter.yaml in the nearest root)")
	rootCmd.PersistentFlags().StringVar(&a.adapter, "adapter", "", "Storage adapter: memory, fs, sqlite, redis, s3, none")
	rootCmd.PersistentFlags().StringVar(&a.path, "path", "", "Directory (fs) or database file (sqlite)")
	rootCmd.PersistentFlags().StringVar(&a.env, "env", "", "Environment suffix of the storage namespace")
	rootCmd.PersistentFlags().BoolVar(&a.readOnly, "read-only", false, "Never write to the storage medium")

	rootCmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newNewCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newNotebookCmd(a),
		newTagCmd(a),
		newSearchCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fatal("jotter", err)
	}
}

// loadConfig resolves defaults, then the config file, then JOTTER_* variables,
// then flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	path, required := a.configPath, a.configPath != ""
	var root string
	if !required {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		if r, err := platform.FindRoot(wd); err == nil {
			root = r
			path = filepath.Join(r, platform.ConfigFile)
		}
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	// A relative default path belongs to the discovered root, not the cwd.
	if root != "" && !filepath.IsAbs(cfg.Path) && cfg.Path != "" {
		cfg.Path = filepath.Join(root, cfg.Path)
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = a.adapter
	}
	if flags.Changed("path") {
		cfg.Path = a.path
	}
	if flags.Changed("env") {
		cfg.Env = a.env
	}
	if flags.Changed("read-only") {
		cfg.ReadOnly = a.readOnly
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger.Debug("configuration resolved", "file", path, "adapter", cfg.Adapter, "path", cfg.Path, "env", cfg.Env)
	return nil
}

// open builds the workspace for one command. The caller closes it.
func (a *app) open(ctx context.Context) (*jotter.Workspace, error) {
	opts := append(a.cfg.Options(), jotter.WithLogger(a.logger))
	ws, err := jotter.Open(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}

// errNotFound formats a missing entity error.
func errNotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, jotter.ErrNotFound)
}

var errNothingToChange = errors.New("nothing to change: pass at least one field flag")
