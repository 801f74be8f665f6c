package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/niuview/internal/config"
	"github.com/jask/niuview/internal/gallery"
	"github.com/jask/niuview/internal/logging"
	"github.com/jask/niuview/internal/picker"
	"github.com/jask/niuview/internal/store"
	"github.com/jask/niuview/internal/tui"
)

var (
	flagConfig     string
	flagLibrary    string
	flagInitConfig bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "niuview",
		Short: "Pick images, page through them, save the gallery for next time",
		Long: `niuview is a terminal image gallery. Images are picked from a library
directory, shown full screen with a thumbnail strip, and the whole gallery can
be saved to local storage and restored on the next launch.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.Flags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/niuview/config.toml)")
	cmd.Flags().StringVar(&flagLibrary, "library", "", "directory to pick images from (overrides library.dir)")
	cmd.Flags().BoolVar(&flagInitConfig, "init-config", false, "write the effective config to the config file and exit")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flagConfig != "" {
		if err := os.Setenv("NIUVIEW_CONFIG", flagConfig); err != nil {
			return fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if flagLibrary != "" {
		cfg.Library.Dir = flagLibrary
	}
	if flagInitConfig {
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.Path())
		return nil
	}

	logFile, err := logging.OpenFile(cfg.Log.Path)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logFile})
	slog.SetDefault(logger)

	s, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, Path: cfg.Store.Path, Dir: cfg.Store.Dir})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	if err := store.Ensure(ctx, s, gallery.BlobKey); err != nil {
		return fmt.Errorf("prepare store: %w", err)
	}

	lib := picker.NewDirLibrary(cfg.Library.Dir, cfg.Library.Extensions, cfg.Library.Recursive)
	importer := &picker.Importer{
		Resolver:      lib,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		DecodeTimeout: cfg.Import.DecodeTimeout,
		Logger:        logger,
	}
	logger.Info("starting",
		"store", cfg.Store.Driver,
		"library", cfg.Library.Dir,
		"max_concurrent", cfg.Import.MaxConcurrent)

	app := tui.New(ctx,
		tui.Deps{Store: s, Library: lib, Importer: importer, Logger: logger},
		tui.Options{LoadOnStart: cfg.Gallery.LoadOnStart})
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "niuview:", err)
		os.Exit(1)
	}
}
