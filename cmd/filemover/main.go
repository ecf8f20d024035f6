package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/damiannass88/WindowsFileMover/internal/config"
	"github.com/damiannass88/WindowsFileMover/internal/core"
	"github.com/damiannass88/WindowsFileMover/internal/filelock"
	"github.com/damiannass88/WindowsFileMover/internal/journal"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version    = "0.1.0"
	logger     = zap.NewNop()
	verbose    bool
	configFile string
)

var (
	titleColor = color.New(color.FgHiYellow, color.Bold)
	grayColor  = color.New(color.FgHiBlack)
	errColor   = color.New(color.FgRed, color.Bold)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filemover",
		Short: "filemover - find files by extension and move them elsewhere",
		Long: `Recursively search a folder for files matching an extension filter,
review the largest first, and move the selected ones into a destination folder.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner(cmd)
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file")

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(extensionsCmd())

	return rootCmd
}

// initLogger builds a development logger with --verbose, otherwise errors only
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func printMainBanner(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	titleColor.Fprintf(out, "  filemover %s\n", version)
	grayColor.Fprintln(out, "  search · select · move")
	fmt.Fprintln(out)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// engine is the scanner and mover pair over the OS filesystem
func engine(cfg *config.Config) (*core.Scanner, *core.Mover) {
	fs := afero.NewOsFs()
	scanner := core.NewScanner(fs, logger)
	scanner.SetReportEvery(cfg.ScanReportEvery)
	mover := core.NewMover(fs, logger)
	mover.SetStatusEvery(cfg.MoveStatusEvery)
	return scanner, mover
}

// openJournal returns nil when the journal is disabled or cannot be opened
func openJournal(cfg *config.Config) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.NewStore(cfg.Journal.Path)
	if err != nil {
		logger.Warn("Journal unavailable", zap.String("path", cfg.Journal.Path), zap.Error(err))
		return nil
	}
	return store
}

// acquireMoveLock keeps two processes from moving at the same time
func acquireMoveLock(cfg *config.Config) (*filelock.FileLock, error) {
	lock, err := filelock.Acquire(cfg.LockPath)
	if errors.Is(err, filelock.ErrLocked) {
		return nil, fmt.Errorf("another filemover move is running: %w", err)
	}
	return lock, err
}

func releaseLock(lock *filelock.FileLock) {
	if err := lock.Unlock(); err != nil {
		logger.Warn("Failed to release lock", zap.String("path", lock.Path()), zap.Error(err))
	}
}

// failed reports an operation that stopped before producing a result.
// Invalid paths are for the user to fix, so they print a hint instead of an error log.
func failed(out io.Writer, what string, err error) error {
	if core.IsValidation(err) {
		errColor.Fprintf(out, "  ✗ %v\n", err)
		logger.Debug(what, zap.Error(err))
		return err
	}
	logger.Error(what, zap.Error(err))
	return err
}
