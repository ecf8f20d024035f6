package main

import (
	"context"
	"fmt"

	"github.com/damiannass88/WindowsFileMover/internal/config"
	"github.com/damiannass88/WindowsFileMover/internal/journal"
	"github.com/damiannass88/WindowsFileMover/internal/report"
	"github.com/damiannass88/WindowsFileMover/internal/selection"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// filterFlags are the scan filters shared by scan, move, browse and extensions
type filterFlags struct {
	extensions []string
	custom     string
	name       string
	minSize    string
	maxSize    string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "Extension toggles to enable (comma-separated, e.g. mp4,mkv)")
	cmd.Flags().StringVar(&f.custom, "custom", "", `Extra extensions as free text (e.g. "srt; .sub")`)
	cmd.Flags().StringVar(&f.name, "name", "", "Only files whose name contains this word")
	cmd.Flags().StringVar(&f.minSize, "min-size", "", "Minimum file size (e.g. 100M)")
	cmd.Flags().StringVar(&f.maxSize, "max-size", "", "Maximum file size (e.g. 4G)")
}

// apply overrides config with the flags that were given
func (f *filterFlags) apply(cfg *config.Config) error {
	if len(f.extensions) > 0 {
		cfg.Extensions = f.extensions
	}
	if f.custom != "" {
		cfg.CustomExtensions = f.custom
	}
	if f.name != "" {
		cfg.NameContains = f.name
	}
	if f.minSize != "" {
		cfg.MinSize = f.minSize
	}
	if f.maxSize != "" {
		cfg.MaxSize = f.maxSize
	}
	return cfg.Validate()
}

func scanCmd() *cobra.Command {
	var (
		filters    filterFlags
		outputFile string
		selectAll  bool
	)

	cmd := &cobra.Command{
		Use:   "scan [source]",
		Short: "Search a folder for matching files",
		Long: `Recursively search a folder for files matching the extension filter and list them largest first.
With --output the result is saved as a selection plan that can be edited and passed to "move --plan".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := filters.apply(cfg); err != nil {
				return err
			}

			opts, err := cfg.ScanOptions(source)
			if err != nil {
				return err
			}

			scanner, _ := engine(cfg)
			bar := newProgressBar(out, "Loading")
			result, err := scanner.Scan(cmd.Context(), opts, bar)
			bar.Done()
			if result == nil {
				return failed(out, "Scan failed", err)
			}

			if store := openJournal(cfg); store != nil {
				recordScan(cmd.Context(), store, result)
				store.Close()
			}

			report.NewGenerator(afero.NewOsFs(), out, logger).PrintScan(result)

			if outputFile != "" {
				plan := selection.NewPlan(result, opts.Extensions, selectAll)
				if err := selection.Save(afero.NewOsFs(), outputFile, plan); err != nil {
					return err
				}
				grayColor.Fprint(out, "  Plan:     ")
				fmt.Fprintf(out, "%s (%d selected)\n\n", outputFile, len(plan.Selected()))
			}

			// A cancelled scan still printed what it found
			return err
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write a selection plan (YAML) to this file")
	cmd.Flags().BoolVar(&selectAll, "select-all", false, "Mark every record selected in the plan")

	return cmd
}

func recordScan(ctx context.Context, store *journal.Store, result *models.ScanResult) {
	// Journal even when the operation itself was interrupted
	id, err := store.RecordScan(context.WithoutCancel(ctx), result)
	if err != nil {
		logger.Warn("Failed to journal scan", zap.Error(err))
		return
	}
	logger.Debug("Scan journaled", zap.String("id", id))
}

func recordMove(ctx context.Context, store *journal.Store, sourceRoot string, result *models.MoveResult) {
	id, err := store.RecordMove(context.WithoutCancel(ctx), sourceRoot, result)
	if err != nil {
		logger.Warn("Failed to journal move", zap.Error(err))
		return
	}
	logger.Debug("Move journaled", zap.String("id", id))
}
