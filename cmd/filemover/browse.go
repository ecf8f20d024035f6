package main

import (
	"context"
	"errors"

	"github.com/damiannass88/WindowsFileMover/internal/selection"
	"github.com/damiannass88/WindowsFileMover/internal/session"
	"github.com/damiannass88/WindowsFileMover/internal/tui"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func browseCmd() *cobra.Command {
	var (
		filters       filterFlags
		destination   string
		planFile      string
		keepStructure bool
		autoRename    bool
	)

	cmd := &cobra.Command{
		Use:   "browse [source]",
		Short: "Review and move files in an interactive terminal shell",
		Long: `Open the interactive shell: search the source folder, toggle the files to move,
and move them into the destination while the list stays responsive.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && planFile == "" {
				return errors.New("a source folder or --plan is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := filters.apply(cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("keep-structure") {
				cfg.KeepStructure = keepStructure
			}
			if cmd.Flags().Changed("auto-rename") {
				cfg.AutoRename = autoRename
			}

			lock, err := acquireMoveLock(cfg)
			if err != nil {
				return err
			}
			defer releaseLock(lock)

			scanner, mover := engine(cfg)
			sess := session.New(scanner, mover, logger)

			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			if planFile != "" {
				plan, err := selection.Load(afero.NewOsFs(), planFile)
				if err != nil {
					return err
				}
				if err := sess.Load(plan.SourceRoot, plan.Files); err != nil {
					return err
				}
				if source == "" {
					source = plan.SourceRoot
				}
			}

			scanOpts, err := cfg.ScanOptions(source)
			if err != nil {
				return err
			}
			opts := tui.Options{
				Scan:            scanOpts,
				Relocation:      cfg.RelocationOptions(destination, ""),
				ErrorPreview:    cfg.ErrorPreview,
				SkipInitialScan: planFile != "",
			}

			if store := openJournal(cfg); store != nil {
				defer store.Close()
				ctx := context.WithoutCancel(cmd.Context())
				opts.OnScan = func(r *models.ScanResult) { recordScan(ctx, store, r) }
				opts.OnMove = func(r *models.MoveResult) { recordMove(ctx, store, sess.SourceRoot(), r) }
			}

			return tui.Run(cmd.Context(), sess, scanner, mover, opts)
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVarP(&destination, "to", "t", "", "Destination folder (must exist)")
	cmd.Flags().StringVarP(&planFile, "plan", "p", "", "Start from a selection plan instead of a fresh scan")
	cmd.Flags().BoolVar(&keepStructure, "keep-structure", false, "Recreate the source-relative folders under the destination")
	cmd.Flags().BoolVar(&autoRename, "auto-rename", true, `Rename to "name (n).ext" when the destination exists`)
	cmd.MarkFlagRequired("to")

	return cmd
}
