package main

import (
	"errors"
	"fmt"

	"github.com/damiannass88/WindowsFileMover/internal/core"
	"github.com/damiannass88/WindowsFileMover/internal/report"
	"github.com/damiannass88/WindowsFileMover/internal/selection"
	"github.com/damiannass88/WindowsFileMover/internal/session"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func moveCmd() *cobra.Command {
	var (
		filters       filterFlags
		planFile      string
		all           bool
		destination   string
		keepStructure bool
		autoRename    bool
		withFolder    bool
		reportFormat  string
		outputFile    string
	)

	cmd := &cobra.Command{
		Use:   "move [source]",
		Short: "Move selected files into a destination folder",
		Long: `Move the records selected in a plan (--plan) or every match of a fresh scan (source --all)
into the destination folder. Existing destination files are never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			switch {
			case planFile == "" && !all:
				return errors.New("either --plan or a source with --all is required")
			case planFile != "" && all:
				return errors.New("--plan and --all cannot be combined")
			case all && len(args) == 0:
				return errors.New("--all needs a source folder")
			case planFile != "" && len(args) > 0:
				return errors.New("a source folder is taken from the plan, not from arguments")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := filters.apply(cfg); err != nil {
				return err
			}

			// Override config with CLI flags
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

			store := openJournal(cfg)
			if store != nil {
				defer store.Close()
			}

			if planFile != "" {
				plan, err := selection.Load(afero.NewOsFs(), planFile)
				if err != nil {
					return err
				}
				if err := sess.Load(plan.SourceRoot, plan.Files); err != nil {
					return err
				}
			} else {
				opts, err := cfg.ScanOptions(args[0])
				if err != nil {
					return err
				}
				bar := newProgressBar(out, "Loading")
				result, err := sess.RunScan(cmd.Context(), opts, bar)
				bar.Done()
				if err != nil {
					// A cancelled scan must not turn into a partial move
					return failed(out, "Scan failed", err)
				}
				if store != nil {
					recordScan(cmd.Context(), store, result)
				}
				if err := sess.SelectAll(); err != nil {
					return err
				}
			}

			if withFolder {
				for i, r := range sess.Records() {
					if r.Selected {
						if err := sess.SetWithFolder(i, true); err != nil {
							return err
						}
					}
				}
			}

			relocation := cfg.RelocationOptions(destination, sess.SourceRoot())
			bar := newProgressBar(out, "Moving")
			result, err := sess.RunMove(cmd.Context(), relocation, bar)
			bar.Done()
			if errors.Is(err, core.ErrNothingSelected) {
				fmt.Fprintln(out, "  Nothing selected, no files moved.")
				return nil
			}
			if result == nil {
				return failed(out, "Move failed", err)
			}

			if store != nil {
				recordMove(cmd.Context(), store, sess.SourceRoot(), result)
			}

			gen := report.NewGenerator(afero.NewOsFs(), out, logger)
			gen.PrintMove(result, cfg.ErrorPreview)

			if reportFormat != "" {
				path, rerr := gen.Generate(result, reportFormat, outputFile)
				if rerr != nil {
					return rerr
				}
				grayColor.Fprint(out, "  Report:   ")
				fmt.Fprintf(out, "%s\n\n", path)
			}

			return err
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVarP(&planFile, "plan", "p", "", "Selection plan written by scan --output")
	cmd.Flags().BoolVar(&all, "all", false, "Scan the source and move every match")
	cmd.Flags().StringVarP(&destination, "to", "t", "", "Destination folder (must exist)")
	cmd.Flags().BoolVar(&keepStructure, "keep-structure", false, "Recreate the source-relative folders under the destination")
	cmd.Flags().BoolVar(&autoRename, "auto-rename", true, `Rename to "name (n).ext" when the destination exists`)
	cmd.Flags().BoolVar(&withFolder, "with-folder", false, "Move each file into a folder named after its parent folder")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Write a move report: txt, json, md")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report file path")
	cmd.MarkFlagRequired("to")

	return cmd
}
