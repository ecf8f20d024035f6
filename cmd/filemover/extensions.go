package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func extensionsCmd() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "Show the extension toggles and the effective filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := filters.apply(cfg); err != nil {
				return err
			}

			builder := cfg.FilterBuilder()

			fmt.Fprintln(out)
			titleColor.Fprintln(out, "  Extension toggles")
			fmt.Fprintln(out)
			for _, name := range builder.Vocabulary() {
				mark := grayColor.Sprint("[ ]")
				if builder.Enabled(name) {
					mark = titleColor.Sprint("[x]")
				}
				fmt.Fprintf(out, "    %s %s\n", mark, name)
			}
			fmt.Fprintln(out)

			if custom := builder.Custom(); custom != "" {
				grayColor.Fprint(out, "  Custom:    ")
				fmt.Fprintln(out, custom)
			}

			set := builder.Build()
			grayColor.Fprint(out, "  Filter:    ")
			if set.Empty() {
				fmt.Fprintln(out, "(empty, matches every file)")
			} else {
				fmt.Fprintln(out, set.String())
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	filters.bind(cmd)
	return cmd
}
