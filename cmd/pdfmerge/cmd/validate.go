package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check that files are readable, non-empty PDFs",
	Long: `Check each file and report whether it can be merged.

The command exits with an error when any file is invalid.

Examples:
  pdfmerge validate a.pdf b.pdf`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := newApp().validator()

		invalid := 0
		for _, p := range args {
			res := v.Check(p)
			mark := "OK"
			if !res.Valid {
				mark = "INVALID"
				invalid++
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-7s %s: %s\n", mark, p, res.Message)
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d files are invalid", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
