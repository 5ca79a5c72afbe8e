package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pdfmerge/internal/convert"
)

// depsCmd represents the deps command.
var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Show which conversions are available",
	Long: `Show the detected capabilities and how to enable missing components.

Examples:
  pdfmerge deps`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		out := cmd.OutOrStdout()

		_, _ = fmt.Fprintf(out, "PDF engine:       %s\n", a.caps.PDFEngine)
		_, _ = fmt.Fprintf(out, "Image conversion: %s\n", availability(a.caps.Imaging))
		_, _ = fmt.Fprintf(out, "Text conversion:  %s\n", availability(a.caps.TextGeneration))
		word := availability(a.caps.WordConversion)
		if a.caps.WordConversion {
			word += " (" + a.caps.WordCommand + ")"
		}
		_, _ = fmt.Fprintf(out, "Word conversion:  %s\n", word)

		_, _ = fmt.Fprintln(out, "\nSupported files:")
		for _, g := range convert.FileFilter() {
			_, _ = fmt.Fprintf(out, "  %s: %v\n", g.Name, g.Extensions)
		}

		if missing := a.converter().MissingDependencies(); len(missing) > 0 {
			_, _ = fmt.Fprintln(out, "\nMissing:")
			for _, m := range missing {
				_, _ = fmt.Fprintf(out, "  - %s\n", m)
			}
		}
		return nil
	},
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
