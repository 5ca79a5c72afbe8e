package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
	"github.com/MeKo-Tech/pdfmerge/internal/preview"
)

// InfoReport is the JSON form of the info command.
type InfoReport struct {
	Files []pdf.FileInfo `json:"files"`
	Stats preview.Stats  `json:"stats"`
}

// infoCmd represents the info command.
var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show page counts and sizes",
	Long: `Show the page count and size of each file and totals for the list.

Examples:
  pdfmerge info a.pdf b.pdf
  pdfmerge info *.pdf --format json`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be text or json)", format)
		}

		info := newApp().info()
		stats, err := preview.CollectStats(cmd.Context(), args, info)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == "json" {
			report := InfoReport{Files: make([]pdf.FileInfo, len(args)), Stats: stats}
			for i, p := range args {
				report.Files[i] = info.FileInfo(p)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		for i, p := range args {
			_, _ = fmt.Fprintln(out, preview.DisplayName(p, i, info))
		}
		_, _ = fmt.Fprintln(out, stats.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}
