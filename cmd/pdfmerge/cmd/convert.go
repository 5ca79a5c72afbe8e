package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// convertCmd represents the convert command.
var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a document or image to PDF",
	Long: `Convert a Word document, text file or image to PDF.

The result is validated after conversion. Without --output the PDF is written
next to the input with a .pdf extension.

Examples:
  pdfmerge convert notes.txt
  pdfmerge convert scan.png -o scan.pdf`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = strings.TrimSuffix(src, filepath.Ext(src)) + ".pdf"
		}
		if filepath.Clean(output) == filepath.Clean(src) {
			return fmt.Errorf("output %s would overwrite the input", output)
		}

		a := newApp()
		conv := a.converter()
		defer conv.CleanupTempFiles()

		if err := conv.Export(cmd.Context(), src, output); err != nil {
			return err
		}
		if err := a.validator().IsValidPDF(output); err != nil {
			return fmt.Errorf("converted file %s is not usable: %w", output, err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s, pages: %d\n",
			filepath.Base(src), output, a.info().PageCount(output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("output", "o", "", "output PDF file (default: input name with .pdf)")
}
