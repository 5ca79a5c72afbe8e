package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pdfmerge/internal/convert"
	"github.com/MeKo-Tech/pdfmerge/internal/worker"
)

// mergeCmd represents the merge command.
var mergeCmd = &cobra.Command{
	Use:   "merge [files or directories...]",
	Short: "Merge documents into a single PDF",
	Long: `Merge PDF, Word, text and image files into a single PDF.

Inputs are merged in the order given. Directories contribute their supported
files in name order; use --recursive to include subdirectories.

Examples:
  pdfmerge merge a.pdf b.docx c.png -o merged.pdf
  pdfmerge merge scans/ --recursive -o scans.pdf
  pdfmerge merge chapters/ --exclude 'draft-*' -o book.pdf`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		recursive, _ := cmd.Flags().GetBool("recursive")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")

		if output == "" {
			return errors.New("an output file is required (--output)")
		}

		files, err := convert.Discover(args, recursive, exclude)
		if err != nil {
			return err
		}

		a := newApp()
		sess := a.session()
		defer func() { _ = sess.Close() }()

		out := cmd.OutOrStdout()
		report := sess.Add(cmd.Context(), files)
		_, _ = fmt.Fprintln(out, report.Summary())

		events, err := sess.Merge(cmd.Context(), output)
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}

		var last worker.Event
		for ev := range events {
			last = ev
			switch ev.Type {
			case worker.EventStarted:
				_, _ = fmt.Fprintf(out, "Merging %d files...\n", sess.Len())
			case worker.EventFinished:
				_, _ = fmt.Fprintf(out, "Files merged successfully: %s (%d pages)\n", ev.Output, ev.Pages)
			case worker.EventError:
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Merge error: %s\n", ev.Message)
			}
		}
		if last.Type != worker.EventFinished {
			return fmt.Errorf("merge failed: %s", last.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringP("output", "o", "", "output PDF file")
	mergeCmd.Flags().BoolP("recursive", "r", false, "include files from subdirectories")
	mergeCmd.Flags().StringSlice("exclude", nil, "file name patterns to skip when expanding directories")
}
