package cmd

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
	"github.com/MeKo-Tech/pdfmerge/internal/preview"
)

// newRenderer is replaced in tests.
var newRenderer = func() preview.Renderer { return preview.NewFitzRenderer() }

// previewCmd represents the preview command.
var previewCmd = &cobra.Command{
	Use:   "preview [pdf files...]",
	Short: "Render PDF pages to PNG images",
	Long: `Render pages of one or more PDF files to PNG images.

Images are written to the output directory as <name>_p<page>.png. The zoom
must be one of the configured zoom levels; --thumb scales each page down to
fit a square of the given size.

Examples:
  pdfmerge preview report.pdf -o previews
  pdfmerge preview report.pdf --pages 1-3 --zoom 150 -o previews
  pdfmerge preview a.pdf b.pdf --page 1 --thumb 256 -o thumbs`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("output")
		thumb, _ := cmd.Flags().GetInt("thumb")

		selection, err := pageSelection(cmd)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		cfg := GetConfig()
		renderer := newRenderer()
		if c, ok := renderer.(interface{ Close() error }); ok {
			defer func() { _ = c.Close() }()
		}

		viewer, err := preview.NewViewer(renderer, args, cfg.Preview.ZoomLevels, cfg.Preview.DefaultZoom)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("zoom") {
			zoom, _ := cmd.Flags().GetInt("zoom")
			if err := viewer.SetZoom(zoom); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		var failed []string
		for i, path := range args {
			if err := viewer.SelectFile(i); err != nil {
				return err
			}
			written, err := renderFile(viewer, selection, thumb, outDir)
			for _, w := range written {
				_, _ = fmt.Fprintln(out, w)
			}
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed = append(failed, filepath.Base(path))
			}
		}

		if len(failed) > 0 {
			return fmt.Errorf("could not preview: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

// pageSelection returns the 1-based pages to render; nil means all pages.
func pageSelection(cmd *cobra.Command) ([]int, error) {
	if cmd.Flags().Changed("page") && cmd.Flags().Changed("pages") {
		return nil, errors.New("use either --page or --pages, not both")
	}
	if cmd.Flags().Changed("page") {
		page, _ := cmd.Flags().GetInt("page")
		return pdf.ParsePageRange(strconv.Itoa(page))
	}
	pages, _ := cmd.Flags().GetString("pages")
	return pdf.ParsePageRange(pages)
}

func renderFile(v *preview.Viewer, selection []int, thumb int, outDir string) ([]string, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	pages := pdf.ClampPages(selection, v.PageCount())
	if len(pages) == 0 {
		return nil, preview.ErrNoPages
	}

	stem := strings.TrimSuffix(filepath.Base(v.File()), filepath.Ext(v.File()))
	written := make([]string, 0, len(pages))
	for _, p := range pages {
		if err := v.SetPage(p - 1); err != nil {
			return written, err
		}

		var img image.Image
		var err error
		if thumb > 0 {
			img, err = v.Thumbnail(thumb)
		} else {
			img, err = v.Current()
		}
		if err != nil {
			return written, fmt.Errorf("page %d: %w", p, err)
		}

		dst := filepath.Join(outDir, fmt.Sprintf("%s_p%d.png", stem, p))
		if err := imaging.Save(img, dst); err != nil {
			return written, fmt.Errorf("save %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("output", "o", "previews", "directory for the rendered PNG files")
	previewCmd.Flags().Int("page", 1, "single page to render")
	previewCmd.Flags().String("pages", "", "page range to render (e.g., '1-5', '1,3,5'; default: all)")
	previewCmd.Flags().Int("zoom", 100, "zoom percentage (one of the configured zoom levels)")
	previewCmd.Flags().Int("thumb", 0, "fit each page into a square of this many pixels (0 = full size)")
}
