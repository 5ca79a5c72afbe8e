package preview

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/pdfmerge/internal/pdf"
)

// statsWorkers bounds concurrent file inspection.
const statsWorkers = 4

// Stats summarizes a file list.
type Stats struct {
	Total  int     `json:"total"`
	Valid  int     `json:"valid"`
	Pages  int     `json:"pages"`
	SizeMB float64 `json:"size_mb"`
}

// String renders the stats as three lines.
func (s Stats) String() string {
	if s.Total == 0 {
		return "No files"
	}
	return fmt.Sprintf("Files: %d/%d\nPages: %d\nSize: %.1f MB", s.Valid, s.Total, s.Pages, s.SizeMB)
}

// CollectStats inspects paths concurrently. Files that do not exist count
// towards Total only; SizeMB is rounded to one decimal.
func CollectStats(ctx context.Context, paths []string, info *pdf.Info) (Stats, error) {
	records := make([]pdf.FileInfo, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statsWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = info.FileInfo(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st := Stats{Total: len(paths)}
	var size int64
	for _, r := range records {
		if !r.Exists {
			continue
		}
		st.Valid++
		st.Pages += r.Pages
		size += r.Size
	}
	st.SizeMB = math.Round(float64(size)/(1024*1024)*10) / 10
	return st, nil
}

// DisplayName labels a list entry as "<n>. <name> (<pages> pages)", with a
// marker for missing files and files without pages. index is 0-based.
func DisplayName(path string, index int, info *pdf.Info) string {
	name := filepath.Base(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("%d. %s (missing)", index+1, name)
	}
	pages := info.PageCount(path)
	switch pages {
	case 0:
		return fmt.Sprintf("%d. %s (no pages)", index+1, name)
	case 1:
		return fmt.Sprintf("%d. %s (1 page)", index+1, name)
	default:
		return fmt.Sprintf("%d. %s (%d pages)", index+1, name, pages)
	}
}
