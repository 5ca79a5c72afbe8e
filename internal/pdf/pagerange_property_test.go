package pdf

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestParsePageRange_Properties verifies ranges expand to consecutive pages.
func TestParsePageRange_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("start-end yields end-start+1 ascending pages", prop.ForAll(
		func(start, length int) bool {
			end := start + length
			pages, err := ParsePageRange(fmt.Sprintf("%d-%d", start, end))
			if err != nil || len(pages) != length+1 {
				return false
			}
			for i, p := range pages {
				if p != start+i {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 500),
		gen.IntRange(0, 200),
	))

	properties.Property("reversed ranges are rejected", prop.ForAll(
		func(end, gap int) bool {
			_, err := ParsePageRange(fmt.Sprintf("%d-%d", end+gap, end))
			return err != nil
		},
		gen.IntRange(1, 500),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

// TestClampPages_Properties verifies clamping keeps only pages of the document.
func TestClampPages_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("clamped pages lie within 1..total", prop.ForAll(
		func(pages []int, total int) bool {
			for _, p := range ClampPages(pages, total) {
				if p < 1 || p > total {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-5, 60)),
		gen.IntRange(0, 50),
	))

	properties.Property("nil selection means every page", prop.ForAll(
		func(total int) bool {
			return len(ClampPages(nil, total)) == total
		},
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}
