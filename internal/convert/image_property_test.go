package convert

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const eps = 1e-6

// TestFitImage_StaysInsideMargins verifies the placement never leaves the printable area.
func TestFitImage_StaysInsideMargins(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("placement fits within page minus margins", prop.ForAll(
		func(w, h int, margin float64) bool {
			p := FitImage(w, h, margin)
			return p.X >= margin-eps && p.Y >= margin-eps &&
				p.X+p.W <= pageWidth-margin+eps && p.Y+p.H <= pageHeight-margin+eps
		},
		gen.IntRange(1, 10000),
		gen.IntRange(1, 10000),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}

// TestFitImage_KeepsAspectWithoutUpscaling verifies scaling is uniform and never enlarges.
func TestFitImage_KeepsAspectWithoutUpscaling(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("aspect ratio preserved and scale <= 1", prop.ForAll(
		func(w, h int) bool {
			p := FitImage(w, h, 20)
			if p.W > float64(w)+eps || p.H > float64(h)+eps {
				return false
			}
			return math.Abs(p.W/p.H-float64(w)/float64(h)) < 1e-6*float64(w)/float64(h)+eps
		},
		gen.IntRange(1, 10000),
		gen.IntRange(1, 10000),
	))

	properties.Property("placement is centered", prop.ForAll(
		func(w, h int) bool {
			p := FitImage(w, h, 20)
			return math.Abs(p.X-(pageWidth-p.X-p.W)) < eps && math.Abs(p.Y-(pageHeight-p.Y-p.H)) < eps
		},
		gen.IntRange(1, 10000),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}
