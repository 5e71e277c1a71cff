package vision

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patternAt generates a deterministic textured pixel so templates always
// carry enough variance to correlate against. The frequency is low enough to
// survive the matcher's downscaled pre-pass.
func patternAt(x, y int) uint8 {
	v := 128 + 60*math.Sin(float64(x)*0.15) + 50*math.Cos(float64(y)*0.11)
	return uint8(math.Max(0, math.Min(255, v)))
}

func makeTemplate(w, h int) *image.Gray {
	tmpl := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tmpl.SetGray(x, y, color.Gray{Y: patternAt(x, y)})
		}
	}
	return tmpl
}

func makeScreen(w, h, tmplX, tmplY, tmplW, tmplH int) *image.Gray {
	screen := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			screen.SetGray(x, y, color.Gray{Y: 40})
		}
	}
	for y := 0; y < tmplH; y++ {
		for x := 0; x < tmplW; x++ {
			screen.SetGray(tmplX+x, tmplY+y, color.Gray{Y: patternAt(x, y)})
		}
	}
	return screen
}

func TestFindTemplateExactMatch(t *testing.T) {
	tmpl := makeTemplate(12, 12)
	screen := makeScreen(120, 90, 30, 20, 12, 12)

	result, found := FindTemplate(screen, tmpl, 0.9)

	require.True(t, found)
	assert.Equal(t, 30, result.X)
	assert.Equal(t, 20, result.Y)
	assert.Equal(t, 12, result.Width)
	assert.Equal(t, 12, result.Height)
	assert.InDelta(t, 1.0, result.Score, 0.01)
}

func TestFindTemplateAbsent(t *testing.T) {
	tmpl := makeTemplate(12, 12)
	screen := image.NewGray(image.Rect(0, 0, 120, 90))

	_, found := FindTemplate(screen, tmpl, 0.8)

	assert.False(t, found)
}

func TestFindTemplateConfidenceThreshold(t *testing.T) {
	tmpl := makeTemplate(12, 12)
	screen := makeScreen(120, 90, 30, 20, 12, 12)

	// Corrupt part of the embedded pattern so the score drops below a
	// strict threshold but stays above a tolerant one.
	for y := 20; y < 26; y++ {
		for x := 30; x < 36; x++ {
			screen.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	_, strict := FindTemplate(screen, tmpl, 0.99)
	degraded, tolerant := FindTemplate(screen, tmpl, 0.5)

	assert.False(t, strict)
	require.True(t, tolerant)
	assert.InDelta(t, 30, degraded.X, 2)
	assert.InDelta(t, 20, degraded.Y, 2)
}

func TestFindTemplateCoarsePass(t *testing.T) {
	// Large enough to trigger the downscaled pre-pass.
	tmpl := makeTemplate(64, 64)
	screen := makeScreen(320, 200, 100, 50, 64, 64)

	result, found := FindTemplate(screen, tmpl, 0.9)

	require.True(t, found)
	assert.Equal(t, 100, result.X)
	assert.Equal(t, 50, result.Y)
}

func TestFindTemplateLargerThanScreen(t *testing.T) {
	tmpl := makeTemplate(64, 64)
	screen := image.NewGray(image.Rect(0, 0, 32, 32))

	_, found := FindTemplate(screen, tmpl, 0.5)

	assert.False(t, found)
}
