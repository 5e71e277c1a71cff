// Package vision locates template images on screen captures using
// zero-normalized cross-correlation over grayscale pixels.
package vision

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// Result is a template match: the top-left offset of the best-scoring
// region and its correlation score in [0, 1].
type Result struct {
	X, Y          int
	Width, Height int
	Score         float64
}

// minCoarseSize is the smallest template edge, in pixels, the coarse search
// pass is allowed to shrink to. Below this the correlation gets too noisy to
// rank candidates.
const minCoarseSize = 8

// FindTemplate searches screen for the region most similar to tmpl and
// reports it when its correlation score reaches confidence. Large templates
// are first matched on downscaled copies of both images, then the candidate
// neighborhood is re-scored at full resolution, which keeps the search
// tractable on full-screen captures.
func FindTemplate(screen, tmpl image.Image, confidence float64) (Result, bool) {
	sg := toGray(screen)
	tg := toGray(tmpl)

	if tg.w == 0 || tg.h == 0 || tg.w > sg.w || tg.h > sg.h {
		return Result{}, false
	}

	scale := coarseScale(tg.w, tg.h)
	var bestX, bestY int
	var best float64

	if scale > 1 {
		coarseScreen := toGray(shrink(screen, sg.w/scale))
		coarseTmpl := toGray(shrink(tmpl, tg.w/scale))
		cx, cy, _ := bestOffset(coarseScreen, coarseTmpl, 0, 0, coarseScreen.w, coarseScreen.h)

		// Re-score a window around the coarse hit at full resolution.
		margin := 2 * scale
		x0 := clamp(cx*scale-margin, 0, sg.w)
		y0 := clamp(cy*scale-margin, 0, sg.h)
		x1 := clamp(cx*scale+margin+tg.w, 0, sg.w)
		y1 := clamp(cy*scale+margin+tg.h, 0, sg.h)
		bestX, bestY, best = bestOffset(sg, tg, x0, y0, x1-x0, y1-y0)
	} else {
		bestX, bestY, best = bestOffset(sg, tg, 0, 0, sg.w, sg.h)
	}

	if best < confidence {
		return Result{}, false
	}
	return Result{X: bestX, Y: bestY, Width: tg.w, Height: tg.h, Score: best}, true
}

// grayImage is a flat float64 luminance buffer.
type grayImage struct {
	pix  []float64
	w, h int
}

func (g grayImage) at(x, y int) float64 { return g.pix[y*g.w+x] }

func toGray(img image.Image) grayImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := grayImage{pix: make([]float64, w*h), w: w, h: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma on 16-bit channel values.
			g.pix[y*w+x] = 0.299*float64(r) + 0.587*float64(gr) + 0.114*float64(b)
		}
	}
	return g
}

func shrink(img image.Image, width int) image.Image {
	if width < 1 {
		width = 1
	}
	return resize.Resize(uint(width), 0, img, resize.Bilinear)
}

func coarseScale(tw, th int) int {
	scale := 1
	for min(tw, th)/(scale*2) >= minCoarseSize && scale < 8 {
		scale *= 2
	}
	return scale
}

// bestOffset scans the given region of the screen for the offset with the
// highest correlation against tmpl.
func bestOffset(screen, tmpl grayImage, x0, y0, w, h int) (int, int, float64) {
	tMean, tDev := meanDev(tmpl)
	bestX, bestY := x0, y0
	best := -1.0

	maxX := x0 + w - tmpl.w
	maxY := y0 + h - tmpl.h
	for y := y0; y <= maxY; y++ {
		for x := x0; x <= maxX; x++ {
			score := ncc(screen, tmpl, x, y, tMean, tDev)
			if score > best {
				best, bestX, bestY = score, x, y
			}
		}
	}
	return bestX, bestY, best
}

// ncc computes zero-normalized cross-correlation of tmpl against the screen
// region at offset (ox, oy). Zero-variance regions score 0 rather than
// dividing by zero.
func ncc(screen, tmpl grayImage, ox, oy int, tMean, tDev float64) float64 {
	n := float64(tmpl.w * tmpl.h)

	var sSum, sSqSum float64
	for y := 0; y < tmpl.h; y++ {
		for x := 0; x < tmpl.w; x++ {
			v := screen.at(ox+x, oy+y)
			sSum += v
			sSqSum += v * v
		}
	}
	sMean := sSum / n
	sVar := sSqSum/n - sMean*sMean
	if sVar <= 0 || tDev <= 0 {
		return 0
	}
	sDev := math.Sqrt(sVar)

	var cross float64
	for y := 0; y < tmpl.h; y++ {
		for x := 0; x < tmpl.w; x++ {
			cross += (screen.at(ox+x, oy+y) - sMean) * (tmpl.at(x, y) - tMean)
		}
	}
	return cross / (n * sDev * tDev)
}

func meanDev(g grayImage) (float64, float64) {
	n := float64(len(g.pix))
	var sum, sqSum float64
	for _, v := range g.pix {
		sum += v
		sqSum += v * v
	}
	mean := sum / n
	variance := sqSum/n - mean*mean
	if variance <= 0 {
		return mean, 0
	}
	return mean, math.Sqrt(variance)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
