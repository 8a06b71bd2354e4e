package enhance

import (
	"image"
	"math"
)

const (
	skewRange  = 5.0  // degrees searched either side of horizontal
	skewStep   = 0.25 // search granularity in degrees
	skewStride = 2    // pixel sampling stride, text lines survive 2x decimation
)

// EstimateSkew returns the estimated page skew of a binarized image in
// degrees. Candidate angles are scored by the sharpness of the horizontal
// projection profile: when text lines are aligned, black pixels
// concentrate into few rows and the sum of squared row counts peaks.
func EstimateSkew(img *image.NRGBA) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 16 || h < 16 {
		return 0
	}

	// Collect downsampled foreground coordinates once.
	type pt struct{ x, y int }
	var points []pt
	for y := 0; y < h; y += skewStride {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x += skewStride {
			if row[x*4] < 128 {
				points = append(points, pt{x, y})
			}
		}
	}
	if len(points) == 0 {
		return 0
	}

	bestAngle, bestScore := 0.0, -1.0
	counts := make([]int, h+2*int(float64(w)*math.Tan(skewRange*math.Pi/180))+2)
	offset := (len(counts) - h) / 2

	for angle := -skewRange; angle <= skewRange+1e-9; angle += skewStep {
		tan := math.Tan(angle * math.Pi / 180)
		for i := range counts {
			counts[i] = 0
		}
		for _, p := range points {
			row := p.y + int(float64(p.x)*tan) + offset
			if row >= 0 && row < len(counts) {
				counts[row]++
			}
		}
		score := 0.0
		for _, c := range counts {
			score += float64(c) * float64(c)
		}
		if score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}

	// The profile peaks at the angle that undoes the skew; rotating by
	// the same signed angle with imaging.Rotate (counter-clockwise
	// positive) straightens the lines.
	return bestAngle
}
