// Package enhance prepares a page bitmap for OCR: grayscale, denoise,
// contrast, binarization and optional deskew.
package enhance

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned when a stage receives or produces an image
// with no pixels.
var ErrEmptyImage = errors.New("empty image")

// Config controls the enhancement pipeline.
type Config struct {
	Denoise          bool    // gaussian denoise before thresholding
	MorphClose       bool    // 3x3 binary close to consolidate strokes
	Deskew           bool    // estimate and correct page skew
	DeskewMinDegrees float64 // skip rotation below this angle, default 0.5
	DenoiseSigma     float64 // default 0.8
}

// DefaultConfig enables the full pipeline.
func DefaultConfig() Config {
	return Config{
		Denoise:          true,
		MorphClose:       true,
		Deskew:           true,
		DeskewMinDegrees: 0.5,
		DenoiseSigma:     0.8,
	}
}

// Enhancer applies a fixed pre-processing pipeline to page bitmaps.
type Enhancer struct {
	cfg Config
}

// New creates an Enhancer, filling in config defaults.
func New(cfg Config) *Enhancer {
	if cfg.DeskewMinDegrees <= 0 {
		cfg.DeskewMinDegrees = 0.5
	}
	if cfg.DenoiseSigma <= 0 {
		cfg.DenoiseSigma = 0.8
	}
	return &Enhancer{cfg: cfg}
}

// Enhance runs the pipeline: grayscale, denoise, contrast boost, Otsu
// threshold, optional morphological close and deskew. The result is a
// pure black/white bitmap.
func (e *Enhancer) Enhance(img image.Image) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	gray := imaging.Grayscale(img)

	if e.cfg.Denoise {
		gray = imaging.Blur(gray, e.cfg.DenoiseSigma)
	}

	// Sigmoid contrast pushes mid grays apart so the threshold has a
	// cleaner valley to cut at.
	gray = imaging.AdjustSigmoid(gray, 0.5, 5.0)

	threshold := otsuThreshold(gray)
	binary := imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		// Grayscale image, the red channel is the luminance.
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
	if binary.Bounds().Empty() {
		return nil, fmt.Errorf("thresholding: %w", ErrEmptyImage)
	}

	if e.cfg.MorphClose {
		binary = closeBinary(binary)
	}

	if e.cfg.Deskew {
		angle := EstimateSkew(binary)
		if angle >= e.cfg.DeskewMinDegrees || angle <= -e.cfg.DeskewMinDegrees {
			rotated := imaging.Rotate(binary, angle, color.White)
			if rotated.Bounds().Empty() {
				return nil, fmt.Errorf("deskew rotation: %w", ErrEmptyImage)
			}
			binary = rotated
		}
	}

	return binary, nil
}

// otsuThreshold picks the gray level that minimizes intra-class variance
// over the luminance histogram.
func otsuThreshold(img *image.NRGBA) uint8 {
	var hist [256]int
	b := img.Bounds()
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x*4]]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumBack, weightBack float64
	var best float64
	threshold := 128
	for t := 0; t < 256; t++ {
		weightBack += float64(hist[t])
		if weightBack == 0 {
			continue
		}
		weightFore := float64(total) - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / weightBack
		meanFore := (sum - sumBack) / weightFore
		between := weightBack * weightFore * (meanBack - meanFore) * (meanBack - meanFore)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// closeBinary performs a 3x3 morphological close (dilate then erode) on a
// black/white image, treating black as foreground.
func closeBinary(img *image.NRGBA) *image.NRGBA {
	fg := toMask(img)
	fg = dilate(fg)
	fg = erode(fg)
	return fromMask(fg, img.Bounds())
}

type mask struct {
	w, h int
	bits []bool
}

func toMask(img *image.NRGBA) mask {
	b := img.Bounds()
	m := mask{w: b.Dx(), h: b.Dy(), bits: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < m.h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.w; x++ {
			m.bits[y*m.w+x] = row[x*4] < 128
		}
	}
	return m
}

func fromMask(m mask, bounds image.Rectangle) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.w, m.h))
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			v := uint8(255)
			if m.bits[y*m.w+x] {
				v = 0
			}
			i := y*out.Stride + x*4
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = v, v, v, 255
		}
	}
	return out
}

func dilate(m mask) mask {
	out := mask{w: m.w, h: m.h, bits: make([]bool, len(m.bits))}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if neighborhoodAny(m, x, y) {
				out.bits[y*m.w+x] = true
			}
		}
	}
	return out
}

func erode(m mask) mask {
	out := mask{w: m.w, h: m.h, bits: make([]bool, len(m.bits))}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if neighborhoodAll(m, x, y) {
				out.bits[y*m.w+x] = true
			}
		}
	}
	return out
}

func neighborhoodAny(m mask, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
				continue
			}
			if m.bits[ny*m.w+nx] {
				return true
			}
		}
	}
	return false
}

func neighborhoodAll(m mask, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
				return false
			}
			if !m.bits[ny*m.w+nx] {
				return false
			}
		}
	}
	return true
}
