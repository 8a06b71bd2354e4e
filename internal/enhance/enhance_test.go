package enhance

import (
	"image"
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEnhance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Enhance Suite")
}

// flatImage fills a bitmap with a single gray level.
func flatImage(w, h int, level uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = level, level, level, 255
	}
	return img
}

// textLines draws dark horizontal line segments on a light background,
// sheared by the given angle in degrees, mimicking rows of printed text.
func textLines(w, h int, degrees float64) *image.NRGBA {
	img := flatImage(w, h, 230)
	tan := math.Tan(degrees * math.Pi / 180)
	for base := 20; base < h-20; base += 16 {
		for x := 10; x < w-10; x++ {
			y := base + int(float64(x)*tan)
			for dy := 0; dy < 3; dy++ {
				if y+dy >= 0 && y+dy < h {
					i := (y+dy)*img.Stride + x*4
					img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 20, 20, 20
				}
			}
		}
	}
	return img
}

var _ = Describe("Enhancer", func() {
	var (
		enhancer *Enhancer
		input    image.Image
		output   *image.NRGBA
		err      error
	)

	BeforeEach(func() {
		enhancer = New(DefaultConfig())
	})

	JustBeforeEach(func() {
		output, err = enhancer.Enhance(input)
	})

	When("enhancing a nil image", func() {
		BeforeEach(func() {
			input = nil
		})

		It("should return ErrEmptyImage", func() {
			Expect(err).To(MatchError(ErrEmptyImage))
		})
	})

	When("enhancing an empty image", func() {
		BeforeEach(func() {
			input = image.NewNRGBA(image.Rect(0, 0, 0, 0))
		})

		It("should return ErrEmptyImage", func() {
			Expect(err).To(MatchError(ErrEmptyImage))
		})
	})

	When("enhancing a document-like bitmap", func() {
		BeforeEach(func() {
			input = textLines(200, 160, 0)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should produce a strictly black/white bitmap", func() {
			for i := 0; i < len(output.Pix); i += 4 {
				Expect(output.Pix[i]).To(SatisfyAny(Equal(uint8(0)), Equal(uint8(255))))
			}
		})

		It("should keep dark strokes as foreground", func() {
			black := 0
			for i := 0; i < len(output.Pix); i += 4 {
				if output.Pix[i] == 0 {
					black++
				}
			}
			Expect(black).To(BeNumerically(">", 0))
		})
	})

	When("enhancing a uniform image", func() {
		BeforeEach(func() {
			input = flatImage(64, 64, 255)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

var _ = Describe("otsuThreshold", func() {
	It("should split a bimodal histogram between the modes", func() {
		img := flatImage(100, 100, 220)
		// Paint a dark block, a quarter of the image.
		for y := 0; y < 50; y++ {
			for x := 0; x < 50; x++ {
				i := y*img.Stride + x*4
				img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 40, 40, 40
			}
		}

		t := otsuThreshold(img)
		Expect(t).To(BeNumerically(">=", 40))
		Expect(t).To(BeNumerically("<", 220))
	})
})

var _ = Describe("EstimateSkew", func() {
	It("should report near-zero skew for straight lines", func() {
		img := textLines(300, 200, 0)
		Expect(math.Abs(EstimateSkew(img))).To(BeNumerically("<", 0.5))
	})

	It("should recover the angle that flattens sheared lines", func() {
		for _, shear := range []float64{2.0, -2.0} {
			img := textLines(300, 200, shear)
			estimate := EstimateSkew(img)
			// Lines drawn as y = base + x*tan(shear) flatten when the
			// projection angle cancels the shear.
			Expect(estimate).To(BeNumerically("~", -shear, 0.5))
		}
	})
})

var _ = Describe("closeBinary", func() {
	It("should fill single-pixel holes in strokes", func() {
		img := flatImage(32, 32, 255)
		// Solid 6x6 black block with a white pinhole in the middle.
		for y := 12; y < 18; y++ {
			for x := 12; x < 18; x++ {
				i := y*img.Stride + x*4
				img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 0, 0, 0
			}
		}
		hole := 15*img.Stride + 15*4
		img.Pix[hole], img.Pix[hole+1], img.Pix[hole+2] = 255, 255, 255

		out := closeBinary(img)
		Expect(out.Pix[hole]).To(Equal(uint8(0)))
	})
})
