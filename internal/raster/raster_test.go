package raster

import (
	"errors"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRaster(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Raster Suite")
}

var _ = Describe("Rasterizer", func() {
	var (
		tempDir    string
		rasterizer *Rasterizer
		pages      []image.Image
		err        error
	)

	BeforeEach(func() {
		var mkErr error
		tempDir, mkErr = os.MkdirTemp("", "billscan-raster-*")
		Expect(mkErr).NotTo(HaveOccurred())

		rasterizer = New(Config{}, nil)
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	writePNG := func(name string, w, h int) string {
		path := filepath.Join(tempDir, name)
		f, createErr := os.Create(path)
		Expect(createErr).NotTo(HaveOccurred())
		defer f.Close()
		Expect(png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h)))).To(Succeed())
		return path
	}

	When("reading a PNG image", func() {
		var path string

		BeforeEach(func() {
			path = writePNG("bill.png", 640, 480)
		})

		JustBeforeEach(func() {
			pages, err = rasterizer.Pages(path)
		})

		It("should return a single page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
		})

		It("should keep small bitmaps at their original size", func() {
			Expect(pages[0].Bounds().Dx()).To(Equal(640))
			Expect(pages[0].Bounds().Dy()).To(Equal(480))
		})
	})

	When("reading a JPEG image", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(tempDir, "bill.jpg")
			img := imaging.New(320, 240, image.White.C)
			Expect(imaging.Save(img, path)).To(Succeed())
		})

		JustBeforeEach(func() {
			pages, err = rasterizer.Pages(path)
		})

		It("should return a single page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
		})
	})

	When("reading an oversized image", func() {
		var path string

		BeforeEach(func() {
			path = writePNG("huge.png", 3000, 1000)
		})

		JustBeforeEach(func() {
			pages, err = rasterizer.Pages(path)
		})

		It("should downscale to the bounding dimension preserving aspect ratio", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages[0].Bounds().Dx()).To(Equal(1200))
			Expect(pages[0].Bounds().Dy()).To(Equal(400))
		})
	})

	When("the file does not exist", func() {
		JustBeforeEach(func() {
			pages, err = rasterizer.Pages(filepath.Join(tempDir, "missing.png"))
		})

		It("should surface the filesystem error", func() {
			Expect(err).To(MatchError(fs.ErrNotExist))
		})
	})

	When("the file is not a known format", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(tempDir, "notes.txt")
			Expect(os.WriteFile(path, []byte("not an image at all"), 0644)).To(Succeed())
		})

		JustBeforeEach(func() {
			pages, err = rasterizer.Pages(path)
		})

		It("should return ErrUnsupported", func() {
			Expect(err).To(MatchError(ErrUnsupported))
		})
	})

	When("the file has a PNG signature but a corrupt body", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(tempDir, "truncated.png")
			data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage")...)
			Expect(os.WriteFile(path, data, 0644)).To(Succeed())
		})

		JustBeforeEach(func() {
			pages, err = rasterizer.Pages(path)
		})

		It("should report a decode failure, not an unsupported format", func() {
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrUnsupported)).To(BeFalse())
		})
	})
})

var _ = Describe("isHEIC", func() {
	It("should detect an ftyp box with a HEIC brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		data = append(data, make([]byte, 16)...)
		Expect(isHEIC(data)).To(BeTrue())
	})

	It("should reject PNG magic bytes", func() {
		Expect(isHEIC([]byte("\x89PNG\r\n\x1a\n____more____"))).To(BeFalse())
	})

	It("should reject short payloads", func() {
		Expect(isHEIC([]byte("ftyp"))).To(BeFalse())
	})
})
