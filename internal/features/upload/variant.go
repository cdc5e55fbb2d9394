package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Dimensions holds pixel width and height of a raster image
type Dimensions struct {
	Width  int
	Height int
}

// VariantGenerator produces resized raster copies of an original image.
// It is an optional collaborator: a nil generator degrades variant
// generation to a no-op and dimension probing to "unset".
type VariantGenerator interface {
	ProbeDimensions(data []byte) (Dimensions, error)
	Resize(data []byte, spec VariantSpec) ([]byte, Dimensions, error)
}

// ImageGenerator implements VariantGenerator for png, jpeg and gif
type ImageGenerator struct{}

func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{}
}

func (g *ImageGenerator) ProbeDimensions(data []byte) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Resize scales the image to cover the requested box and crops the
// center. Images smaller than the box are never enlarged; the crop is
// then bounded by the source size, so actual output dimensions may
// differ from the request.
func (g *ImageGenerator) Resize(data []byte, spec VariantSpec) ([]byte, Dimensions, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Dimensions{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	if sw == 0 || sh == 0 {
		return nil, Dimensions{}, fmt.Errorf("image has zero dimensions")
	}

	scale := maxFloat(float64(spec.Width)/float64(sw), float64(spec.Height)/float64(sh))

	var scaled image.Image
	if scale >= 1 {
		// No enlargement: crop the source directly
		scaled = src
	} else {
		w := int(float64(sw)*scale + 0.5)
		h := int(float64(sh)*scale + 0.5)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		scaled = dst
	}

	out := cropCenter(scaled, spec.Width, spec.Height)
	dims := Dimensions{Width: out.Bounds().Dx(), Height: out.Bounds().Dy()}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		quality := spec.Quality
		if quality <= 0 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality})
	case "gif":
		err = gif.Encode(&buf, out, nil)
	default:
		err = png.Encode(&buf, out)
	}
	if err != nil {
		return nil, Dimensions{}, fmt.Errorf("failed to encode variant: %w", err)
	}

	return buf.Bytes(), dims, nil
}

// cropCenter returns the centered w×h window of img, clamped to the
// image size.
func cropCenter(img image.Image, w, h int) image.Image {
	bounds := img.Bounds()
	if w > bounds.Dx() {
		w = bounds.Dx()
	}
	if h > bounds.Dy() {
		h = bounds.Dy()
	}

	x0 := bounds.Min.X + (bounds.Dx()-w)/2
	y0 := bounds.Min.Y + (bounds.Dy()-h)/2
	rect := image.Rect(x0, y0, x0+w, y0+h)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
