package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestProbeDimensions(t *testing.T) {
	gen := NewImageGenerator()

	dims, err := gen.ProbeDimensions(encodePNG(t, 640, 480))
	if err != nil {
		t.Fatalf("ProbeDimensions() error = %v", err)
	}
	if dims.Width != 640 || dims.Height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", dims.Width, dims.Height)
	}

	if _, err := gen.ProbeDimensions([]byte("not an image")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestResizeCoverAndCrop(t *testing.T) {
	gen := NewImageGenerator()

	tests := []struct {
		name       string
		srcW, srcH int
		spec       VariantSpec
		wantW      int
		wantH      int
	}{
		{
			name: "landscape covers square box",
			srcW: 600, srcH: 400,
			spec:  VariantSpec{Name: VariantThumbnail, Width: 150, Height: 150, Quality: 85},
			wantW: 150, wantH: 150,
		},
		{
			name: "portrait covers square box",
			srcW: 400, srcH: 600,
			spec:  VariantSpec{Name: VariantSmall, Width: 300, Height: 300, Quality: 85},
			wantW: 300, wantH: 300,
		},
		{
			name: "smaller source is never enlarged",
			srcW: 100, srcH: 50,
			spec:  VariantSpec{Name: VariantThumbnail, Width: 150, Height: 150, Quality: 85},
			wantW: 100, wantH: 50,
		},
		{
			name: "exact match passes through",
			srcW: 300, srcH: 300,
			spec:  VariantSpec{Name: VariantSmall, Width: 300, Height: 300, Quality: 85},
			wantW: 300, wantH: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, dims, err := gen.Resize(encodePNG(t, tt.srcW, tt.srcH), tt.spec)
			if err != nil {
				t.Fatalf("Resize() error = %v", err)
			}
			if dims.Width != tt.wantW || dims.Height != tt.wantH {
				t.Errorf("dims = %dx%d, want %dx%d", dims.Width, dims.Height, tt.wantW, tt.wantH)
			}

			// the output must itself decode to the reported size
			decoded, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("variant does not decode: %v", err)
			}
			b := decoded.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("decoded = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeRejectsGarbage(t *testing.T) {
	gen := NewImageGenerator()
	if _, _, err := gen.Resize([]byte("junk"), DefaultVariantSpecs()[0]); err == nil {
		t.Error("expected error for undecodable input")
	}
}
