package filters

import (
	"image"
	"image/color"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7 % 256), G: 120, B: uint8(y * 11 % 256), A: 255})
		}
	}
	return img
}

func TestParseChain(t *testing.T) {
	testCases := []struct {
		name    string
		raw     []string
		want    int
		wantErr bool
	}{
		{"empty", nil, 0, false},
		{"single", []string{"grayscale"}, 1, false},
		{"with values", []string{"brightness:12.5", "blur:2"}, 2, false},
		{"skips blanks", []string{"", " ", "invert"}, 1, false},
		{"unknown filter", []string{"posterize"}, 0, true},
		{"bad value", []string{"contrast:high"}, 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chain, err := ParseChain(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chain) != tc.want {
				t.Fatalf("len = %d, want %d", len(chain), tc.want)
			}
		})
	}
}

func TestApplyGrayscale(t *testing.T) {
	chain, err := ParseChain([]string{"grayscale"})
	if err != nil {
		t.Fatal(err)
	}
	out := chain.Apply(testImage(8, 8))
	r, g, b, _ := out.At(3, 3).RGBA()
	if r != g || g != b {
		t.Fatalf("pixel not gray: r=%d g=%d b=%d", r, g, b)
	}
}

func TestApplyPreservesDimensions(t *testing.T) {
	chain, err := ParseChain([]string{"brightness:10", "contrast:-5", "blur:1.5"})
	if err != nil {
		t.Fatal(err)
	}
	out := chain.Apply(testImage(12, 6))
	if out.Bounds().Dx() != 12 || out.Bounds().Dy() != 6 {
		t.Fatalf("bounds = %v", out.Bounds())
	}
}

func TestEncodeFormats(t *testing.T) {
	img := testImage(4, 4)
	for _, format := range []string{"png", "jpeg", ""} {
		data, err := Encode(img, format, 85)
		if err != nil {
			t.Fatalf("Encode(%q) returned error: %v", format, err)
		}
		if len(data) == 0 {
			t.Fatalf("Encode(%q) produced no bytes", format)
		}
	}
	if _, err := Encode(img, "tiff", 0); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestThumbnail(t *testing.T) {
	small := Thumbnail(testImage(10, 10), 64)
	if small.Bounds().Dx() != 10 {
		t.Fatalf("small image should not be resized, got %v", small.Bounds())
	}
	big := Thumbnail(testImage(200, 100), 64)
	if big.Bounds().Dx() != 64 || big.Bounds().Dy() != 32 {
		t.Fatalf("thumbnail bounds = %v, want 64x32", big.Bounds())
	}
}
