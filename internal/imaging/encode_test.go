package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	img.SetGray(3, 4, color.Gray{Y: 255})

	res, err := EncodePNG(img, 1)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if res.MimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", res.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("decoded size = %v, want 20x10", b)
	}
	if r, _, _, _ := decoded.At(3, 4).RGBA(); r>>8 != 255 {
		t.Error("pixel (3,4) should survive encoding")
	}
}

func TestEncodePNG_Scale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))

	res, err := EncodePNG(img, 2)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Errorf("scaled size = %dx%d, want 40x20", res.Width, res.Height)
	}

	if _, err := EncodePNG(img, -1); err == nil {
		t.Error("negative scale should fail")
	}
	if _, err := EncodePNG(img, 0.01); err == nil {
		t.Error("scale collapsing the image should fail")
	}
}

func TestSave_EvictsCache(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "out.png")

	if err := Save(cache, image.NewGray(image.Rect(0, 0, 4, 4)), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := Save(cache, image.NewGray(image.Rect(0, 0, 8, 2)), path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 8 || dims.Height != 2 {
		t.Errorf("cache served a stale image: %dx%d", dims.Width, dims.Height)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}},
		{"00FF00", color.NRGBA{G: 255, A: 255}},
		{"#00f", color.NRGBA{B: 255, A: 255}},
		{"yellow", color.NRGBA{R: 255, G: 255, A: 255}},
		{" Cyan ", color.NRGBA{G: 255, B: 255, A: 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "#12", "not-a-color", "#gg0000"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		in   color.Color
		want string
	}{
		{color.NRGBA{R: 255, G: 255, A: 255}, "#ffff00"},
		{color.Gray{Y: 128}, "#808080"},
		{color.NRGBA{R: 10, G: 20, B: 30, A: 0}, "#0a141e"},
	}
	for _, tt := range tests {
		if got := ColorHex(tt.in); got != tt.want {
			t.Errorf("ColorHex(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
