package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// ImageResult is an encoded image returned to a client.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Path is set when the image was also written to disk.
	Path string `json:"path,omitempty"`
}

// EncodePNG encodes img as a base64 PNG. A scale other than 0 or 1 resizes
// the image first with nearest-neighbour sampling so mask edges stay sharp.
func EncodePNG(img image.Image, scale float64) (*ImageResult, error) {
	if scale < 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}
	if scale != 0 && scale != 1 {
		w := int(float64(img.Bounds().Dx()) * scale)
		h := int(float64(img.Bounds().Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %v leaves an empty image", scale)
		}
		img = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes img to path, choosing the format from the extension, and drops
// any stale cache entry for it.
func Save(cache *ImageCache, img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	if cache != nil {
		cache.Evict(path)
	}
	return nil
}
