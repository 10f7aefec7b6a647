package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache keeps decoded images keyed by the path they were loaded from.
//
// Once an image is loaded, later Load calls for the same path return the
// cached copy without touching the disk. Entries stay until Evict or Clear;
// a file rewritten on disk must be evicted to be seen again.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load returns the image at path, decoding it on first use.
//
// The path string is the cache key, so a relative and an absolute path to the
// same file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	entry = cachedImage{img: img, format: format}

	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes every image from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict removes one path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo describes a loaded image file.
type ImageInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Format is the decoder that read the file: "png", "jpeg", "gif",
	// "tiff", or "bmp".
	Format string `json:"format"`

	// ColorModel is "gray", "gray16", "rgb", "rgb16", "paletted", or
	// "ycbcr".
	ColorModel string `json:"color_model"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	model, depth, alpha := describeModel(entry.img)
	bounds := entry.img.Bounds()
	return &ImageInfo{
		Path:          path,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		ColorModel:    model,
		ColorDepth:    depth,
		HasAlpha:      alpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

func describeModel(img image.Image) (model, depth string, alpha bool) {
	switch img.(type) {
	case *image.Gray:
		return "gray", "8-bit", false
	case *image.Gray16:
		return "gray16", "16-bit", false
	case *image.RGBA, *image.NRGBA:
		return "rgb", "8-bit", true
	case *image.RGBA64, *image.NRGBA64:
		return "rgb16", "16-bit", true
	case *image.Paletted:
		return "paletted", "8-bit", true
	case *image.YCbCr:
		return "ycbcr", "8-bit", false
	case *image.CMYK:
		return "cmyk", "8-bit", false
	}
	return "unknown", "8-bit", false
}

// DimensionsResult is the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path through the cache and returns only its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
