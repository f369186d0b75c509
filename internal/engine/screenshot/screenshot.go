// Package screenshot saves viewer frames as PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture writes frames read back from the GL framebuffer into a directory.
type Capture struct {
	dir string
	now func() time.Time
}

// New creates a capture writing into dir. The directory is created on the
// first save.
func New(dir string) *Capture {
	return &Capture{dir: dir, now: time.Now}
}

// Save encodes RGBA pixels in GL row order (bottom row first) as a PNG named
// after prefix and the current time, and returns the file path.
func (c *Capture) Save(prefix string, pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := c.filename(prefix)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize // GL origin is bottom-left
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// filename picks a name that does not exist yet, adding a counter when two
// captures land in the same second.
func (c *Capture) filename(prefix string) string {
	if prefix == "" {
		prefix = "screenshot"
	}
	base := fmt.Sprintf("%s-%s", prefix, c.now().Format("20060102-150405"))
	path := filepath.Join(c.dir, base+".png")
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(c.dir, fmt.Sprintf("%s-%d.png", base, i))
	}
}
