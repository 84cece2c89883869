// Package screenshot saves rendered frames as PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-globe/internal/logger"
)

// Capture names and writes screenshots into one directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time

	mu   sync.Mutex
	last string
	seq  int
}

// New creates a capture handler writing <dir>/<prefix>_<timestamp>.png.
func New(outputDir, prefix string) *Capture {
	if prefix == "" {
		prefix = "screenshot"
	}
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Dir returns the output directory.
func (c *Capture) Dir() string { return c.outputDir }

// SetDir sets the output directory for screenshots.
func (c *Capture) SetDir(dir string) {
	c.mu.Lock()
	c.outputDir = dir
	c.mu.Unlock()
}

// Filename returns the next screenshot path without saving. Captures
// within the same second get a numeric suffix.
func (c *Capture) Filename() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := c.now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s_%s", c.prefix, stamp)
	if stamp == c.last {
		c.seq++
		name = fmt.Sprintf("%s_%d", name, c.seq)
	} else {
		c.last = stamp
		c.seq = 0
	}
	return filepath.Join(c.outputDir, name+".png")
}

// Save encodes img to the next screenshot path and returns it.
func (c *Capture) Save(img image.Image) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := c.Filename()

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	logger.Info("screenshot saved", zap.String("path", filename))
	return filename, nil
}

// SavePixels saves bottom-up RGBA pixels as read back from the GPU.
func (c *Capture) SavePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return c.Save(img)
}
