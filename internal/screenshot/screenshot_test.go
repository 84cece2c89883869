package screenshot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFilenameUniqueWithinSecond(t *testing.T) {
	c := New("shots", "globe")
	c.now = fixedClock(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))

	a := c.Filename()
	b := c.Filename()
	if a == b {
		t.Fatalf("expected distinct names, got %s twice", a)
	}
	if want := filepath.Join("shots", "globe_2024-05-01_12-30-00.png"); a != want {
		t.Errorf("expected %s, got %s", want, a)
	}
	if !strings.HasSuffix(b, "_1.png") {
		t.Errorf("expected numeric suffix, got %s", b)
	}

	c.now = fixedClock(time.Date(2024, 5, 1, 12, 30, 1, 0, time.UTC))
	if n := c.Filename(); strings.HasSuffix(n, "_1.png") || strings.HasSuffix(n, "_2.png") {
		t.Errorf("expected suffix reset on new second, got %s", n)
	}
}

func TestDefaultPrefix(t *testing.T) {
	c := New("", "")
	if !strings.HasPrefix(filepath.Base(c.Filename()), "screenshot_") {
		t.Error("expected default prefix")
	}
}

func TestSavePixelsFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	c := New(dir, "t")

	// 1x2, bottom row red, top row blue, as GL returns it.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := c.SavePixels(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	top := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	if top.B != 255 || top.R != 0 {
		t.Errorf("expected blue on top, got %v", top)
	}
}

func TestSavePixelsSizeMismatch(t *testing.T) {
	c := New(t.TempDir(), "t")
	if _, err := c.SavePixels(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestSaveImage(t *testing.T) {
	c := New(t.TempDir(), "img")
	path, err := c.Save(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != c.Dir() {
		t.Errorf("expected file in %s, got %s", c.Dir(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}
