// Package images prepares project images for the site.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

const jpegQuality = 80

// Info describes an encoded image.
type Info struct {
	Width  int
	Height int
	Size   int
}

// Resize decodes r, scales it down to maxWidth when it is wider, keeping the
// aspect ratio, and re-encodes it as JPEG.
func Resize(r io.Reader, maxWidth int) ([]byte, Info, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, Info{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), Info{Width: w, Height: h, Size: buf.Len()}, nil
}

// Save writes data to <dir>/<slug>.jpg and returns the path.
func Save(dir, slug string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	path := filepath.Join(dir, slug+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}
