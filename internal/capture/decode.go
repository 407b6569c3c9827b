package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds decoded images when Limits.MaxPixels is unset.
const DefaultMaxPixels int64 = 40_000_000

// Limits bounds what Decode accepts. MaxBytes <= 0 disables the payload limit;
// MaxPixels <= 0 means DefaultMaxPixels.
type Limits struct {
	MaxBytes  int64
	MaxPixels int64
}

func (l Limits) maxPixels() int64 {
	if l.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return l.MaxPixels
}

// Decode fully decodes data and reports its format and dimensions.
// A header-only check is not enough: truncated bodies must fail here, not later.
// The header is read first so an oversized image is refused before any pixel is allocated.
func Decode(data []byte, lim Limits) (format string, width, height int, err error) {
	if len(data) == 0 {
		return "", 0, 0, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if lim.MaxBytes > 0 && int64(len(data)) > lim.MaxBytes {
		return "", 0, 0, fmt.Errorf("%w: payload of %d bytes exceeds limit of %d", ErrDecode, len(data), lim.MaxBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", 0, 0, fmt.Errorf("%w: empty bounds %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > lim.maxPixels() {
		return "", 0, 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, lim.maxPixels())
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return "", 0, 0, fmt.Errorf("%w: empty bounds %v", ErrDecode, b)
	}
	return format, b.Dx(), b.Dy(), nil
}
