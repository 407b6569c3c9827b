package types

import "time"

// CaptureSource identifies which producer created a CapturedImage
type CaptureSource string

const (
	SourceCamera CaptureSource = "camera"
	SourceUpload CaptureSource = "upload"
)

// CapturedImage is one still image produced by a camera snapshot or a file upload.
// It is never mutated after creation and is dropped when the next capture starts.
type CapturedImage struct {
	ID         string        `json:"id"`
	Source     CaptureSource `json:"source"`
	Format     string        `json:"format"` // decoder name: png, jpeg, gif, webp, bmp, tiff
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Data       []byte        `json:"-"`
	CapturedAt time.Time     `json:"captured_at"`
}

// ImageMeta is the part of a CapturedImage that may leave the orchestrator
type ImageMeta struct {
	ID     string        `json:"id"`
	Source CaptureSource `json:"source"`
	Format string        `json:"format"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Bytes  int           `json:"bytes"`
}

// Meta strips the pixel payload.
func (c *CapturedImage) Meta() ImageMeta {
	return ImageMeta{
		ID:     c.ID,
		Source: c.Source,
		Format: c.Format,
		Width:  c.Width,
		Height: c.Height,
		Bytes:  len(c.Data),
	}
}

// StreamConstraints mirrors the hints passed to a camera when a live stream is requested
type StreamConstraints struct {
	FacingMode  string `json:"facing_mode"` // "environment" or "user"
	IdealWidth  int    `json:"ideal_width"`
	IdealHeight int    `json:"ideal_height"`
}

// DefaultStreamConstraints asks for the rear camera at full HD.
func DefaultStreamConstraints() StreamConstraints {
	return StreamConstraints{
		FacingMode:  "environment",
		IdealWidth:  1920,
		IdealHeight: 1080,
	}
}

// WithDefaults fills zero fields from DefaultStreamConstraints
func (s StreamConstraints) WithDefaults() StreamConstraints {
	return s.Merge(DefaultStreamConstraints())
}

// Merge fills zero fields of s from def.
func (s StreamConstraints) Merge(def StreamConstraints) StreamConstraints {
	if s.FacingMode == "" {
		s.FacingMode = def.FacingMode
	}
	if s.IdealWidth <= 0 {
		s.IdealWidth = def.IdealWidth
	}
	if s.IdealHeight <= 0 {
		s.IdealHeight = def.IdealHeight
	}
	return s
}
