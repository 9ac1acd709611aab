package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("media: unsupported image")

// Info describes a decoded image header.
type Info struct {
	ContentType string
	Extension   string
	Width       int
	Height      int
}

var formats = map[string]Info{
	"jpeg": {ContentType: "image/jpeg", Extension: ".jpg"},
	"png":  {ContentType: "image/png", Extension: ".png"},
	"gif":  {ContentType: "image/gif", Extension: ".gif"},
	"webp": {ContentType: "image/webp", Extension: ".webp"},
}

// Inspect reads the whole upload, checks that it decodes as a supported image
// and returns the bytes so the caller can upload them.
func Inspect(r io.Reader) ([]byte, Info, error) {
	if r == nil {
		return nil, Info{}, fmt.Errorf("%w: empty reader", ErrUnsupportedImage)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, Info{}, fmt.Errorf("%w: empty image data", ErrUnsupportedImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	info, ok := formats[format]
	if !ok {
		return nil, Info{}, fmt.Errorf("%w: format %s", ErrUnsupportedImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, Info{}, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	info.Width = cfg.Width
	info.Height = cfg.Height
	return data, info, nil
}
