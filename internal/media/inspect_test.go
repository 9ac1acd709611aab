package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestInspectPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode returned error: %v", err)
	}

	data, info, err := Inspect(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Fatalf("expected input bytes to be returned")
	}
	if info.ContentType != "image/png" || info.Extension != ".png" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Width != 4 || info.Height != 3 {
		t.Fatalf("expected 4x3, got %dx%d", info.Width, info.Height)
	}
}

func TestInspectRejectsNonImages(t *testing.T) {
	cases := map[string]string{
		"empty": "",
		"text":  "definitely not an image",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Inspect(strings.NewReader(payload))
			if !errors.Is(err, ErrUnsupportedImage) {
				t.Fatalf("expected ErrUnsupportedImage, got %v", err)
			}
		})
	}
}
