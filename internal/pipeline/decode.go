package pipeline

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	webp "github.com/chai2010/webp"

	"fieldshot/internal/config"
)

// DetectFormat returns the sniffed MIME type of data.
func DetectFormat(data []byte) string {
	n := len(data)
	if n > 512 {
		n = 512
	}
	return http.DetectContentType(data[:n])
}

// Decode sniffs the content type and decodes data into a pixel image. It
// rejects non-images, oversized sources and out-of-range dimensions.
func Decode(data []byte) (image.Image, string, error) {
	if int64(len(data)) > config.MaxSourceBytes {
		return nil, "", ErrTooLarge
	}

	ct := DetectFormat(data)

	var img image.Image
	var err error
	switch {
	case strings.HasPrefix(ct, "image/jpeg"):
		img, err = jpeg.Decode(bytes.NewReader(data))
	case strings.HasPrefix(ct, "image/png"):
		img, err = png.Decode(bytes.NewReader(data))
	case strings.HasPrefix(ct, "image/gif"):
		img, err = gif.Decode(bytes.NewReader(data))
	case strings.HasPrefix(ct, "image/webp"):
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, ct, ErrNotAnImage
	}
	if err != nil {
		return nil, ct, err
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || b.Dx() > config.MaxDimension || b.Dy() > config.MaxDimension {
		return nil, ct, ErrInvalidDimensions
	}
	return img, ct, nil
}
