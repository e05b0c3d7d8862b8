// Package pipeline implements the transform engine and metadata extractor:
// decode -> EXIF orientation -> bounded resize -> dual encode (compact WebP
// plus compatible JPEG).
package pipeline

import "fmt"

// Transform re-encodes raw image bytes into the two stored variants.
//
// The orientation transform runs before scaling, so codes 5-8 swap the
// logical envelope exactly once. The image is never upscaled. Both variants
// are encoded at the same quality; the reported Size is the compact WebP
// byte size.
//
// Transform is side-effect-free and reentrant: it runs identically on a pool
// worker or on the calling goroutine.
func Transform(data []byte, orientation, maxWidth, maxHeight, quality int) (Variants, error) {
	img, _, err := Decode(data)
	if err != nil {
		return Variants{}, fmt.Errorf("decode: %w", err)
	}

	img = orient(img, orientation)
	img = fit(img, maxWidth, maxHeight)

	webpData, err := EncodeWebP(img, quality)
	if err != nil {
		return Variants{}, fmt.Errorf("encode webp: %w", err)
	}
	jpegData, err := EncodeJPEG(img, quality)
	if err != nil {
		return Variants{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Variants{WebP: webpData, JPEG: jpegData, Size: len(webpData)}, nil
}
