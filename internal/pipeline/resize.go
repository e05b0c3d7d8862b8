package pipeline

import (
	"image"

	"github.com/disintegration/imaging"
)

// fit reduces img to fit within maxWidth x maxHeight, preserving aspect
// ratio. Does not upscale smaller images.
func fit(img image.Image, maxWidth, maxHeight int) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w <= 0 || h <= 0 {
		return img
	}
	if w <= maxWidth && h <= maxHeight {
		return img
	}

	nw, nh := boundedDimensions(w, h, maxWidth, maxHeight)
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// boundedDimensions scales (w, h) by min(maxW/w, maxH/h), never above 1.
func boundedDimensions(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return w, h
	}
	rw := float64(maxW) / float64(w)
	rh := float64(maxH) / float64(h)
	ratio := rw
	if rh < ratio {
		ratio = rh
	}
	if ratio >= 1 {
		return w, h
	}
	nw := int(float64(w)*ratio + 0.5)
	nh := int(float64(h)*ratio + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
