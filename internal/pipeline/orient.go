package pipeline

import (
	"image"

	"github.com/disintegration/imaging"
)

// SwapsDimensions reports whether an EXIF orientation implies a 90 or 270
// degree rotation, i.e. the logical width and height are swapped.
func SwapsDimensions(orientation int) bool {
	switch orientation {
	case 5, 6, 7, 8:
		return true
	}
	return false
}

// orient applies the EXIF orientation transform for codes 1-8. Unknown or
// zero values return the image unchanged.
func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
