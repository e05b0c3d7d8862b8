package pipeline

import "errors"

var (
	ErrNotAnImage        = errors.New("source is not a supported image")
	ErrTooLarge          = errors.New("source exceeds size limit")
	ErrInvalidDimensions = errors.New("image dimensions out of range")
)

// Variants is the output of a transform: the compact WebP payload, the
// compatible JPEG payload, and the compact size reported as the photo's
// stored size.
type Variants struct {
	WebP []byte
	JPEG []byte
	Size int
}
