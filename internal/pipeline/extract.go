package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"log"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"fieldshot/internal/catalog"

	// Register decoders so image.DecodeConfig can read dimensions for every
	// accepted format without a full pixel decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

func init() {
	// Vendor-specific maker note parsers (Canon, Nikon et al).
	exif.RegisterParsers(mknote.All...)
}

// ExtractMetadata reads pixel dimensions and EXIF tags from a raw image
// file. It never fails: when the source cannot be decoded or its tags are
// corrupt, the returned record carries whatever could be read, down to an
// all-zero record in the worst case. Dimensions are read independently of
// tag parsing so a corrupt-tag file still yields usable width and height.
func ExtractMetadata(name string, data []byte) catalog.Metadata {
	var meta catalog.Metadata

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
		if cfg.Height > 0 {
			meta.AspectRatio = fmt.Sprintf("%.2f", float64(cfg.Width)/float64(cfg.Height))
		}
		meta.Megapixels = fmt.Sprintf("%.1f", float64(cfg.Width)*float64(cfg.Height)/1e6)
	} else {
		log.Printf("pipeline: no decodable dimensions in %s: %v", name, err)
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// Common for PNG and screenshots; the dimensional record stands.
		return meta
	}

	if dt, err := x.DateTime(); err == nil {
		meta.CaptureDate = &dt
	}
	meta.Camera = cameraName(x)
	if lat, lng, err := x.LatLong(); err == nil {
		loc := &catalog.GPSLocation{Lat: lat, Lng: lng}
		if tag, err := x.Get(exif.GPSAltitude); err == nil {
			if num, den, err := tag.Rat2(0); err == nil && den != 0 {
				loc.Altitude = float64(num) / float64(den)
			}
		}
		meta.Location = loc
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil && o >= 1 && o <= 8 {
			meta.Orientation = o
		}
	}
	if meta.Orientation == 0 {
		meta.Orientation = 1
	}
	meta.ExposureTime = exposureString(x)
	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			meta.FNumber = fmt.Sprintf("f/%.1f", float64(num)/float64(den))
		}
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			meta.ISO = iso
		}
	}
	if tag, err := x.Get(exif.FocalLength); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			meta.FocalLength = fmt.Sprintf("%gmm", float64(num)/float64(den))
		}
	}
	if tag, err := x.Get(exif.Flash); err == nil {
		if f, err := tag.Int(0); err == nil {
			meta.Flash = f
		}
	}
	if tag, err := x.Get(exif.Software); err == nil {
		if s, err := tag.StringVal(); err == nil {
			meta.Software = s
		}
	}

	return meta
}

func cameraName(x *exif.Exif) string {
	var vendor, model string
	if tag, err := x.Get(exif.Make); err == nil {
		vendor, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Model); err == nil {
		model, _ = tag.StringVal()
	}
	switch {
	case vendor != "" && model != "":
		return vendor + " " + model
	case vendor != "":
		return vendor
	default:
		return model
	}
}

func exposureString(x *exif.Exif) string {
	tag, err := x.Get(exif.ExposureTime)
	if err != nil {
		return ""
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 || num == 0 {
		return ""
	}
	v := float64(num) / float64(den)
	if v < 1 {
		return fmt.Sprintf("1/%.0fs", 1/v)
	}
	return fmt.Sprintf("%gs", v)
}
