package catalog

import (
	"fmt"
	"time"
)

// GPSLocation is a decimal-degree coordinate pair with optional altitude.
type GPSLocation struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude float64 `json:"altitude,omitempty"`
}

func (g GPSLocation) String() string {
	return fmt.Sprintf("%.6f, %.6f", g.Lat, g.Lng)
}

// Metadata holds the fields produced by the metadata extractor. Width and
// height are always set when the source decoded; everything else is optional
// and zero when the source carried no usable tags.
type Metadata struct {
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	AspectRatio  string       `json:"aspectRatio"`
	Megapixels   string       `json:"megapixels"`
	CaptureDate  *time.Time   `json:"captureDate,omitempty"`
	Camera       string       `json:"camera,omitempty"`
	Location     *GPSLocation `json:"location,omitempty"`
	Orientation  int          `json:"orientation,omitempty"`
	ExposureTime string       `json:"exposureTime,omitempty"`
	FNumber      string       `json:"fNumber,omitempty"`
	ISO          int          `json:"iso,omitempty"`
	FocalLength  string       `json:"focalLength,omitempty"`
	Flash        int          `json:"flash,omitempty"`
	Software     string       `json:"software,omitempty"`
}

// Photo is one ingested image with its derived metadata and assignment state.
// The two encoded payloads are session-only: they are excluded from JSON so a
// marshalled snapshot can never leak binary data into the record store.
type Photo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	Well         string `json:"well"`
	Category     string `json:"category"`
	Notes        string `json:"notes"`

	WebP []byte `json:"-"`
	JPEG []byte `json:"-"`

	Size         int64     `json:"size"`
	OriginalSize int64     `json:"originalSize"`
	MimeType     string    `json:"mimeType"`
	LastModified time.Time `json:"lastModified"`
	UploadedAt   time.Time `json:"uploadedAt"`
	CaptureTime  time.Time `json:"captureTime"`

	Meta           Metadata     `json:"metadata"`
	HasLongLag     bool         `json:"hasLongLag"`
	ManualLocation *GPSLocation `json:"manualLocation,omitempty"`
	SortOrder      int          `json:"sortOrder"`
}

// HasPayload reports whether either encoded variant is attached.
func (p *Photo) HasPayload() bool {
	return len(p.WebP) > 0 || len(p.JPEG) > 0
}

// Binary is the id-keyed pair of encoded variants owned by the binary store.
type Binary struct {
	WebP []byte
	JPEG []byte
}

// Well groups photos under a named well site.
type Well struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProjectInfo describes the working session.
type ProjectInfo struct {
	ClientName string     `json:"clientName"`
	JobName    string     `json:"jobName"`
	JobTime    *time.Time `json:"jobTime,omitempty"`
	Notes      string     `json:"notes"`
}

// Snapshot is the persisted unit: everything needed to reconstruct a session
// except the binary payloads, which the binary store owns.
type Snapshot struct {
	Version           string                 `json:"version"`
	Project           ProjectInfo            `json:"project"`
	Wells             []Well                 `json:"wells"`
	WellLocations     map[string]GPSLocation `json:"wellLocations"`
	Photos            []Photo                `json:"photos"`
	TotalOriginalSize int64                  `json:"totalOriginalSize"`
	TotalCompactSize  int64                  `json:"totalCompactSize"`
	SavedAt           time.Time              `json:"savedAt"`
}

// SnapshotVersion identifies the snapshot wire format.
const SnapshotVersion = "2.0"

// Statistics summarizes the catalog for status displays.
type Statistics struct {
	TotalPhotos      int
	OrganizedPhotos  int
	UnassignedPhotos int
	TotalWells       int
	SpaceSaved       int64
}
