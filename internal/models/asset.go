package models

import "fmt"

// AssetKind represents the role of a stored image (mirrors DB enum asset_kind)
type AssetKind string

const (
	AssetKindPanorama  AssetKind = "PANORAMA"
	AssetKindImage     AssetKind = "IMAGE"
	AssetKindThumbnail AssetKind = "THUMBNAIL"
	AssetKindLogo      AssetKind = "LOGO"
)

// Asset represents a stored image
// Backed by table `assets`
type Asset struct {
	ID      string    `json:"id" db:"asset_id"`
	Kind    AssetKind `json:"kind" db:"kind"`
	URL     string    `json:"url" db:"url"`
	Width   int       `json:"width" db:"width"`
	Height  int       `json:"height" db:"height"`
	AltText *string   `json:"alt_text,omitempty" db:"alt_text"`
}

// Panorama acceptance constraints: equirectangular 2:1 within 5% tolerance,
// at least 8000x4000 pixels.
const (
	PanoramaMinWidth        = 8000
	PanoramaMinHeight       = 4000
	PanoramaAspect          = 2.0
	PanoramaAspectTolerance = 0.05
)

// CheckPanoramaDimensions validates the pixel dimensions of a candidate
// panorama against the acceptance constraints above.
func CheckPanoramaDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	ratio := float64(width) / float64(height)
	if ratio < PanoramaAspect-PanoramaAspectTolerance || ratio > PanoramaAspect+PanoramaAspectTolerance {
		return fmt.Errorf("panorama must have a 2:1 aspect ratio, got %dx%d", width, height)
	}
	if width < PanoramaMinWidth || height < PanoramaMinHeight {
		return fmt.Errorf("panorama must be at least %dx%d pixels, got %dx%d",
			PanoramaMinWidth, PanoramaMinHeight, width, height)
	}
	return nil
}
