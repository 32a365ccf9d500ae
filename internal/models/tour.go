package models

import "time"

// Visibility controls who can open a project through a viewer link (mirrors DB enum project_visibility)
type Visibility string

const (
	VisibilityPublic     Visibility = "PUBLIC"
	VisibilityPrivate    Visibility = "PRIVATE"
	VisibilityInviteOnly Visibility = "INVITE_ONLY"
)

// Project represents a tour project owned by an organization.
// The slug is the external addressing key for public viewer links.
// Backed by table `projects`
type Project struct {
	ID               string     `json:"id" db:"project_id"`
	OrgID            string     `json:"org_id" db:"org_id"`
	Name             string     `json:"name" db:"name"`
	Slug             string     `json:"slug" db:"slug"`
	Visibility       Visibility `json:"visibility" db:"visibility"`
	Portfolio        bool       `json:"portfolio" db:"portfolio"`
	Description      string     `json:"description" db:"description"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	HeroImageAssetID *string    `json:"hero_image_asset_id,omitempty" db:"hero_image_asset_id"`
	BuildingIDs      []string   `json:"building_ids" db:"building_ids"`
	Tags             []string   `json:"tags" db:"tags"`
}

// Building groups the flats of one physical structure
// Backed by table `buildings`
type Building struct {
	ID        string   `json:"id" db:"building_id"`
	ProjectID string   `json:"project_id" db:"project_id"`
	Name      string   `json:"name" db:"name"`
	Address   *string  `json:"address,omitempty" db:"address"`
	FlatIDs   []string `json:"flat_ids" db:"flat_ids"`
}

// Flat is a unit on one level of a building
// Backed by table `flats`
type Flat struct {
	ID         string   `json:"id" db:"flat_id"`
	BuildingID string   `json:"building_id" db:"building_id"`
	Name       string   `json:"name" db:"name"`
	Level      int      `json:"level" db:"level"`
	RoomIDs    []string `json:"room_ids" db:"room_ids"`
}

// Room holds the panoramic views captured inside one room
// Backed by table `rooms`
type Room struct {
	ID          string   `json:"id" db:"room_id"`
	FlatID      string   `json:"flat_id" db:"flat_id"`
	Name        string   `json:"name" db:"name"`
	Description *string  `json:"description,omitempty" db:"description"`
	ViewIDs     []string `json:"view_ids" db:"view_ids"`
}

// View is a single panoramic scene of a room. DefaultYaw/DefaultPitch are
// degrees in the canonical ranges; the viewer opens the scene facing them.
// Backed by table `views`
type View struct {
	ID              string    `json:"id" db:"view_id"`
	RoomID          string    `json:"room_id" db:"room_id"`
	Name            string    `json:"name" db:"name"`
	PanoramaAssetID string    `json:"panorama_asset_id" db:"panorama_asset_id"`
	Description     *string   `json:"description,omitempty" db:"description"`
	DefaultYaw      float64   `json:"default_yaw" db:"default_yaw"`
	DefaultPitch    float64   `json:"default_pitch" db:"default_pitch"`
	Compass         *float64  `json:"compass,omitempty" db:"compass"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Pin is a clickable hotspot anchored on the sphere of its origin view.
// Yaw/Pitch are defined in the origin view's spherical space. When
// TargetViewID is nil, navigation falls to the target room's first view.
// Backed by table `pins`
type Pin struct {
	ID           string  `json:"id" db:"pin_id"`
	FromViewID   string  `json:"from_view_id" db:"from_view_id"`
	Label        string  `json:"label" db:"label"`
	TargetRoomID string  `json:"target_room_id" db:"target_room_id"`
	TargetViewID *string `json:"target_view_id,omitempty" db:"target_view_id"`
	Yaw          float64 `json:"yaw" db:"yaw"`
	Pitch        float64 `json:"pitch" db:"pitch"`
}

// ProjectSharing holds the share settings of one project
// Backed by table `project_sharing`
type ProjectSharing struct {
	ProjectID         string     `json:"project_id" db:"project_id"`
	Restriction       Visibility `json:"restriction" db:"restriction"`
	Invitees          []string   `json:"invitees" db:"invitees"`
	PasswordProtected bool       `json:"password_protected" db:"password_protected"`
}

// ProjectAnalytics summarizes viewer activity for one project
// Backed by table `project_analytics`
type ProjectAnalytics struct {
	ProjectID           string    `json:"project_id" db:"project_id"`
	TotalViews          int       `json:"total_views" db:"total_views"`
	SnapshotsDownloaded int       `json:"snapshots_downloaded" db:"snapshots_downloaded"`
	LastViewedAt        time.Time `json:"last_viewed_at" db:"last_viewed_at"`
}
