// Package tourtest provides the shared demo-tour fixture used across the
// core package tests: one project with a single building, two flats, four
// rooms and a small pin graph between the rooms.
package tourtest

import (
	"time"

	"github.com/demointeriors/tour-service/internal/hierarchy"
	"github.com/demointeriors/tour-service/internal/models"
)

func ptr[T any](v T) *T { return &v }

// Collections returns the flat entity snapshot of the "Modern Flat Tour"
// demo project.
func Collections() hierarchy.Collections {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	return hierarchy.Collections{
		Projects: []models.Project{
			{
				ID:          "project-modern-flat",
				OrgID:       "org1",
				Name:        "Modern Flat Tour",
				Slug:        "modern-flat-tour",
				Visibility:  models.VisibilityPublic,
				Portfolio:   true,
				Description: "A bright, modern flat showcasing open living spaces.",
				UpdatedAt:   created.Add(13 * 24 * time.Hour),
				BuildingIDs: []string{"building-sunrise-residency"},
				Tags:        []string{"modern", "flat", "demo"},
			},
		},
		Buildings: []models.Building{
			{
				ID:        "building-sunrise-residency",
				ProjectID: "project-modern-flat",
				Name:      "Sunrise Residency",
				Address:   ptr("Sector 12, Downtown"),
				FlatIDs:   []string{"flat-a-101", "flat-a-102"},
			},
		},
		Flats: []models.Flat{
			{ID: "flat-a-101", BuildingID: "building-sunrise-residency", Name: "Flat A-101", Level: 10,
				RoomIDs: []string{"room-living", "room-bedroom", "room-kitchen"}},
			{ID: "flat-a-102", BuildingID: "building-sunrise-residency", Name: "Flat A-102", Level: 10,
				RoomIDs: []string{"room-study"}},
		},
		Rooms: []models.Room{
			{ID: "room-living", FlatID: "flat-a-101", Name: "Living Room",
				ViewIDs: []string{"view-living-day", "view-living-dusk"}},
			{ID: "room-bedroom", FlatID: "flat-a-101", Name: "Bedroom",
				ViewIDs: []string{"view-bedroom-night"}},
			{ID: "room-kitchen", FlatID: "flat-a-101", Name: "Kitchen",
				ViewIDs: []string{"view-kitchen-service"}},
			{ID: "room-study", FlatID: "flat-a-102", Name: "Study",
				ViewIDs: []string{}},
		},
		Views: []models.View{
			{ID: "view-living-day", RoomID: "room-living", Name: "Living Day",
				PanoramaAssetID: "asset-pano-livingroom-day", DefaultYaw: 10, DefaultPitch: 0, CreatedAt: created},
			{ID: "view-living-dusk", RoomID: "room-living", Name: "Living Dusk",
				PanoramaAssetID: "asset-pano-livingroom-dusk", DefaultYaw: -25, DefaultPitch: -2, CreatedAt: created},
			{ID: "view-bedroom-night", RoomID: "room-bedroom", Name: "Bedroom Night",
				PanoramaAssetID: "asset-pano-bedroom-night", DefaultYaw: 0, DefaultPitch: 0, CreatedAt: created},
			{ID: "view-kitchen-service", RoomID: "room-kitchen", Name: "Kitchen Service",
				PanoramaAssetID: "asset-pano-kitchen-chef", DefaultYaw: 90, DefaultPitch: -5, CreatedAt: created},
		},
		Pins: []models.Pin{
			{ID: "pin-living-to-bedroom", FromViewID: "view-living-day", Label: "Go to Bedroom",
				TargetRoomID: "room-bedroom", TargetViewID: ptr("view-bedroom-night"), Yaw: 45, Pitch: -5},
			{ID: "pin-living-to-kitchen", FromViewID: "view-living-day", Label: "Kitchen",
				TargetRoomID: "room-kitchen", Yaw: -160, Pitch: -3},
			{ID: "pin-bedroom-to-living", FromViewID: "view-bedroom-night", Label: "Back to Living",
				TargetRoomID: "room-living", TargetViewID: ptr("view-living-dusk"), Yaw: -90, Pitch: 0},
			{ID: "pin-kitchen-to-living", FromViewID: "view-kitchen-service", Label: "Living Room",
				TargetRoomID: "room-living", TargetViewID: ptr("view-living-day"), Yaw: 140, Pitch: -10},
			{ID: "pin-living-dusk-to-bedroom", FromViewID: "view-living-dusk", Label: "Bedroom",
				TargetRoomID: "room-bedroom", TargetViewID: ptr("view-bedroom-night"), Yaw: 80, Pitch: -4},
		},
	}
}

// Assets returns the panorama assets referenced by the fixture views,
// keyed by id.
func Assets() map[string]models.Asset {
	ids := []string{
		"asset-pano-livingroom-day",
		"asset-pano-livingroom-dusk",
		"asset-pano-bedroom-night",
		"asset-pano-kitchen-chef",
	}
	assets := make(map[string]models.Asset, len(ids))
	for _, id := range ids {
		assets[id] = models.Asset{
			ID:     id,
			Kind:   models.AssetKindPanorama,
			URL:    "https://assets.demointeriors.com/panos/" + id + ".jpg",
			Width:  8000,
			Height: 4000,
		}
	}
	return assets
}

// Tree builds the denormalized hierarchy of the fixture project. It
// panics on error so fixtures stay usable from variable initializers.
func Tree() *hierarchy.ProjectHierarchy {
	tree, err := hierarchy.Build("project-modern-flat", Collections())
	if err != nil {
		panic(err)
	}
	return tree
}
