package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetAsset returns one asset by ID
func (db *Database) GetAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	query := `
        SELECT
          asset_id::text,
          kind::text,
          url,
          width,
          height,
          alt_text
        FROM assets
        WHERE asset_id = $1
    `
	var a models.Asset
	err := db.Pool.QueryRow(ctx, query, assetID).Scan(
		&a.ID,
		&a.Kind,
		&a.URL,
		&a.Width,
		&a.Height,
		&a.AltText,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAsset inserts a new asset row and returns its ID (uuid as text)
func (db *Database) CreateAsset(ctx context.Context, asset models.Asset) (string, error) {
	query := `
        INSERT INTO assets (kind, url, width, height, alt_text)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING asset_id::text
    `
	var id string
	err := db.Pool.QueryRow(ctx, query,
		string(asset.Kind), asset.URL, asset.Width, asset.Height, asset.AltText,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create asset: %w", err)
	}
	return id, nil
}

// CreateView appends a view to a room, placing it after the room's
// existing views, and returns its ID. The asset row must exist first.
func (db *Database) CreateView(ctx context.Context, view models.View) (string, error) {
	query := `
        INSERT INTO views (room_id, name, panorama_asset_id, description, default_yaw, default_pitch, compass, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7,
            (SELECT COALESCE(MAX(position), 0) + 1 FROM views WHERE room_id = $1))
        RETURNING view_id::text
    `
	var id string
	err := db.Pool.QueryRow(ctx, query,
		view.RoomID, view.Name, view.PanoramaAssetID, view.Description,
		view.DefaultYaw, view.DefaultPitch, view.Compass,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create view: %w", err)
	}
	return id, nil
}

// RoomProject resolves the project that owns a room, for authorization
// and event routing on uploads.
func (db *Database) RoomProject(ctx context.Context, roomID string) (string, error) {
	query := `
        SELECT b.project_id::text
        FROM rooms r
        JOIN flats f ON f.flat_id = r.flat_id
        JOIN buildings b ON b.building_id = f.building_id
        WHERE r.room_id = $1
    `
	var projectID string
	err := db.Pool.QueryRow(ctx, query, roomID).Scan(&projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return projectID, nil
}
