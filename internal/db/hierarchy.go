package db

import (
	"context"
	"fmt"

	"github.com/demointeriors/tour-service/internal/hierarchy"
	"github.com/demointeriors/tour-service/internal/models"
)

// FetchProjectCollections loads the flat entity snapshot for one project.
// Every level is returned in its declared position order, which is the
// ordering the hierarchy builder and the navigator rely on.
func (db *Database) FetchProjectCollections(ctx context.Context, projectID string) (hierarchy.Collections, error) {
	var src hierarchy.Collections

	project, err := db.GetProject(ctx, projectID)
	if err != nil {
		return src, err
	}
	src.Projects = []models.Project{*project}

	buildings, err := db.getProjectBuildings(ctx, projectID)
	if err != nil {
		return src, fmt.Errorf("load buildings: %w", err)
	}
	src.Buildings = buildings

	flats, err := db.getProjectFlats(ctx, projectID)
	if err != nil {
		return src, fmt.Errorf("load flats: %w", err)
	}
	src.Flats = flats

	rooms, err := db.getProjectRooms(ctx, projectID)
	if err != nil {
		return src, fmt.Errorf("load rooms: %w", err)
	}
	src.Rooms = rooms

	views, err := db.getProjectViews(ctx, projectID)
	if err != nil {
		return src, fmt.Errorf("load views: %w", err)
	}
	src.Views = views

	pins, err := db.getProjectPins(ctx, projectID)
	if err != nil {
		return src, fmt.Errorf("load pins: %w", err)
	}
	src.Pins = pins

	return src, nil
}

func (db *Database) getProjectBuildings(ctx context.Context, projectID string) ([]models.Building, error) {
	query := `
        SELECT
          b.building_id::text,
          b.project_id::text,
          b.name,
          b.address,
          COALESCE(ARRAY(
            SELECT f.flat_id::text FROM flats f
            WHERE f.building_id = b.building_id
            ORDER BY f.position
          ), '{}')
        FROM buildings b
        WHERE b.project_id = $1
        ORDER BY b.position
    `
	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buildings := make([]models.Building, 0)
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Address, &b.FlatIDs); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

func (db *Database) getProjectFlats(ctx context.Context, projectID string) ([]models.Flat, error) {
	query := `
        SELECT
          f.flat_id::text,
          f.building_id::text,
          f.name,
          f.level,
          COALESCE(ARRAY(
            SELECT r.room_id::text FROM rooms r
            WHERE r.flat_id = f.flat_id
            ORDER BY r.position
          ), '{}')
        FROM flats f
        JOIN buildings b ON b.building_id = f.building_id
        WHERE b.project_id = $1
        ORDER BY b.position, f.position
    `
	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flats := make([]models.Flat, 0)
	for rows.Next() {
		var f models.Flat
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.Name, &f.Level, &f.RoomIDs); err != nil {
			return nil, err
		}
		flats = append(flats, f)
	}
	return flats, rows.Err()
}

func (db *Database) getProjectRooms(ctx context.Context, projectID string) ([]models.Room, error) {
	query := `
        SELECT
          r.room_id::text,
          r.flat_id::text,
          r.name,
          r.description,
          COALESCE(ARRAY(
            SELECT v.view_id::text FROM views v
            WHERE v.room_id = r.room_id
            ORDER BY v.position
          ), '{}')
        FROM rooms r
        JOIN flats f ON f.flat_id = r.flat_id
        JOIN buildings b ON b.building_id = f.building_id
        WHERE b.project_id = $1
        ORDER BY b.position, f.position, r.position
    `
	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]models.Room, 0)
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.FlatID, &r.Name, &r.Description, &r.ViewIDs); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (db *Database) getProjectViews(ctx context.Context, projectID string) ([]models.View, error) {
	query := `
        SELECT
          v.view_id::text,
          v.room_id::text,
          v.name,
          v.panorama_asset_id::text,
          v.description,
          v.default_yaw,
          v.default_pitch,
          v.compass,
          v.created_at
        FROM views v
        JOIN rooms r ON r.room_id = v.room_id
        JOIN flats f ON f.flat_id = r.flat_id
        JOIN buildings b ON b.building_id = f.building_id
        WHERE b.project_id = $1
        ORDER BY b.position, f.position, r.position, v.position
    `
	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]models.View, 0)
	for rows.Next() {
		var v models.View
		if err := rows.Scan(
			&v.ID,
			&v.RoomID,
			&v.Name,
			&v.PanoramaAssetID,
			&v.Description,
			&v.DefaultYaw,
			&v.DefaultPitch,
			&v.Compass,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (db *Database) getProjectPins(ctx context.Context, projectID string) ([]models.Pin, error) {
	query := `
        SELECT
          p.pin_id::text,
          p.from_view_id::text,
          p.label,
          p.target_room_id::text,
          p.target_view_id::text,
          p.yaw,
          p.pitch
        FROM pins p
        JOIN views v ON v.view_id = p.from_view_id
        JOIN rooms r ON r.room_id = v.room_id
        JOIN flats f ON f.flat_id = r.flat_id
        JOIN buildings b ON b.building_id = f.building_id
        WHERE b.project_id = $1
        ORDER BY b.position, f.position, r.position, v.position, p.position
    `
	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pins := make([]models.Pin, 0)
	for rows.Next() {
		var p models.Pin
		if err := rows.Scan(&p.ID, &p.FromViewID, &p.Label, &p.TargetRoomID, &p.TargetViewID, &p.Yaw, &p.Pitch); err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}
