package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetProjectAnalytics returns the viewer activity counters of one project.
// A project that was never opened has a zero row.
func (db *Database) GetProjectAnalytics(ctx context.Context, projectID string) (*models.ProjectAnalytics, error) {
	query := `
        SELECT
          project_id::text,
          total_views,
          snapshots_downloaded,
          last_viewed_at
        FROM project_analytics
        WHERE project_id = $1
    `
	var a models.ProjectAnalytics
	err := db.Pool.QueryRow(ctx, query, projectID).Scan(
		&a.ProjectID,
		&a.TotalViews,
		&a.SnapshotsDownloaded,
		&a.LastViewedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.ProjectAnalytics{ProjectID: projectID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RecordProjectView bumps the view counter for one project
func (db *Database) RecordProjectView(ctx context.Context, projectID string) error {
	query := `
        INSERT INTO project_analytics (project_id, total_views, snapshots_downloaded, last_viewed_at)
        VALUES ($1, 1, 0, CURRENT_TIMESTAMP)
        ON CONFLICT (project_id) DO UPDATE
        SET total_views = project_analytics.total_views + 1,
            last_viewed_at = CURRENT_TIMESTAMP
    `
	if _, err := db.Pool.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("failed to record project view: %w", err)
	}
	return nil
}

// RecordSnapshot bumps the snapshot counter for one project
func (db *Database) RecordSnapshot(ctx context.Context, projectID string) error {
	query := `
        INSERT INTO project_analytics (project_id, total_views, snapshots_downloaded, last_viewed_at)
        VALUES ($1, 0, 1, CURRENT_TIMESTAMP)
        ON CONFLICT (project_id) DO UPDATE
        SET snapshots_downloaded = project_analytics.snapshots_downloaded + 1
    `
	if _, err := db.Pool.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}
