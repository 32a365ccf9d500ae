package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `
  p.project_id::text,
  p.org_id::text,
  p.name,
  p.slug,
  p.visibility::text,
  p.portfolio,
  COALESCE(p.description, ''),
  p.updated_at,
  p.hero_image_asset_id::text,
  COALESCE(ARRAY(
    SELECT b.building_id::text FROM buildings b
    WHERE b.project_id = p.project_id
    ORDER BY b.position
  ), '{}'),
  COALESCE(p.tags, '{}')
`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.OrgID,
		&p.Name,
		&p.Slug,
		&p.Visibility,
		&p.Portfolio,
		&p.Description,
		&p.UpdatedAt,
		&p.HeroImageAssetID,
		&p.BuildingIDs,
		&p.Tags,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectsByOrg lists an organization's projects, newest first.
// When portfolioOnly is set, only portfolio-flagged projects are returned.
func (db *Database) GetProjectsByOrg(ctx context.Context, orgID string, portfolioOnly bool) ([]models.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        WHERE p.org_id = $1
    `
	if portfolioOnly {
		query += ` AND p.portfolio`
	}
	query += ` ORDER BY p.updated_at DESC`

	rows, err := db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetProject returns one project by ID
func (db *Database) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        WHERE p.project_id = $1
    `
	p, err := scanProject(db.Pool.QueryRow(ctx, query, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProjectBySlug returns one project by slug regardless of visibility
func (db *Database) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        WHERE p.slug = $1
    `
	p, err := scanProject(db.Pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPublicProjectBySlug resolves a viewer link. Private projects are
// treated as absent so the handler cannot leak their existence.
func (db *Database) GetPublicProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        WHERE p.slug = $1 AND p.visibility <> 'PRIVATE'
    `
	p, err := scanProject(db.Pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProjectVisibility changes who can open the project through a viewer link
func (db *Database) UpdateProjectVisibility(ctx context.Context, projectID string, visibility models.Visibility) error {
	query := `
        UPDATE projects
        SET visibility = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE project_id = $1
    `
	cmd, err := db.Pool.Exec(ctx, query, projectID, string(visibility))
	if err != nil {
		return fmt.Errorf("failed to update project visibility: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return nil
}
