package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetProjectSharing returns the share settings of one project. A project
// with no explicit settings row defaults to PRIVATE with no invitees.
func (db *Database) GetProjectSharing(ctx context.Context, projectID string) (*models.ProjectSharing, error) {
	query := `
        SELECT
          project_id::text,
          restriction::text,
          COALESCE(invitees, '{}'),
          password_protected
        FROM project_sharing
        WHERE project_id = $1
    `
	var s models.ProjectSharing
	err := db.Pool.QueryRow(ctx, query, projectID).Scan(
		&s.ProjectID,
		&s.Restriction,
		&s.Invitees,
		&s.PasswordProtected,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.ProjectSharing{
			ProjectID:   projectID,
			Restriction: models.VisibilityPrivate,
			Invitees:    []string{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertProjectSharing replaces the share settings of one project and
// keeps the project's visibility column in sync within one transaction.
func (db *Database) UpsertProjectSharing(ctx context.Context, sharing models.ProjectSharing) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upsert := `
        INSERT INTO project_sharing (project_id, restriction, invitees, password_protected)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (project_id) DO UPDATE
        SET restriction = EXCLUDED.restriction,
            invitees = EXCLUDED.invitees,
            password_protected = EXCLUDED.password_protected
    `
	if _, err := tx.Exec(ctx, upsert,
		sharing.ProjectID, string(sharing.Restriction), sharing.Invitees, sharing.PasswordProtected,
	); err != nil {
		return fmt.Errorf("failed to upsert sharing settings: %w", err)
	}

	sync := `
        UPDATE projects
        SET visibility = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE project_id = $1
    `
	cmd, err := tx.Exec(ctx, sync, sharing.ProjectID, string(sharing.Restriction))
	if err != nil {
		return fmt.Errorf("failed to sync project visibility: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", sharing.ProjectID, ErrNotFound)
	}

	return tx.Commit(ctx)
}
