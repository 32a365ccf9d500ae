package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetOrganization returns one organization by ID
func (db *Database) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	query := `
        SELECT
          org_id::text,
          name,
          slug,
          logo_url,
          primary_color,
          seat_limit
        FROM organizations
        WHERE org_id = $1
    `
	var o models.Organization
	err := db.Pool.QueryRow(ctx, query, orgID).Scan(
		&o.ID,
		&o.Name,
		&o.Slug,
		&o.LogoURL,
		&o.PrimaryColor,
		&o.SeatLimit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", orgID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrganizationBySlug returns one organization by its slug
func (db *Database) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `
        SELECT
          org_id::text,
          name,
          slug,
          logo_url,
          primary_color,
          seat_limit
        FROM organizations
        WHERE slug = $1
    `
	var o models.Organization
	err := db.Pool.QueryRow(ctx, query, slug).Scan(
		&o.ID,
		&o.Name,
		&o.Slug,
		&o.LogoURL,
		&o.PrimaryColor,
		&o.SeatLimit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrganizationMembers lists the members of an organization ordered by name
func (db *Database) GetOrganizationMembers(ctx context.Context, orgID string) ([]models.User, error) {
	query := `
        SELECT
          user_id::text,
          org_id::text,
          name,
          email,
          role::text,
          avatar_url
        FROM users
        WHERE org_id = $1
        ORDER BY name
    `
	rows, err := db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.OrgID, &u.Name, &u.Email, &u.Role, &u.AvatarURL); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// GetSeatUsage reports how many of the organization's seats are taken
func (db *Database) GetSeatUsage(ctx context.Context, orgID string) (*models.SeatUsage, error) {
	query := `
        SELECT o.seat_limit, COUNT(u.user_id)
        FROM organizations o
        LEFT JOIN users u ON u.org_id = o.org_id
        WHERE o.org_id = $1
        GROUP BY o.seat_limit
    `
	var limit, used int
	err := db.Pool.QueryRow(ctx, query, orgID).Scan(&limit, &used)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", orgID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	available := limit - used
	if available < 0 {
		available = 0
	}
	return &models.SeatUsage{Used: used, Available: available}, nil
}
