package models

// Role represents a member's role within an organization (mirrors DB enum member_role)
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Organization represents a tenant that owns projects
// Backed by table `organizations`
type Organization struct {
	ID           string  `json:"id" db:"org_id"`
	Name         string  `json:"name" db:"name"`
	Slug         string  `json:"slug" db:"slug"`
	LogoURL      *string `json:"logo_url,omitempty" db:"logo_url"`
	PrimaryColor *string `json:"primary_color,omitempty" db:"primary_color"`
	SeatLimit    int     `json:"seat_limit" db:"seat_limit"`
}

// User represents an organization member
// Backed by table `users`
type User struct {
	ID        string  `json:"id" db:"user_id"`
	OrgID     string  `json:"org_id" db:"org_id"`
	Name      string  `json:"name" db:"name"`
	Email     string  `json:"email" db:"email"`
	Role      Role    `json:"role" db:"role"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"avatar_url"`
}

// SeatUsage summarizes how many of an organization's seats are taken
type SeatUsage struct {
	Used      int `json:"used"`
	Available int `json:"available"`
}
