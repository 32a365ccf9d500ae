package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/demointeriors/tour-service/internal/db"
	"github.com/demointeriors/tour-service/internal/hierarchy"
	"github.com/demointeriors/tour-service/internal/logging"
	"github.com/demointeriors/tour-service/internal/models"
	"github.com/gin-gonic/gin"
)

// EventPublisher is the analytics event sink the handlers write through.
// *events.Publisher satisfies it; a nil publisher disables analytics.
type EventPublisher interface {
	ProjectViewed(projectID, slug string) error
	SnapshotRecorded(projectID, viewID string) error
}

// Handler holds the database connection and the analytics publisher
type Handler struct {
	db     *db.Database
	events EventPublisher
}

// NewHandler creates a new handler instance
func NewHandler(database *db.Database, events EventPublisher) *Handler {
	return &Handler{db: database, events: events}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "tour-service",
	})
}

// GetOrganization handles GET /orgs/:slug
func (h *Handler) GetOrganization(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	org, err := h.db.GetOrganizationBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, "Failed to fetch organization", err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// GetOrganizationMembers handles GET /orgs/:slug/members
func (h *Handler) GetOrganizationMembers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	org, err := h.db.GetOrganizationBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, "Failed to fetch organization", err)
		return
	}
	members, err := h.db.GetOrganizationMembers(ctx, org.ID)
	if err != nil {
		h.fail(c, "Failed to fetch members", err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// GetSeatUsage handles GET /orgs/:slug/seat-usage
func (h *Handler) GetSeatUsage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	org, err := h.db.GetOrganizationBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, "Failed to fetch organization", err)
		return
	}
	usage, err := h.db.GetSeatUsage(ctx, org.ID)
	if err != nil {
		h.fail(c, "Failed to fetch seat usage", err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

// GetProjects handles GET /projects?org_id=...&portfolio=true
func (h *Handler) GetProjects(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orgID := c.Query("org_id")
	if orgID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "org_id is required"})
		return
	}
	portfolioOnly := c.Query("portfolio") == "true"

	projects, err := h.db.GetProjectsByOrg(ctx, orgID, portfolioOnly)
	if err != nil {
		h.fail(c, "Failed to fetch projects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /projects/:id. The parameter is tried as a
// project ID first and falls back to slug lookup, so dashboard links can
// use either form.
func (h *Handler) GetProject(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	project, err := h.projectByIDOrSlug(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to fetch project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetPublicProject handles GET /public/projects/:slug. Private projects
// are reported as absent. A successful open emits a view event.
func (h *Handler) GetPublicProject(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	slug := c.Param("slug")
	project, err := h.db.GetPublicProjectBySlug(ctx, slug)
	if err != nil {
		h.fail(c, "Failed to fetch project", err)
		return
	}

	if h.events != nil {
		if err := h.events.ProjectViewed(project.ID, slug); err != nil {
			// Analytics must not break the viewer.
			logging.Error("publish project_viewed", err, map[string]interface{}{"project_id": project.ID})
		}
	}
	c.JSON(http.StatusOK, project)
}

// GetProjectHierarchy handles GET /projects/:id/hierarchy
func (h *Handler) GetProjectHierarchy(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	tree, err := h.buildHierarchy(ctx, c.Param("id"))
	if err != nil {
		h.failHierarchy(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// GetInitialSelection handles GET /projects/:id/initial-selection
func (h *Handler) GetInitialSelection(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	tree, err := h.buildHierarchy(ctx, c.Param("id"))
	if err != nil {
		h.failHierarchy(c, err)
		return
	}
	c.JSON(http.StatusOK, tree.InitialSelection())
}

// GetRoomViews handles GET /rooms/:id/views
func (h *Handler) GetRoomViews(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	roomID := c.Param("id")
	projectID, err := h.db.RoomProject(ctx, roomID)
	if err != nil {
		h.fail(c, "Failed to fetch room", err)
		return
	}
	tree, err := h.buildHierarchy(ctx, projectID)
	if err != nil {
		h.failHierarchy(c, err)
		return
	}
	room, ok := tree.FindRoom(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, room.Views)
}

// GetViewPins handles GET /views/:id/pins
func (h *Handler) GetViewPins(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	viewID := c.Param("id")
	var projectID string
	err := h.db.Pool.QueryRow(ctx, `
        SELECT b.project_id::text
        FROM views v
        JOIN rooms r ON r.room_id = v.room_id
        JOIN flats f ON f.flat_id = r.flat_id
        JOIN buildings b ON b.building_id = f.building_id
        WHERE v.view_id = $1
    `, viewID).Scan(&projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "View not found"})
		return
	}

	tree, err := h.buildHierarchy(ctx, projectID)
	if err != nil {
		h.failHierarchy(c, err)
		return
	}
	_, room, ok := tree.FindView(viewID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "View not found"})
		return
	}
	pins := make([]models.Pin, 0)
	for _, pin := range room.Pins {
		if pin.FromViewID == viewID {
			pins = append(pins, pin)
		}
	}
	c.JSON(http.StatusOK, pins)
}

// GetAsset handles GET /assets/:id. Only panorama assets are served
// through this endpoint; other kinds are reported as absent.
func (h *Handler) GetAsset(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	asset, err := h.db.GetAsset(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to fetch asset", err)
		return
	}
	if asset.Kind != models.AssetKindPanorama {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
		return
	}
	c.JSON(http.StatusOK, asset)
}

// GetProjectSharing handles GET /projects/:id/sharing
func (h *Handler) GetProjectSharing(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sharing, err := h.db.GetProjectSharing(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to fetch sharing settings", err)
		return
	}
	c.JSON(http.StatusOK, sharing)
}

// UpdateProjectSharing handles PUT /projects/:id/sharing
func (h *Handler) UpdateProjectSharing(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var body struct {
		Restriction       models.Visibility `json:"restriction"`
		Invitees          []string          `json:"invitees"`
		PasswordProtected bool              `json:"password_protected"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	switch body.Restriction {
	case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityInviteOnly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restriction"})
		return
	}
	if body.Invitees == nil {
		body.Invitees = []string{}
	}

	sharing := models.ProjectSharing{
		ProjectID:         c.Param("id"),
		Restriction:       body.Restriction,
		Invitees:          body.Invitees,
		PasswordProtected: body.PasswordProtected,
	}
	if err := h.db.UpsertProjectSharing(ctx, sharing); err != nil {
		h.fail(c, "Failed to update sharing settings", err)
		return
	}
	c.JSON(http.StatusOK, sharing)
}

// GetProjectAnalytics handles GET /projects/:id/analytics
func (h *Handler) GetProjectAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	analytics, err := h.db.GetProjectAnalytics(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to fetch analytics", err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// RecordSnapshot handles POST /projects/:id/snapshots
func (h *Handler) RecordSnapshot(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	projectID := c.Param("id")
	if _, err := h.db.GetProject(ctx, projectID); err != nil {
		h.fail(c, "Failed to fetch project", err)
		return
	}

	var body struct {
		ViewID string `json:"view_id"`
	}
	_ = c.ShouldBindJSON(&body)

	if h.events != nil {
		if err := h.events.SnapshotRecorded(projectID, body.ViewID); err != nil {
			h.fail(c, "Failed to record snapshot", err)
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

// buildHierarchy loads the flat snapshot and assembles the tree.
func (h *Handler) buildHierarchy(ctx context.Context, projectID string) (*hierarchy.ProjectHierarchy, error) {
	src, err := h.db.FetchProjectCollections(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(projectID, src)
}

func (h *Handler) projectByIDOrSlug(ctx context.Context, key string) (*models.Project, error) {
	project, err := h.db.GetProject(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return h.db.GetProjectBySlug(ctx, key)
	}
	return project, err
}

// fail maps query-layer errors to API responses.
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	logging.Error(msg, err, map[string]interface{}{"path": c.Request.URL.Path})
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// failHierarchy additionally maps tree assembly errors: a missing project
// is a 404, a dangling owner reference is a data fault, not a client one.
func (h *Handler) failHierarchy(c *gin.Context, err error) {
	var inconsistency *hierarchy.InconsistencyError
	switch {
	case errors.Is(err, hierarchy.ErrProjectNotFound), errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.As(err, &inconsistency):
		logging.Error("hierarchy inconsistent", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Project data is inconsistent"})
	default:
		h.fail(c, "Failed to build hierarchy", err)
	}
}
