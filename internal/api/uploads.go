package api

import (
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	// Panorama uploads arrive as JPEG or PNG.
	_ "image/jpeg"
	_ "image/png"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/demointeriors/tour-service/internal/logging"
	"github.com/demointeriors/tour-service/internal/models"
	"github.com/demointeriors/tour-service/internal/orientation"
	"github.com/gin-gonic/gin"
)

// UploadRoomView handles POST /rooms/:id/views. The multipart form
// carries the panorama file plus the view metadata; the panorama must be
// an equirectangular JPEG or PNG within the acceptance constraints. The
// asset row is created before the view row so a failed view insert never
// leaves a view pointing at nothing.
func (h *Handler) UploadRoomView(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	file, fileHeader, err := c.Request.FormFile("panorama")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "panorama file is required"})
		return
	}
	defer file.Close()

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	defaultYaw, defaultPitch, err := parseDefaultOrientation(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	width, height, err := checkPanoramaFile(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID := c.Param("id")
	projectID, err := h.db.RoomProject(ctx, roomID)
	if err != nil {
		h.fail(c, "Failed to fetch room", err)
		return
	}

	url, err := h.storePanorama(ctx, roomID, fileHeader, file)
	if err != nil {
		logging.Error("store panorama", err, map[string]interface{}{"room_id": roomID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store panorama"})
		return
	}

	assetID, err := h.db.CreateAsset(ctx, models.Asset{
		Kind:   models.AssetKindPanorama,
		URL:    url,
		Width:  width,
		Height: height,
	})
	if err != nil {
		h.fail(c, "Failed to create asset", err)
		return
	}

	var description *string
	if d := strings.TrimSpace(c.PostForm("description")); d != "" {
		description = &d
	}
	viewID, err := h.db.CreateView(ctx, models.View{
		RoomID:          roomID,
		Name:            name,
		PanoramaAssetID: assetID,
		Description:     description,
		DefaultYaw:      defaultYaw,
		DefaultPitch:    defaultPitch,
	})
	if err != nil {
		h.fail(c, "Failed to create view", err)
		return
	}

	logging.Info("panorama uploaded", map[string]interface{}{
		"project_id": projectID,
		"room_id":    roomID,
		"view_id":    viewID,
		"asset_id":   assetID,
		"dimensions": fmt.Sprintf("%dx%d", width, height),
	})

	c.JSON(http.StatusCreated, gin.H{
		"view_id":  viewID,
		"asset_id": assetID,
		"url":      url,
	})
}

// parseDefaultOrientation reads default_yaw/default_pitch form fields and
// canonicalizes them. Missing fields default to zero.
func parseDefaultOrientation(c *gin.Context) (yaw, pitch float64, err error) {
	if raw := c.PostForm("default_yaw"); raw != "" {
		yaw, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid default_yaw: %s", raw)
		}
	}
	if raw := c.PostForm("default_pitch"); raw != "" {
		pitch, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid default_pitch: %s", raw)
		}
	}
	return orientation.NormalizeYaw(yaw), orientation.ClampPitch(pitch), nil
}

// checkPanoramaFile sniffs the content type and validates the pixel
// dimensions without decoding the full image.
func checkPanoramaFile(file multipart.File) (width, height int, err error) {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("failed to read panorama: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if contentType != "image/jpeg" && contentType != "image/png" {
		return 0, 0, fmt.Errorf("panorama must be JPEG or PNG, got %s", contentType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("failed to rewind panorama: %w", err)
	}
	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read panorama dimensions: %w", err)
	}
	if err := models.CheckPanoramaDimensions(cfg.Width, cfg.Height); err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// storePanorama uploads to S3 when a bucket is configured and falls back
// to local storage for development.
func (h *Handler) storePanorama(ctx context.Context, roomID string, fileHeader *multipart.FileHeader, file multipart.File) (string, error) {
	if os.Getenv("PANORAMA_BUCKET") != "" {
		return h.uploadPanoramaToS3(ctx, roomID, fileHeader, file)
	}
	return h.uploadPanoramaToLocal(roomID, fileHeader, file)
}

// uploadPanoramaToS3 uploads the panorama using the default credential
// chain and returns the CDN URL.
func (h *Handler) uploadPanoramaToS3(ctx context.Context, roomID string, fileHeader *multipart.FileHeader, file multipart.File) (string, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind panorama: %w", err)
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "eu-central-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("failed to load AWS default config: %w", err)
	}
	s3Client := s3.NewFromConfig(cfg)

	bucketName := os.Getenv("PANORAMA_BUCKET")
	objectKey := fmt.Sprintf("panos/%s/%d%s", roomID, time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucketName,
		Key:    &objectKey,
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload panorama to S3: %w", err)
	}

	cdnBase := os.Getenv("ASSETS_CDN_BASE_URL")
	if cdnBase == "" {
		cdnBase = "https://assets.demointeriors.com"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(cdnBase, "/"), objectKey), nil
}

// uploadPanoramaToLocal stores the panorama on disk for development.
func (h *Handler) uploadPanoramaToLocal(roomID string, fileHeader *multipart.FileHeader, file multipart.File) (string, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind panorama: %w", err)
	}

	uploadsDir := filepath.Join("./uploads/panos", roomID)
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))
	filePath := filepath.Join(uploadsDir, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	baseURL := os.Getenv("SERVICE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/uploads/panos/%s/%s", baseURL, roomID, filename), nil
}
