package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-memo/internal/config"
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadController struct {
	UploadService UploadService
	Blobs         BlobStore
	Config        *config.Config
	Logger        *zap.Logger
}

func NewUploadController(uploadService UploadService, blobs BlobStore, cfg *config.Config, logger *zap.Logger) *UploadController {
	if _, err := os.Stat(cfg.FSPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.FSPath, 0755)
	}
	return &UploadController{
		UploadService: uploadService,
		Blobs:         blobs,
		Config:        cfg,
		Logger:        logger,
	}
}

// UploadFile stores the raw bytes, registers the asset and, for images,
// derives the standard variants.
func (ctrl *UploadController) UploadFile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error retrieving file",
		})
	}

	domain, err := ParseDomain(c.FormValue("domain"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	refID := RefID(c.FormValue("reference_id"))

	originalName := filepath.Base(fileHeader.Filename)
	ext := filepath.Ext(originalName)
	storedName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	storedPath := ObjectPath(domain, time.Now(), storedName)

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Error reading file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error reading file"})
	}

	if err := ctrl.Blobs.Write(storedPath, data); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving file to storage",
		})
	}

	opts := RegisterOptions{
		Description: c.FormValue("description"),
		IsPublic:    c.FormValue("is_public") == "true",
	}
	if tags := c.FormValue("tags"); tags != "" {
		opts.Tags = strings.Split(tags, ",")
	}

	raw := RawFile{
		OriginalName: originalName,
		StoredName:   storedName,
		StoredPath:   storedPath,
		Size:         fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
	}

	asset, err := ctrl.UploadService.RegisterAsset(c.UserContext(), raw, domain, refID, RefID(claims.UserID), opts)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrValidation) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	// The original stays servable even when resizing fails
	if asset, err = ctrl.maybeGenerateVariants(c, asset); err != nil {
		ctrl.Logger.Error("variant generation failed",
			zap.String("asset_id", asset.ID.Hex()), zap.Error(err))
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}

func (ctrl *UploadController) maybeGenerateVariants(c *fiber.Ctx, asset *FileAsset) (*FileAsset, error) {
	updated, err := ctrl.UploadService.GenerateVariants(c.UserContext(), asset, nil)
	if err != nil {
		return asset, err
	}
	return updated, nil
}

// GetAssetsByDomain lists the active assets attached to one entity
func (ctrl *UploadController) GetAssetsByDomain(c *fiber.Ctx) error {
	domain, err := ParseDomain(c.Params("domain"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	assets, err := ctrl.UploadService.QueryByDomain(c.UserContext(), domain, RefID(c.Params("refId")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving assets",
		})
	}
	return c.JSON(assets)
}

// GetMyUploads pages through the caller's own active assets
func (ctrl *UploadController) GetMyUploads(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	q := UploaderQuery{Page: page, Limit: limit}
	if d := c.Query("domain"); d != "" {
		domain, err := ParseDomain(d)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		q.Domain = domain
	}

	assets, err := ctrl.UploadService.QueryByUploader(c.UserContext(), RefID(claims.UserID), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving assets",
		})
	}
	return c.JSON(assets)
}

// GetAsset returns one asset's metadata and records the view
func (ctrl *UploadController) GetAsset(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	asset, err := ctrl.UploadService.GetAsset(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Asset not found"})
	}
	if !asset.IsPublic && asset.UploadedBy != RefID(claims.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	ctrl.UploadService.RecordView(c.UserContext(), asset)
	return c.JSON(asset)
}

// DownloadAsset streams the original blob and records the download
func (ctrl *UploadController) DownloadAsset(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	asset, err := ctrl.UploadService.GetAsset(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Asset not found"})
	}
	if !asset.IsPublic && asset.UploadedBy != RefID(claims.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	data, err := ctrl.Blobs.Read(asset.Metadata.Original.Path)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Blob not found"})
	}

	ctrl.UploadService.RecordDownload(c.UserContext(), asset)

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", asset.OriginalName))
	if asset.Metadata.Original.MimeType != "" {
		c.Set(fiber.HeaderContentType, asset.Metadata.Original.MimeType)
	}
	return c.Send(data)
}

// DeleteAsset soft-deletes by default; ?hard=true removes blobs and record
func (ctrl *UploadController) DeleteAsset(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	id := c.Params("id")

	asset, err := ctrl.UploadService.GetAsset(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Asset not found"})
	}
	if asset.UploadedBy != RefID(claims.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only delete your own uploads",
		})
	}

	if c.Query("hard") == "true" {
		err = ctrl.UploadService.HardDelete(c.UserContext(), id)
	} else {
		err = ctrl.UploadService.SoftDelete(c.UserContext(), id)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Asset deleted successfully"})
}

// GetStorageStats aggregates active assets per domain
func (ctrl *UploadController) GetStorageStats(c *fiber.Ctx) error {
	stats, err := ctrl.UploadService.AggregateStats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error aggregating storage stats",
		})
	}
	return c.JSON(stats)
}
