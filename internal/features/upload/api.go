package upload

import (
	"go-memo/internal/config"
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UploadApi struct {
	controller *UploadController
	config     *config.Config
}

func NewUploadApi(controller *UploadController, config *config.Config) *UploadApi {
	return &UploadApi{
		controller: controller,
		config:     config,
	}
}

func (h *UploadApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Post("/api/uploads", auth, h.controller.UploadFile)
	app.Get("/api/uploads/mine", auth, h.controller.GetMyUploads)
	app.Get("/api/uploads/stats", auth, h.controller.GetStorageStats)
	app.Get("/api/uploads/domain/:domain/:refId", auth, h.controller.GetAssetsByDomain)
	app.Get("/api/uploads/:id", auth, h.controller.GetAsset)
	app.Get("/api/uploads/:id/download", auth, h.controller.DownloadAsset)
	app.Delete("/api/uploads/:id", auth, h.controller.DeleteAsset)

	app.Static(h.config.FSURL, h.config.FSPath)
}
