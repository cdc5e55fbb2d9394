package template

import (
	"go-memo/internal/config"
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	controller *TemplateController
	config     *config.Config
}

func NewTemplateApi(controller *TemplateController, config *config.Config) *TemplateApi {
	return &TemplateApi{
		controller: controller,
		config:     config,
	}
}

func (h *TemplateApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Post("/api/templates", auth, h.controller.CreateTemplate)
	app.Get("/api/templates", auth, h.controller.ListTemplates)
	app.Get("/api/templates/:id", auth, h.controller.GetTemplate)
	app.Put("/api/templates/:id", auth, h.controller.UpdateTemplate)
	app.Delete("/api/templates/:id", auth, h.controller.DeleteTemplate)
}
