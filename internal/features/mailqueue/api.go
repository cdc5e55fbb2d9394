package mailqueue

import (
	"go-memo/internal/config"
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type QueueApi struct {
	controller *QueueController
	config     *config.Config
}

func NewQueueApi(controller *QueueController, config *config.Config) *QueueApi {
	return &QueueApi{
		controller: controller,
		config:     config,
	}
}

func (h *QueueApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Get("/api/queue/status", auth, h.controller.GetStatus)
	app.Post("/api/queue/clear", auth, h.controller.ClearQueue)
	app.Post("/api/queue/broadcast", auth, h.controller.Broadcast)
}
