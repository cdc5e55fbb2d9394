package memo

import (
	"go-memo/internal/config"
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MemoApi struct {
	controller *MemoController
	config     *config.Config
}

func NewMemoApi(controller *MemoController, config *config.Config) *MemoApi {
	return &MemoApi{
		controller: controller,
		config:     config,
	}
}

func (h *MemoApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Post("/api/memos", auth, h.controller.CreateMemo)
	app.Get("/api/memos", auth, h.controller.ListMemos)
	app.Get("/api/memos/:id", auth, h.controller.GetMemo)
	app.Put("/api/memos/:id", auth, h.controller.UpdateMemo)
	app.Delete("/api/memos/:id", auth, h.controller.DeleteMemo)
}
