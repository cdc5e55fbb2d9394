package user

import (
	"go-memo/internal/config"
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Get("/api/users/me", auth, h.controller.GetMe)
	app.Put("/api/users/me", auth, h.controller.UpdateMe)
	app.Delete("/api/users/me", auth, h.controller.DeleteMe)
	app.Get("/api/users/:id", auth, h.controller.GetUser)
}
