package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
}

func NewAuthApi(controller *AuthController) *AuthApi {
	return &AuthApi{controller: controller}
}

func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/register", h.controller.Register)
	app.Get("/api/auth/verify", h.controller.VerifyEmail)
	app.Post("/api/auth/resend-verification", h.controller.ResendVerification)
	app.Post("/api/auth/login", h.controller.Login)
}
