package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a pending account and sends the verification email
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	newUser, err := ctrl.AuthService.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created, check your inbox for a verification link",
		"user":    newUser,
	})
}

// VerifyEmail consumes the token from the emailed link
func (ctrl *AuthController) VerifyEmail(c *fiber.Ctx) error {
	if err := ctrl.AuthService.VerifyEmail(c.UserContext(), c.Query("token")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Email verified, you can now log in"})
}

type resendRequest struct {
	Email string `json:"email"`
}

// ResendVerification queues a fresh verification email
func (ctrl *AuthController) ResendVerification(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := ctrl.AuthService.ResendVerification(c.UserContext(), req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Verification email queued"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a JWT
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	token, err := ctrl.AuthService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		status := fiber.StatusUnauthorized
		if errors.Is(err, ErrNotVerified) {
			status = fiber.StatusForbidden
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"token": token})
}
