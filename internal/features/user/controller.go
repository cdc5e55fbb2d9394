package user

import (
	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
}

func NewUserController(userService UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetMe returns the authenticated user's profile
func (ctrl *UserController) GetMe(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	user, err := ctrl.UserService.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(user)
}

// GetUser returns a user's public profile
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	user, err := ctrl.UserService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
	})
}

type updateMeRequest struct {
	Username string `json:"username"`
}

// UpdateMe changes the caller's own profile
func (ctrl *UserController) UpdateMe(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var req updateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
	}

	user, err := ctrl.UserService.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.Username = req.Username
	if err := ctrl.UserService.UpdateUser(c.UserContext(), user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error updating user"})
	}
	return c.JSON(user)
}

// DeleteMe removes the caller's account
func (ctrl *UserController) DeleteMe(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	if err := ctrl.UserService.DeleteUser(c.UserContext(), claims.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error deleting user"})
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
