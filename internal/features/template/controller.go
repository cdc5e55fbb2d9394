package template

import (
	"errors"

	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateController struct {
	TemplateService TemplateService
}

func NewTemplateController(templateService TemplateService) *TemplateController {
	return &TemplateController{TemplateService: templateService}
}

func callerID(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(middleware.Claims(c).UserID)
}

type templateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	Layout      bson.M `json:"layout"`
}

// CreateTemplate creates a template owned by the caller
func (ctrl *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	owner, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	tpl := &Template{
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Layout:      req.Layout,
	}
	if err := ctrl.TemplateService.CreateTemplate(c.UserContext(), tpl); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(tpl)
}

// GetTemplate returns one template if the caller may see it
func (ctrl *TemplateController) GetTemplate(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	tpl, err := ctrl.TemplateService.GetTemplate(c.UserContext(), c.Params("id"), caller)
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}
	return c.JSON(tpl)
}

// ListTemplates returns the caller's templates plus public ones
func (ctrl *TemplateController) ListTemplates(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	templates, err := ctrl.TemplateService.ListTemplates(c.UserContext(), caller)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error retrieving templates"})
	}
	return c.JSON(templates)
}

// UpdateTemplate replaces the template body
func (ctrl *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
	}

	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	tpl := &Template{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Layout:      req.Layout,
	}
	if err := ctrl.TemplateService.UpdateTemplate(c.UserContext(), tpl, caller); err != nil {
		if errors.Is(err, ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}
	return c.JSON(tpl)
}

// DeleteTemplate removes a template and its images
func (ctrl *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := ctrl.TemplateService.DeleteTemplate(c.UserContext(), c.Params("id"), caller); err != nil {
		if errors.Is(err, ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}
	return c.JSON(fiber.Map{"message": "Template deleted successfully"})
}
