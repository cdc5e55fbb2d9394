package memo

import (
	"errors"
	"strconv"

	"go-memo/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoController struct {
	MemoService MemoService
}

func NewMemoController(memoService MemoService) *MemoController {
	return &MemoController{MemoService: memoService}
}

func callerID(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(middleware.Claims(c).UserID)
}

type memoRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	TemplateID string   `json:"template_id"`
	Tags       []string `json:"tags"`
	Pinned     bool     `json:"pinned"`
}

func (req *memoRequest) apply(memo *Memo) error {
	memo.Title = req.Title
	memo.Content = req.Content
	memo.Tags = req.Tags
	memo.Pinned = req.Pinned
	if req.TemplateID != "" {
		tid, err := primitive.ObjectIDFromHex(req.TemplateID)
		if err != nil {
			return errors.New("invalid template id")
		}
		memo.TemplateID = &tid
	} else {
		memo.TemplateID = nil
	}
	return nil
}

// CreateMemo creates a memo owned by the caller
func (ctrl *MemoController) CreateMemo(c *fiber.Ctx) error {
	owner, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req memoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	memo := &Memo{OwnerID: owner}
	if err := req.apply(memo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctrl.MemoService.CreateMemo(c.UserContext(), memo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(memo)
}

// GetMemo returns one of the caller's memos
func (ctrl *MemoController) GetMemo(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	memo, err := ctrl.MemoService.GetMemo(c.UserContext(), c.Params("id"), caller)
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Memo not found"})
	}
	return c.JSON(memo)
}

// ListMemos pages through the caller's memos, pinned first
func (ctrl *MemoController) ListMemos(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	memos, err := ctrl.MemoService.ListMemos(c.UserContext(), caller, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error retrieving memos"})
	}
	return c.JSON(memos)
}

// UpdateMemo replaces the memo body
func (ctrl *MemoController) UpdateMemo(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid memo ID"})
	}

	var req memoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	memo := &Memo{ID: id}
	if err := req.apply(memo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctrl.MemoService.UpdateMemo(c.UserContext(), memo, caller); err != nil {
		if errors.Is(err, ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Memo not found"})
	}
	return c.JSON(memo)
}

// DeleteMemo removes a memo and its attachments
func (ctrl *MemoController) DeleteMemo(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := ctrl.MemoService.DeleteMemo(c.UserContext(), c.Params("id"), caller); err != nil {
		if errors.Is(err, ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Memo not found"})
	}
	return c.JSON(fiber.Map{"message": "Memo deleted successfully"})
}
