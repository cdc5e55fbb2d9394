package mailqueue

import (
	"github.com/gofiber/fiber/v2"
)

type QueueController struct {
	Queue    *Queue
	Consumer *Consumer
}

func NewQueueController(queue *Queue, consumer *Consumer) *QueueController {
	return &QueueController{
		Queue:    queue,
		Consumer: consumer,
	}
}

// GetStatus reports queue depths and whether the driver is running
func (ctrl *QueueController) GetStatus(c *fiber.Ctx) error {
	status, err := ctrl.Queue.Status(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error reading queue status",
		})
	}
	status.IsRunning = ctrl.Consumer.Running()
	return c.JSON(status)
}

// ClearQueue empties both queue lists; administrative reset
func (ctrl *QueueController) ClearQueue(c *fiber.Ctx) error {
	if err := ctrl.Queue.Clear(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error clearing queue",
		})
	}
	return c.JSON(fiber.Map{"message": "Queue cleared"})
}

type broadcastRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// Broadcast enqueues one email per active user
func (ctrl *QueueController) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Subject == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject and content are required",
		})
	}

	submitted, err := ctrl.Queue.Broadcast(c.UserContext(), req.Subject, req.Content)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     err.Error(),
			"submitted": submitted,
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"submitted": submitted})
}
