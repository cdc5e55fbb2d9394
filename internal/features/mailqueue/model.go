package mailqueue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmailJob is one unit of deferred outbound email. Which list holds its
// serialized form decides its real state; Status is only meaningful at
// enqueue time.
type EmailJob struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

const statusPending = "pending"

// newJobID builds a unique id from the enqueue instant plus a random suffix
func newJobID(at time.Time) string {
	return fmt.Sprintf("%d-%s", at.UnixNano(), uuid.NewString()[:8])
}

// QueueStatus is a point-in-time snapshot of the queue lists. It is not
// transactionally consistent with a concurrent ProcessOnce.
type QueueStatus struct {
	PendingCount    int64 `json:"pending_count"`
	ProcessingCount int64 `json:"processing_count"`
	IsRunning       bool  `json:"is_running"`
}
