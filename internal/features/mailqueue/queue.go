package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	pendingList    = "mailqueue:pending"
	processingList = "mailqueue:processing"
)

// Notifier is the email transport collaborator
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

// Recipient is one broadcast target
type Recipient struct {
	Email  string
	UserID string
}

// RecipientSource enumerates everyone a broadcast should reach
type RecipientSource interface {
	ActiveRecipients(ctx context.Context) ([]Recipient, error)
}

// Queue is an at-least-once FIFO delivery mechanism for outbound email.
// Pending items wait in one list; items being attempted sit in a
// processing list as a crash-visibility aid. A failed delivery is
// re-enqueued at the tail as a fresh copy, without any attempt bound.
type Queue struct {
	store      ListStore
	notifier   Notifier
	recipients RecipientSource
	logger     *zap.Logger
}

func NewQueue(store ListStore, notifier Notifier, recipients RecipientSource, logger *zap.Logger) *Queue {
	return &Queue{
		store:      store,
		notifier:   notifier,
		recipients: recipients,
		logger:     logger,
	}
}

// Enqueue appends a job to the pending tail and returns its generated
// id. It never waits on delivery.
func (q *Queue) Enqueue(ctx context.Context, job EmailJob) (string, error) {
	if job.To == "" {
		return "", fmt.Errorf("recipient address is required")
	}

	now := time.Now()
	job.ID = newJobID(now)
	job.CreatedAt = now
	job.Status = statusPending

	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	if err := q.store.PushTail(ctx, pendingList, raw); err != nil {
		return "", err
	}
	return job.ID, nil
}

// ProcessOnce performs one unit of work: pop the pending head, park it
// in the processing list, attempt delivery, then acknowledge or
// requeue. Delivery failures never escape; only store failures do.
func (q *Queue) ProcessOnce(ctx context.Context) error {
	raw, err := q.store.PopHead(ctx, pendingList)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	if err := q.store.PushTail(ctx, processingList, raw); err != nil {
		return err
	}

	var job EmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		// A job that cannot be decoded can never be delivered; drop it
		// instead of cycling it forever.
		q.logger.Error("dropping undecodable queue item", zap.Error(err))
		return q.store.RemoveOne(ctx, processingList, raw)
	}

	if _, err := q.notifier.Send(ctx, job.To, job.Subject, job.Content); err != nil {
		q.logger.Warn("email delivery failed, requeueing",
			zap.String("job_id", job.ID),
			zap.String("to", job.To),
			zap.Error(err))

		retry := EmailJob{
			To:      job.To,
			Subject: job.Subject,
			Content: job.Content,
			UserID:  job.UserID,
		}
		if _, err := q.Enqueue(ctx, retry); err != nil {
			q.logger.Error("failed to requeue job", zap.String("job_id", job.ID), zap.Error(err))
		}
		return q.store.RemoveOne(ctx, processingList, raw)
	}

	q.logger.Info("email delivered",
		zap.String("job_id", job.ID),
		zap.String("to", job.To))
	return q.acknowledge(ctx, job.ID)
}

// acknowledge removes the processing-list entry whose id matches.
// Queue depths are small, so a linear scan is fine.
func (q *Queue) acknowledge(ctx context.Context, id string) error {
	items, err := q.store.ListAll(ctx, processingList)
	if err != nil {
		return err
	}
	for _, raw := range items {
		var job EmailJob
		if json.Unmarshal(raw, &job) == nil && job.ID == id {
			return q.store.RemoveOne(ctx, processingList, raw)
		}
	}
	return nil
}

// Status snapshots the current list lengths
func (q *Queue) Status(ctx context.Context) (QueueStatus, error) {
	pending, err := q.store.Len(ctx, pendingList)
	if err != nil {
		return QueueStatus{}, err
	}
	processing, err := q.store.Len(ctx, processingList)
	if err != nil {
		return QueueStatus{}, err
	}
	return QueueStatus{PendingCount: pending, ProcessingCount: processing}, nil
}

// Clear empties both lists unconditionally. Not reversible.
func (q *Queue) Clear(ctx context.Context) error {
	return q.store.DeleteList(ctx, pendingList, processingList)
}

// Broadcast enqueues one job per active recipient. The batch is not
// transactional: the first enqueue failure stops further submissions.
func (q *Queue) Broadcast(ctx context.Context, subject, content string) (int, error) {
	recipients, err := q.recipients.ActiveRecipients(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load recipients: %w", err)
	}

	submitted := 0
	for _, r := range recipients {
		job := EmailJob{
			To:      r.Email,
			Subject: subject,
			Content: content,
			UserID:  r.UserID,
		}
		if _, err := q.Enqueue(ctx, job); err != nil {
			return submitted, fmt.Errorf("broadcast stopped after %d recipients: %w", submitted, err)
		}
		submitted++
	}
	return submitted, nil
}
