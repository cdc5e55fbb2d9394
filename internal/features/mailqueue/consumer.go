package mailqueue

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// tickInterval is how often the consumer attempts one delivery
const tickInterval = time.Minute

// Consumer is the periodic single-worker driver of the queue. The
// deployment assumption is one consumer per queue; nothing prevents a
// second process from polling the same lists.
type Consumer struct {
	queue  *Queue
	logger *zap.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
	running   bool
}

func NewConsumer(queue *Queue, logger *zap.Logger) *Consumer {
	return &Consumer{
		queue:  queue,
		logger: logger,
	}
}

// Start begins the periodic driver. Calling it while already running is
// a warned no-op.
func (c *Consumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		c.logger.Warn("mail queue consumer already running")
		return nil
	}

	c.scheduler = cron.New()
	if _, err := c.scheduler.AddFunc("@every 1m", c.tick); err != nil {
		return err
	}
	c.scheduler.Start()
	c.running = true

	c.logger.Info("mail queue consumer started", zap.Duration("interval", tickInterval))
	return nil
}

// Stop cancels the driver. Idempotent.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.scheduler.Stop()
	c.scheduler = nil
	c.running = false

	c.logger.Info("mail queue consumer stopped")
}

// Running reports whether the driver is active
func (c *Consumer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// tick runs one ProcessOnce. Nothing that happens inside one tick may
// stop subsequent ticks.
func (c *Consumer) tick() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in mail queue tick", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), tickInterval)
	defer cancel()

	if err := c.queue.ProcessOnce(ctx); err != nil {
		c.logger.Error("mail queue tick failed", zap.Error(err))
	}
}
