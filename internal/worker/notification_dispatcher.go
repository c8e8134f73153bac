package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/metrics"
)

// OrderSource loads what a notification needs to show.
type OrderSource interface {
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

// Sender delivers a new order notice to fulfilment staff.
type Sender interface {
	SendOrder(ctx context.Context, order *model.Order) error
}

// NotificationDispatcher relays new orders to staff from a bounded queue.
type NotificationDispatcher struct {
	orders  OrderSource
	sender  Sender
	workers int
	logger  *slog.Logger
	metrics *metrics.Recorder

	jobs    chan int64
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// NewNotificationDispatcher constructs the dispatcher worker pool.
func NewNotificationDispatcher(orders OrderSource, sender Sender, workers, queueSize int, logger *slog.Logger, rec *metrics.Recorder) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		orders:  orders,
		sender:  sender,
		workers: workers,
		logger:  logger,
		metrics: rec,
		jobs:    make(chan int64, queueSize),
	}
}

// NotifyOrderCreated queues the order without blocking; a full queue drops it.
func (d *NotificationDispatcher) NotifyOrderCreated(orderID int64) {
	select {
	case d.jobs <- orderID:
	default:
		d.metrics.Notification("dropped")
		d.logger.Warn("notification queue full, dropping order notice", slog.Int64("order_id", orderID))
	}
}

// Start launches the workers.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.running = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop cancels in-flight deliveries and waits for all workers to finish.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.running = false
	d.mu.Unlock()

	d.wg.Wait()

	if pending := len(d.jobs); pending > 0 {
		d.logger.Warn("notifications left undelivered at shutdown", slog.Int("pending", pending))
	}
}

func (d *NotificationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case orderID := <-d.jobs:
			d.deliver(ctx, orderID)
		}
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, orderID int64) {
	order, err := d.orders.GetByID(ctx, orderID)
	if err != nil {
		d.metrics.Notification("failed")
		d.logger.Error("load order for notification failed", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return
	}
	items, err := d.orders.ListItems(ctx, orderID)
	if err != nil {
		d.metrics.Notification("failed")
		d.logger.Error("load order items for notification failed", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return
	}
	order.Items = items

	if err := d.sender.SendOrder(ctx, order); err != nil {
		d.metrics.Notification("failed")
		d.logger.Error("order notification failed", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return
	}
	d.metrics.Notification("sent")
	d.logger.Info("order notification sent", slog.Int64("order_id", orderID))
}
