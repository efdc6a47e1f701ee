package ordering

import (
	"context"
	"sync"
	"time"

	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often the watcher asks the backend for status
// updates on active remote orders.
const DefaultPollInterval = 15 * time.Second

// StatusWatcher polls the remote backend for status changes on mirrored
// remote orders and records valid transitions locally. Without a gateway it
// is a no-op; local-origin orders are never polled.
type StatusWatcher struct {
	historyRepo    ordering.OrderHistoryRepository
	gateway        ordering.RemoteOrderGateway
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	interval       time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewStatusWatcher creates a new StatusWatcher
func NewStatusWatcher(historyRepo ordering.OrderHistoryRepository, gateway ordering.RemoteOrderGateway, logger *zap.Logger) *StatusWatcher {
	return &StatusWatcher{
		historyRepo: historyRepo,
		gateway:     gateway,
		logger:      logger,
		interval:    DefaultPollInterval,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// SetEventPublisher sets the event publisher for status change events
func (w *StatusWatcher) SetEventPublisher(publisher shared.EventPublisher) {
	w.eventPublisher = publisher
}

// SetInterval overrides the polling interval
func (w *StatusWatcher) SetInterval(d time.Duration) {
	w.interval = d
}

// Start begins polling in the background until Stop is called or the
// context is cancelled.
func (w *StatusWatcher) Start(ctx context.Context) {
	if w.gateway == nil {
		w.logger.Info("no remote backend configured, status watcher disabled")
		close(w.done)
		return
	}
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.Poll(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the poll loop to exit
func (w *StatusWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// Poll performs one status sweep over active remote orders. Exported so a
// client-triggered refresh can reuse the same path.
func (w *StatusWatcher) Poll(ctx context.Context) {
	orders, err := w.historyRepo.ListActive(ctx)
	if err != nil {
		w.logger.Warn("failed to list active orders for status poll", zap.Error(err))
		return
	}
	for _, order := range orders {
		if order.Origin != ordering.OriginRemote {
			continue
		}
		w.pollOne(ctx, order)
	}
}

func (w *StatusWatcher) pollOne(ctx context.Context, order *ordering.SubmittedOrder) {
	status, err := w.gateway.FetchStatus(ctx, order.ID)
	if err != nil {
		w.logger.Debug("status fetch failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return
	}
	if status == order.Status || !status.IsValid() {
		return
	}
	if !order.Status.CanTransitionTo(status) {
		w.logger.Warn("backend reported an invalid status transition, ignoring",
			zap.String("order_id", order.ID.String()),
			zap.String("from", order.Status.String()),
			zap.String("to", status.String()))
		return
	}
	if err := w.historyRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		w.logger.Error("failed to record order status change",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return
	}
	if w.eventPublisher != nil {
		event := ordering.NewOrderStatusChangedEvent(order.ID, order.Status, status)
		if err := w.eventPublisher.Publish(ctx, event); err != nil {
			w.logger.Warn("failed to publish status change event",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
}
