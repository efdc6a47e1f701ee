package ordering

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/billing"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// DefaultRemoteTimeout bounds the remote create call so a slow backend
// degrades to the local fallback instead of hanging the customer.
const DefaultRemoteTimeout = 10 * time.Second

// SubmissionService coordinates order placement: remote-first with a bounded
// timeout, falling back to a locally mirrored order with a synthesized code
// when the backend is unreachable. The whole flow is one logical attempt;
// replays of the same attempt ID never create a second order.
type SubmissionService struct {
	selectionRepo  ordering.SelectionRepository
	historyRepo    ordering.OrderHistoryRepository
	counter        ordering.OrderCounter
	gateway        ordering.RemoteOrderGateway
	attemptStore   shared.AttemptStore
	attemptConfig  shared.AttemptConfig
	pricing        billing.PricingConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	remoteTimeout  time.Duration

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewSubmissionService creates a new SubmissionService. gateway may be nil
// for venues running without a remote backend; every submission then takes
// the local path directly.
func NewSubmissionService(
	selectionRepo ordering.SelectionRepository,
	historyRepo ordering.OrderHistoryRepository,
	counter ordering.OrderCounter,
	gateway ordering.RemoteOrderGateway,
	attemptStore shared.AttemptStore,
	pricing billing.PricingConfig,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		selectionRepo: selectionRepo,
		historyRepo:   historyRepo,
		counter:       counter,
		gateway:       gateway,
		attemptStore:  attemptStore,
		attemptConfig: shared.DefaultAttemptConfig(),
		pricing:       pricing,
		logger:        logger,
		remoteTimeout: DefaultRemoteTimeout,
		inFlight:      make(map[uuid.UUID]struct{}),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SubmissionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRemoteTimeout overrides the bound on the remote create call
func (s *SubmissionService) SetRemoteTimeout(d time.Duration) {
	s.remoteTimeout = d
}

// SetAttemptConfig overrides attempt deduplication settings
func (s *SubmissionService) SetAttemptConfig(cfg shared.AttemptConfig) {
	s.attemptConfig = cfg
}

// Submit places the order built in a selection. Exactly one of three
// outcomes: a confirmed remote order, a confirmed local-fallback order, or
// an error with the selection left untouched. On confirmation the order is
// mirrored into local history first, then the selection is cleared.
func (s *SubmissionService) Submit(ctx context.Context, selectionID uuid.UUID, req SubmitOrderRequest) (*OrderResponse, error) {
	if err := s.beginAttempt(ctx, selectionID, req.AttemptID); err != nil {
		return nil, err
	}
	defer s.endSubmission(selectionID)

	selection, err := s.selectionRepo.FindByID(ctx, selectionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrEmptySelection
		}
		return nil, err
	}
	if selection.IsEmpty() {
		return nil, shared.ErrEmptySelection
	}

	subtotal := selection.Subtotal()
	tip, err := s.resolveTip(req, subtotal)
	if err != nil {
		return nil, err
	}
	totals := billing.ComputeTotals(subtotal, s.pricing, tip)
	if !totals.Total.IsPositive() {
		return nil, shared.ErrInvalidInput
	}

	order := s.placeOrder(ctx, selection, totals, req)
	if order == nil {
		return nil, shared.ErrInvalidState
	}

	s.mirror(ctx, order)
	s.clearSelection(ctx, selection)
	s.markAttemptProcessed(ctx, req.AttemptID)

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, ordering.NewOrderSubmittedEvent(order)); err != nil {
			s.logger.Warn("failed to publish order submitted event",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// beginAttempt takes the per-selection in-flight slot and rejects replayed
// attempt IDs. Only one submission per selection runs at a time.
func (s *SubmissionService) beginAttempt(ctx context.Context, selectionID uuid.UUID, attemptID string) error {
	s.mu.Lock()
	if _, busy := s.inFlight[selectionID]; busy {
		s.mu.Unlock()
		return shared.ErrInFlight
	}
	s.inFlight[selectionID] = struct{}{}
	s.mu.Unlock()

	if s.attemptStore != nil && s.attemptConfig.Enabled && attemptID != "" {
		processed, err := s.attemptStore.IsProcessed(ctx, attemptID)
		if err != nil {
			s.logger.Warn("attempt store lookup failed, proceeding without dedup",
				zap.String("attempt_id", attemptID),
				zap.Error(err))
		} else if processed {
			s.endSubmission(selectionID)
			return shared.ErrAlreadyExists
		}
	}
	return nil
}

func (s *SubmissionService) endSubmission(selectionID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, selectionID)
	s.mu.Unlock()
}

func (s *SubmissionService) markAttemptProcessed(ctx context.Context, attemptID string) {
	if s.attemptStore == nil || !s.attemptConfig.Enabled || attemptID == "" {
		return
	}
	if _, err := s.attemptStore.MarkProcessed(ctx, attemptID, s.attemptConfig.TTL); err != nil {
		s.logger.Warn("failed to mark attempt processed",
			zap.String("attempt_id", attemptID),
			zap.Error(err))
	}
}

func (s *SubmissionService) resolveTip(req SubmitOrderRequest, subtotal valueobject.Money) (valueobject.Money, error) {
	mode := billing.TipMode(req.TipMode)
	if req.TipMode == "" {
		mode = billing.TipNone
	}
	// tipping disabled by the venue: silently drop rather than reject
	if mode != billing.TipNone && !s.pricing.Tip.Enabled {
		return valueobject.Zero(subtotal.Currency()), nil
	}
	if mode == billing.TipCustom && !s.pricing.Tip.AllowCustom {
		return valueobject.Money{}, shared.ErrInvalidInput
	}
	taxAmount := billing.TaxAmountFor(subtotal, s.pricing.Tax)
	base := billing.TipBase(subtotal, taxAmount, s.pricing.Tip)
	result, err := billing.ResolveTip(mode, req.TipValue, base)
	if err != nil {
		return valueobject.Money{}, err
	}
	return result.Amount, nil
}

// placeOrder tries the remote backend first, then falls back to local. It
// never returns a nil order together with a usable remote result; a nil
// return means even the local counter failed.
func (s *SubmissionService) placeOrder(ctx context.Context, selection *ordering.Selection, totals billing.Totals, req SubmitOrderRequest) *ordering.SubmittedOrder {
	items := ordering.SubmittedItemsFrom(selection.Items())

	if s.gateway != nil {
		if order := s.placeRemote(ctx, selection, totals, items, req); order != nil {
			return order
		}
	}
	return s.placeLocal(ctx, selection, totals, items, req)
}

func (s *SubmissionService) placeRemote(ctx context.Context, selection *ordering.Selection, totals billing.Totals, items []ordering.SubmittedItem, req SubmitOrderRequest) *ordering.SubmittedOrder {
	remoteCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	draft := ordering.RemoteOrderDraft{
		Subtotal:      totals.Subtotal,
		Total:         totals.Total,
		Table:         req.TableContext(),
		Device:        req.DeviceContext(),
		CustomerNotes: req.CustomerNotes,
	}
	remote, err := s.gateway.CreateOrder(remoteCtx, draft)
	if err != nil {
		s.logger.Warn("remote order creation failed, falling back to local",
			zap.String("selection_id", selection.ID.String()),
			zap.Error(err))
		return nil
	}

	// Item attachment failure after the order row exists is a reporting
	// gap on the backend, not a reason to fail or duplicate the order.
	if err := s.gateway.CreateOrderItems(remoteCtx, remote.ID, items); err != nil {
		s.logger.Error("remote order items creation failed, order kept without items",
			zap.String("order_id", remote.ID.String()),
			zap.Error(err))
	}

	status := remote.Status
	if !status.IsValid() {
		status = ordering.OrderStatusPending
	}
	submittedAt := remote.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	return &ordering.SubmittedOrder{
		ID:            remote.ID,
		HumanCode:     remote.HumanCode,
		Status:        status,
		Origin:        ordering.OriginRemote,
		Total:         totals.Total,
		Subtotal:      totals.Subtotal,
		Items:         items,
		Table:         req.TableContext(),
		Device:        req.DeviceContext(),
		CustomerNotes: req.CustomerNotes,
		SubmittedAt:   submittedAt,
	}
}

func (s *SubmissionService) placeLocal(ctx context.Context, selection *ordering.Selection, totals billing.Totals, items []ordering.SubmittedItem, req SubmitOrderRequest) *ordering.SubmittedOrder {
	n, err := s.counter.Next(ctx)
	if err != nil {
		s.logger.Error("local order counter failed",
			zap.String("selection_id", selection.ID.String()),
			zap.Error(err))
		return nil
	}
	return &ordering.SubmittedOrder{
		ID:            uuid.New(),
		HumanCode:     ordering.FormatLocalOrderCode(n),
		Status:        ordering.OrderStatusPending,
		Origin:        ordering.OriginLocal,
		Total:         totals.Total,
		Subtotal:      totals.Subtotal,
		Items:         items,
		Table:         req.TableContext(),
		Device:        req.DeviceContext(),
		CustomerNotes: req.CustomerNotes,
		SubmittedAt:   time.Now(),
	}
}

// mirror appends the confirmed order to local history. A failure here loses
// the local "my orders" entry but never the placed order, so it is logged
// and the submission still succeeds.
func (s *SubmissionService) mirror(ctx context.Context, order *ordering.SubmittedOrder) {
	if err := s.historyRepo.Append(ctx, order); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return
		}
		s.logger.Error("failed to mirror order into local history",
			zap.String("order_id", order.ID.String()),
			zap.String("human_code", order.HumanCode),
			zap.Error(err))
	}
}

func (s *SubmissionService) clearSelection(ctx context.Context, selection *ordering.Selection) {
	if !selection.Clear() {
		return
	}
	if err := s.selectionRepo.Save(ctx, selection); err != nil {
		s.logger.Error("failed to clear selection after submission",
			zap.String("selection_id", selection.ID.String()),
			zap.Error(err))
	}
}
