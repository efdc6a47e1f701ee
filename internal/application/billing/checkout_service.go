package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tableside/backend/internal/domain/billing"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CheckoutService prices selections and manages split-bill flows. Pricing is
// read-only over the selection; only sessions and their payments are written.
type CheckoutService struct {
	selectionRepo  ordering.SelectionRepository
	sessionRepo    billing.SessionRepository
	pricing        billing.PricingConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	selectionRepo ordering.SelectionRepository,
	sessionRepo billing.SessionRepository,
	pricing billing.PricingConfig,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		selectionRepo: selectionRepo,
		sessionRepo:   sessionRepo,
		pricing:       pricing,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PricingConfig returns the merchant pricing configuration (read-only view
// for the UI: presets, modes, enabled stages).
func (s *CheckoutService) PricingConfig() billing.PricingConfig {
	return s.pricing
}

// Quote computes the full price breakdown for a selection. An empty
// selection quotes as all zeros.
func (s *CheckoutService) Quote(ctx context.Context, selectionID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	selection, err := s.selectionRepo.FindByID(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	totals, tip, err := s.price(selection, req.TipMode, req.TipValue)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(totals, tip)
	return &response, nil
}

// SplitEqual divides the quoted total evenly across n payers with the
// exact-sum cent distribution.
func (s *CheckoutService) SplitEqual(ctx context.Context, selectionID uuid.UUID, req EqualSplitRequest) (*EqualSplitResponse, error) {
	selection, err := s.selectionRepo.FindByID(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	totals, _, err := s.price(selection, req.TipMode, req.TipValue)
	if err != nil {
		return nil, err
	}
	shares, err := billing.SplitEqual(totals.Total, req.Payers)
	if err != nil {
		return nil, err
	}
	amounts := make([]decimal.Decimal, len(shares))
	for i, share := range shares {
		amounts[i] = share.Amount()
	}
	return &EqualSplitResponse{
		Total:    totals.Total.Amount(),
		Shares:   amounts,
		Currency: string(totals.Total.Currency()),
	}, nil
}

// CreateSession opens a named billing session for a selection
func (s *CheckoutService) CreateSession(ctx context.Context, selectionID uuid.UUID, req CreateSessionRequest) (*SessionResponse, error) {
	if _, err := s.selectionRepo.FindByID(ctx, selectionID); err != nil {
		return nil, err
	}
	session := billing.NewSession(selectionID, req.Label)
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// ListSessions returns all billing sessions partitioning a selection
func (s *CheckoutService) ListSessions(ctx context.Context, selectionID uuid.UUID) ([]SessionResponse, error) {
	sessions, err := s.sessionRepo.FindBySelection(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	responses := make([]SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = ToSessionResponse(session)
	}
	return responses, nil
}

// DeleteSession removes a session, returning its line items to the
// unassigned pool.
func (s *CheckoutService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// AssignItem assigns a line item to a session. The item must exist in the
// session's selection, and an item belongs to at most one session: assigning
// moves it out of any sibling session holding it.
func (s *CheckoutService) AssignItem(ctx context.Context, sessionID uuid.UUID, req AssignItemRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	selection, err := s.selectionRepo.FindByID(ctx, session.SelectionID)
	if err != nil {
		return nil, err
	}
	if !selection.Contains(req.LineItemKey) {
		return nil, shared.ErrNotFound
	}

	siblings, err := s.sessionRepo.FindBySelection(ctx, session.SelectionID)
	if err != nil {
		return nil, err
	}
	for _, sibling := range siblings {
		if sibling.ID == session.ID || !sibling.Contains(req.LineItemKey) {
			continue
		}
		sibling.Unassign(req.LineItemKey)
		if err := s.sessionRepo.Save(ctx, sibling); err != nil {
			return nil, err
		}
	}

	session.Assign(req.LineItemKey)
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// UnassignItem removes a line item from a session
func (s *CheckoutService) UnassignItem(ctx context.Context, sessionID uuid.UUID, req AssignItemRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Unassign(req.LineItemKey)
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// SplitBySessions computes each session's share of the selection's totals
func (s *CheckoutService) SplitBySessions(ctx context.Context, selectionID uuid.UUID, req QuoteRequest) (*SessionSplitResponse, error) {
	selection, err := s.selectionRepo.FindByID(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.FindBySelection(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	totals, _, err := s.price(selection, req.TipMode, req.TipValue)
	if err != nil {
		return nil, err
	}
	shares, err := billing.SplitBySessions(sessions, lineTotalsOf(selection), totals)
	if err != nil {
		return nil, err
	}
	return &SessionSplitResponse{
		Shares:             ToSessionShareResponses(shares),
		OrderPaymentStatus: string(billing.OrderPaymentStatus(sessions)),
		Currency:           string(totals.Total.Currency()),
	}, nil
}

// RecordPayment applies a payment against a session's computed share and
// returns the session plus the derived order-level payment status.
func (s *CheckoutService) RecordPayment(ctx context.Context, sessionID uuid.UUID, req PaymentRequest) (*SessionResponse, string, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	selection, err := s.selectionRepo.FindByID(ctx, session.SelectionID)
	if err != nil {
		return nil, "", err
	}
	sessions, err := s.sessionRepo.FindBySelection(ctx, session.SelectionID)
	if err != nil {
		return nil, "", err
	}

	totals, _, err := s.price(selection, string(billing.TipNone), decimal.Zero)
	if err != nil {
		return nil, "", err
	}
	shares, err := billing.SplitBySessions(sessions, lineTotalsOf(selection), totals)
	if err != nil {
		return nil, "", err
	}

	share := valueobject.Zero(totals.Total.Currency())
	for _, sh := range shares {
		if sh.SessionID == sessionID {
			share = sh.Total
			break
		}
	}

	amount, err := valueobject.NewMoney(req.Amount, totals.Total.Currency())
	if err != nil {
		return nil, "", shared.ErrInvalidInput
	}
	if err := session.RecordPayment(amount, share); err != nil {
		return nil, "", err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, "", err
	}

	// refresh the derived order status with the updated session state
	for i, existing := range sessions {
		if existing.ID == session.ID {
			sessions[i] = session
		}
	}
	orderStatus := billing.OrderPaymentStatus(sessions)

	if s.eventPublisher != nil {
		event := billing.NewSessionPaidEvent(session, orderStatus)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish session paid event",
				zap.String("session_id", session.ID.String()),
				zap.Error(err))
		}
	}

	response := ToSessionResponse(session)
	return &response, string(orderStatus), nil
}

func (s *CheckoutService) price(selection *ordering.Selection, tipMode string, tipValue decimal.Decimal) (billing.Totals, billing.TipResult, error) {
	subtotal := selection.Subtotal()

	mode := billing.TipMode(tipMode)
	if tipMode == "" {
		mode = billing.TipNone
	}
	if mode != billing.TipNone && !s.pricing.Tip.Enabled {
		mode = billing.TipNone
	}
	if mode == billing.TipCustom && !s.pricing.Tip.AllowCustom {
		return billing.Totals{}, billing.TipResult{}, shared.ErrInvalidInput
	}

	taxAmount := billing.TaxAmountFor(subtotal, s.pricing.Tax)
	base := billing.TipBase(subtotal, taxAmount, s.pricing.Tip)
	tip, err := billing.ResolveTip(mode, tipValue, base)
	if err != nil {
		return billing.Totals{}, billing.TipResult{}, err
	}
	return billing.ComputeTotals(subtotal, s.pricing, tip.Amount), tip, nil
}

func lineTotalsOf(selection *ordering.Selection) map[string]valueobject.Money {
	totals := make(map[string]valueobject.Money, len(selection.Items()))
	for _, item := range selection.Items() {
		totals[item.Key] = item.LineTotal()
	}
	return totals
}
