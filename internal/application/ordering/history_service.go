package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/ordering"
	"go.uber.org/zap"
)

// HistoryService serves the locally mirrored "my orders" view. It works
// entirely off the local mirror so the history survives backend outages.
type HistoryService struct {
	historyRepo ordering.OrderHistoryRepository
	logger      *zap.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(historyRepo ordering.OrderHistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// GetByID returns one mirrored order
func (s *HistoryService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.historyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// ListByDevice returns the device's orders, newest first. An unknown device
// simply has no orders yet.
func (s *HistoryService) ListByDevice(ctx context.Context, device ordering.DeviceContext) ([]OrderResponse, error) {
	orders, err := s.historyRepo.ListByDevice(ctx, device)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = ToOrderResponse(order)
	}
	return responses, nil
}
