package ordering

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/tableside/backend/internal/domain/ordering"
	"github.com/tableside/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SelectionService handles cart mutations. All mutations of one selection
// are serialized through a per-selection mutex; the engine assumes one
// customer per selection but tolerates racing requests from the same device.
type SelectionService struct {
	selectionRepo  ordering.SelectionRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSelectionService creates a new SelectionService
func NewSelectionService(selectionRepo ordering.SelectionRepository, logger *zap.Logger) *SelectionService {
	return &SelectionService{
		selectionRepo: selectionRepo,
		logger:        logger,
		locks:         make(map[uuid.UUID]*sync.Mutex),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SelectionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SelectionService) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

// load fetches a selection, creating an empty one for unknown IDs so a fresh
// device always starts with an empty cart rather than a 404.
func (s *SelectionService) load(ctx context.Context, id uuid.UUID) (*ordering.Selection, error) {
	selection, err := s.selectionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ordering.NewSelection(id), nil
		}
		return nil, err
	}
	return selection, nil
}

// Get returns the current cart view for a selection
func (s *SelectionService) Get(ctx context.Context, id uuid.UUID) (*SelectionResponse, error) {
	selection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSelectionResponse(selection)
	return &response, nil
}

// AddItem adds a line item to the selection, merging quantities when the
// same product with the same customization set is already present.
func (s *SelectionService) AddItem(ctx context.Context, id uuid.UUID, req AddItemRequest) (*SelectionResponse, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	selection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	item, err := selection.Add(toProduct(req.Product), quantity, toCustomizations(req.Customizations))
	if err != nil {
		return nil, err
	}
	if err := s.selectionRepo.Save(ctx, selection); err != nil {
		return nil, err
	}

	s.publishChange(ctx, selection, ordering.ChangeItemAdded, item.Key)
	response := ToSelectionResponse(selection)
	return &response, nil
}

// IncrementItem adds one unit of a (product, customizations) pairing
func (s *SelectionService) IncrementItem(ctx context.Context, id uuid.UUID, req ToggleItemRequest) (*SelectionResponse, error) {
	return s.AddItem(ctx, id, AddItemRequest{
		Product:        req.Product,
		Quantity:       1,
		Customizations: req.Customizations,
	})
}

// DecrementItem lowers the keyed line item's quantity by one, removing it at
// quantity 1. An absent key leaves the selection unchanged.
func (s *SelectionService) DecrementItem(ctx context.Context, id uuid.UUID, key string) (*SelectionResponse, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	selection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if selection.Decrement(key) {
		if err := s.selectionRepo.Save(ctx, selection); err != nil {
			return nil, err
		}
		change := ordering.ChangeItemUpdated
		if !selection.Contains(key) {
			change = ordering.ChangeItemRemoved
		}
		s.publishChange(ctx, selection, change, key)
	}
	response := ToSelectionResponse(selection)
	return &response, nil
}

// RemoveItem deletes the keyed line item regardless of quantity
func (s *SelectionService) RemoveItem(ctx context.Context, id uuid.UUID, key string) (*SelectionResponse, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	selection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if selection.Remove(key) {
		if err := s.selectionRepo.Save(ctx, selection); err != nil {
			return nil, err
		}
		s.publishChange(ctx, selection, ordering.ChangeItemRemoved, key)
	}
	response := ToSelectionResponse(selection)
	return &response, nil
}

// ToggleItem adds the pairing when absent and removes it when present
func (s *SelectionService) ToggleItem(ctx context.Context, id uuid.UUID, req ToggleItemRequest) (*SelectionResponse, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	selection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	present, err := selection.Toggle(toProduct(req.Product), toCustomizations(req.Customizations))
	if err != nil {
		return nil, err
	}
	if err := s.selectionRepo.Save(ctx, selection); err != nil {
		return nil, err
	}

	key := ordering.DeriveLineKey(req.Product.ID, customizationInputIDs(req.Customizations))
	change := ordering.ChangeItemRemoved
	if present {
		change = ordering.ChangeItemAdded
	}
	s.publishChange(ctx, selection, change, key)

	response := ToSelectionResponse(selection)
	return &response, nil
}

// Clear removes every line item from the selection
func (s *SelectionService) Clear(ctx context.Context, id uuid.UUID) (*SelectionResponse, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	selection, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if selection.Clear() {
		if err := s.selectionRepo.Save(ctx, selection); err != nil {
			return nil, err
		}
		s.publishChange(ctx, selection, ordering.ChangeCleared, "")
	}
	response := ToSelectionResponse(selection)
	return &response, nil
}

func (s *SelectionService) publishChange(ctx context.Context, selection *ordering.Selection, change ordering.SelectionChangeKind, key string) {
	if s.eventPublisher == nil {
		return
	}
	event := ordering.NewSelectionChangedEvent(selection.ID, change, key, selection.Count())
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish selection change",
			zap.String("selection_id", selection.ID.String()),
			zap.Error(err))
	}
}

func customizationInputIDs(inputs []CustomizationInput) []string {
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ID
	}
	return ids
}
