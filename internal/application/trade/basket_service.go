package trade

import (
	"context"
	"errors"

	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrNoLineIDs is returned when a delete request names no usable line id
var ErrNoLineIDs = shared.NewDomainError("INVALID_INPUT", "No basket line ids given")

// BasketRecorder receives basket metrics
type BasketRecorder interface {
	BasketLinesAdded(n int)
}

// BasketService edits the caller's basket
type BasketService struct {
	orders   trade.OrderRepository
	recorder BasketRecorder
}

// NewBasketService creates a new basket service
func NewBasketService(orders trade.OrderRepository, recorder BasketRecorder) *BasketService {
	return &BasketService{
		orders:   orders,
		recorder: recorder,
	}
}

// Get returns the basket as a list of zero or one orders
func (s *BasketService) Get(ctx context.Context, userID uint64) ([]OrderDTO, error) {
	basket, err := s.orders.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []OrderDTO{}, nil
		}
		return nil, err
	}
	return []OrderDTO{ToOrderDTO(basket)}, nil
}

// AddLines inserts the lines all or nothing. A rejected batch is not an
// error: the result carries the outcome of every entry.
func (s *BasketService) AddLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (*trade.AddLinesResult, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "items must not be empty")
	}

	result, err := s.orders.AddBasketLines(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	if failed := result.FirstFailure(); failed != nil {
		logger.L(ctx).Info("Basket lines rejected",
			zap.Int("index", failed.Index),
			zap.Uint64("variant_id", failed.VariantID),
			zap.String("status", string(failed.Status)),
		)
		return result, nil
	}
	if s.recorder != nil {
		s.recorder.BasketLinesAdded(result.Created)
	}
	return result, nil
}

// UpdateLines overwrites quantities. Entries matching no line are skipped and not counted.
func (s *BasketService) UpdateLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (int64, error) {
	if len(lines) == 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "items must not be empty")
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return 0, shared.NewDomainError("INVALID_INPUT", err.Error())
		}
	}
	return s.orders.UpdateBasketLines(ctx, userID, lines)
}

// RemoveLines deletes lines given as "id,id,...". Non numeric ids are dropped.
func (s *BasketService) RemoveLines(ctx context.Context, userID uint64, raw string) (int64, error) {
	ids := shared.ParseIDList(raw)
	if len(ids) == 0 {
		return 0, ErrNoLineIDs
	}
	return s.orders.DeleteBasketLines(ctx, userID, ids)
}
