package trade

import (
	"time"

	"github.com/orders/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderDTO is an order or basket with its computed total
type OrderDTO struct {
	ID        uint64            `json:"id"`
	State     trade.OrderState  `json:"state"`
	CreatedAt time.Time         `json:"dt"`
	Lines     []trade.OrderLine `json:"ordered_items"`
	Total     decimal.Decimal   `json:"total_sum"`
	Contact   *trade.Contact    `json:"contact"`
}

// ToOrderDTO converts a domain order
func ToOrderDTO(o *trade.Order) OrderDTO {
	lines := o.Lines
	if lines == nil {
		lines = []trade.OrderLine{}
	}
	return OrderDTO{
		ID:        o.ID,
		State:     o.State,
		CreatedAt: o.CreatedAt,
		Lines:     lines,
		Total:     o.Total(),
		Contact:   o.Contact,
	}
}

// ToOrderDTOs converts a list of domain orders
func ToOrderDTOs(orders []trade.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i := range orders {
		out[i] = ToOrderDTO(&orders[i])
	}
	return out
}
