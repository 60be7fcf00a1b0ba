package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errBatchRejected rolls back an add batch that has a failed outcome
var errBatchRejected = errors.New("basket batch rejected")

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// withOrderDetails preloads lines with their variants, products,
// categories and parameters
func withOrderDetails(db *gorm.DB) *gorm.DB {
	return withVariantDetails(
		db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.id ASC")
		}),
		"Lines.Variant.",
	)
}

// FindBasket loads the user's basket with every line detail
func (r *GormOrderRepository) FindBasket(ctx context.Context, userID uint64) (*trade.Order, error) {
	var order trade.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).
		Where("user_id = ? AND state = ?", userID, trade.OrderStateBasket).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// getOrCreateBasket returns the id of the user's basket, creating it when
// missing. A concurrent creator wins through the single basket index; the
// insert then does nothing and the committed basket is reloaded.
func getOrCreateBasket(tx *gorm.DB, userID uint64) (uint64, error) {
	var basket trade.Order
	err := tx.Select("id").Where("user_id = ? AND state = ?", userID, trade.OrderStateBasket).First(&basket).Error
	if err == nil {
		return basket.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	basket = *trade.NewBasket(userID)
	res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&basket)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		return basket.ID, nil
	}

	var existing trade.Order
	if err := tx.Select("id").Where("user_id = ? AND state = ?", userID, trade.OrderStateBasket).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// AddBasketLines inserts lines into the user's basket, all or nothing
func (r *GormOrderRepository) AddBasketLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (*trade.AddLinesResult, error) {
	outcomes, ok := trade.ValidateLines(lines)
	result := &trade.AddLinesResult{Outcomes: outcomes}
	if !ok {
		return result, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		basketID, err := getOrCreateBasket(tx, userID)
		if err != nil {
			return err
		}

		seen := make(map[uint64]bool, len(lines))
		for i, line := range lines {
			status, msg, err := addBasketLine(tx, basketID, line, seen)
			if err != nil {
				return err
			}
			result.Outcomes[i].Status = status
			result.Outcomes[i].Message = msg
			if status != trade.LineCreated {
				for j := i + 1; j < len(lines); j++ {
					result.Outcomes[j].Status = trade.LineNotApplied
				}
				return errBatchRejected
			}
			result.Created++
		}
		return nil
	})
	switch {
	case errors.Is(err, errBatchRejected):
		result.Created = 0
		for i := range result.Outcomes {
			if result.Outcomes[i].Status == trade.LineCreated {
				result.Outcomes[i].Status = trade.LineNotApplied
			}
		}
		return result, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}

func addBasketLine(tx *gorm.DB, basketID uint64, line trade.BasketLine, seen map[uint64]bool) (trade.LineOutcomeStatus, string, error) {
	if seen[line.VariantID] {
		return trade.LineDuplicate, trade.ErrDuplicateLine.Message, nil
	}
	seen[line.VariantID] = true

	var count int64
	if err := tx.Model(&catalog.ProductVariant{}).Where("id = ?", line.VariantID).Count(&count).Error; err != nil {
		return "", "", err
	}
	if count == 0 {
		return trade.LineUnknownVariant, fmt.Sprintf("Product info %d not found", line.VariantID), nil
	}

	if err := tx.Model(&trade.OrderLine{}).
		Where("order_id = ? AND variant_id = ?", basketID, line.VariantID).
		Count(&count).Error; err != nil {
		return "", "", err
	}
	if count > 0 {
		return trade.LineDuplicate, trade.ErrDuplicateLine.Message, nil
	}

	orderLine := trade.OrderLine{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    basketID,
		VariantID:  line.VariantID,
		Quantity:   line.Quantity,
	}
	if err := tx.Omit(clause.Associations).Create(&orderLine).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return trade.LineDuplicate, trade.ErrDuplicateLine.Message, nil
		}
		return "", "", err
	}
	return trade.LineCreated, "", nil
}

// UpdateBasketLines overwrites quantities of lines matched by variant
func (r *GormOrderRepository) UpdateBasketLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		basketIDs := tx.Model(&trade.Order{}).Select("id").
			Where("user_id = ? AND state = ?", userID, trade.OrderStateBasket)
		for _, line := range lines {
			res := tx.Model(&trade.OrderLine{}).
				Where("order_id IN (?) AND variant_id = ?", basketIDs, line.VariantID).
				Updates(map[string]any{"quantity": line.Quantity, "updated_at": time.Now()})
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// DeleteBasketLines deletes lines by id, scoped to the user's basket
func (r *GormOrderRepository) DeleteBasketLines(ctx context.Context, userID uint64, lineIDs []uint64) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	res := db.Where("id IN ? AND order_id IN (?)", lineIDs,
		db.Model(&trade.Order{}).Select("id").Where("user_id = ? AND state = ?", userID, trade.OrderStateBasket),
	).Delete(&trade.OrderLine{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// PlaceOrder binds the contact and moves the basket to state new
func (r *GormOrderRepository) PlaceOrder(ctx context.Context, userID, orderID, contactID uint64) (bool, error) {
	placed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&trade.Contact{}).
			Where("id = ? AND user_id = ?", contactID, userID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return trade.ErrContactNotOwned
		}

		res := tx.Model(&trade.Order{}).
			Where("id = ? AND user_id = ? AND state = ?", orderID, userID, trade.OrderStateBasket).
			Updates(map[string]any{
				"state":      trade.OrderStateNew,
				"contact_id": contactID,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		placed = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return placed, nil
}

// FindUserOrders lists the user's placed orders, newest first
func (r *GormOrderRepository) FindUserOrders(ctx context.Context, userID uint64) ([]trade.Order, error) {
	var orders []trade.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).
		Preload("Contact").
		Where("user_id = ? AND state <> ?", userID, trade.OrderStateBasket).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindShopOrders lists placed orders touching shops owned by ownerID,
// with only those shops' lines loaded
func (r *GormOrderRepository) FindShopOrders(ctx context.Context, ownerID uint64) ([]trade.Order, error) {
	db := r.db.WithContext(ctx)
	ownVariants := db.Model(&catalog.ProductVariant{}).Select("product_variants.id").
		Joins("JOIN shops ON shops.id = product_variants.shop_id").
		Where("shops.user_id = ?", ownerID)

	var orders []trade.Order
	if err := withVariantDetails(
		db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Where("order_lines.variant_id IN (?)", ownVariants).Order("order_lines.id ASC")
		}),
		"Lines.Variant.",
	).
		Preload("Contact").
		Where("state <> ?", trade.OrderStateBasket).
		Where("id IN (?)", db.Model(&trade.OrderLine{}).Select("order_id").Where("variant_id IN (?)", ownVariants)).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByID loads an order with its lines and contact
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint64) (*trade.Order, error) {
	var order trade.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).Preload("Contact").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateState persists order.State if the stored state is still from
func (r *GormOrderRepository) UpdateState(ctx context.Context, order *trade.Order, from trade.OrderState) error {
	res := r.db.WithContext(ctx).Model(&trade.Order{}).
		Where("id = ? AND state = ?", order.ID, from).
		Updates(map[string]any{"state": order.State, "updated_at": order.UpdatedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return trade.ErrStateChangedConcurrently
	}
	return nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
