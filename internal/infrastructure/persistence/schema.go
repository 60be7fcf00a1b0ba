package persistence

import (
	"fmt"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&identity.OneTimeToken{},
		&catalog.Shop{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Parameter{},
		&catalog.ProductVariant{},
		&catalog.VariantParameter{},
		&trade.Contact{},
		&trade.Order{},
		&trade.OrderLine{},
	}
}

// basketIndexSQL enforces at most one basket per user. Both PostgreSQL and
// SQLite support partial unique indexes.
const basketIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_single_basket ON orders (user_id) WHERE state = 'basket'`

// AutoMigrate creates the schema from the models. It backs the sqlite
// driver and tests; PostgreSQL deployments use the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(basketIndexSQL).Error; err != nil {
		return fmt.Errorf("create basket index: %w", err)
	}
	return nil
}
