package catalog

import (
	"github.com/orders/backend/internal/domain/shared"
)

// MaxCategoryNameLength bounds Category.Name
const MaxCategoryNameLength = 40

// Category groups products. Its ID is assigned by partner feeds, and a
// category is linked to every shop whose feed mentions it.
type Category struct {
	shared.BaseEntity
	Name  string `gorm:"type:varchar(40);not null" json:"name"`
	Shops []Shop `gorm:"many2many:category_shops;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}
