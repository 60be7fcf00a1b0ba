package catalog

import (
	"github.com/orders/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Column bounds of product names, variant models and parameter names
const (
	MaxProductNameLength   = 80
	MaxModelLength         = 80
	MaxParameterNameLength = 40
)

// Product is shop independent master data, unique by (name, category).
type Product struct {
	shared.BaseEntity
	Name       string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_product_name_category" json:"name"`
	CategoryID uint64    `gorm:"not null;uniqueIndex:idx_product_name_category" json:"-"`
	Category   *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductVariant is one shop's listing of a product, called product info
// on the wire. Unique by (product, shop, external id).
type ProductVariant struct {
	shared.BaseEntity
	Model      string             `gorm:"type:varchar(80)" json:"model"`
	ExternalID uint64             `gorm:"not null;uniqueIndex:idx_variant_product_shop_external" json:"external_id"`
	ProductID  uint64             `gorm:"not null;uniqueIndex:idx_variant_product_shop_external" json:"-"`
	ShopID     uint64             `gorm:"not null;index;uniqueIndex:idx_variant_product_shop_external" json:"shop"`
	Quantity   int                `gorm:"not null;default:0" json:"quantity"`
	Price      decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"price"`
	PriceRRC   decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"price_rrc"`
	Product    *Product           `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Shop       *Shop              `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Parameters []VariantParameter `gorm:"foreignKey:VariantID" json:"product_parameters"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// Parameter is a named product characteristic, unique by name.
type Parameter struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(40);not null;uniqueIndex" json:"name"`
}

// TableName returns the table name for GORM
func (Parameter) TableName() string {
	return "parameters"
}

// MaxParameterValueLength bounds VariantParameter.Value
const MaxParameterValueLength = 128

// VariantParameter is the value of one parameter for one variant,
// unique by (variant, parameter).
type VariantParameter struct {
	shared.BaseEntity
	VariantID   uint64     `gorm:"not null;uniqueIndex:idx_variant_parameter" json:"-"`
	ParameterID uint64     `gorm:"not null;uniqueIndex:idx_variant_parameter" json:"-"`
	Value       string     `gorm:"type:varchar(128);not null" json:"value"`
	Parameter   *Parameter `gorm:"constraint:OnDelete:CASCADE" json:"parameter,omitempty"`
}

// TableName returns the table name for GORM
func (VariantParameter) TableName() string {
	return "product_variant_parameters"
}
