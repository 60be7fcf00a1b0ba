package catalog

import (
	"github.com/orders/backend/internal/domain/shared"
)

// Event type constants for the catalog context
const (
	EventTypeCatalogImported  = "CatalogImported"
	EventTypeShopStateChanged = "ShopStateChanged"
	AggregateTypeShop         = "Shop"
)

// CatalogImportedEvent is published after a feed import committed
type CatalogImportedEvent struct {
	shared.BaseDomainEvent
	ShopName string        `json:"shop_name"`
	OwnerID  uint64        `json:"owner_id"`
	Summary  ImportSummary `json:"summary"`
}

// NewCatalogImportedEvent creates a CatalogImportedEvent from a committed import
func NewCatalogImportedEvent(ownerID uint64, summary ImportSummary) *CatalogImportedEvent {
	return &CatalogImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogImported, AggregateTypeShop, summary.ShopID),
		ShopName:        summary.ShopName,
		OwnerID:         ownerID,
		Summary:         summary,
	}
}

// ShopStateChangedEvent is published when a shop starts or stops accepting orders
type ShopStateChangedEvent struct {
	shared.BaseDomainEvent
	State bool `json:"state"`
}

// NewShopStateChangedEvent creates a ShopStateChangedEvent
func NewShopStateChangedEvent(s *Shop) *ShopStateChangedEvent {
	return &ShopStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopStateChanged, AggregateTypeShop, s.ID),
		State:           s.State,
	}
}
