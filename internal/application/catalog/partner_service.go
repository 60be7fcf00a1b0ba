package catalog

import (
	"context"
	"errors"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/infrastructure/feed"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrShopNotFound is returned to a partner that has not imported a catalog yet
var ErrShopNotFound = shared.NewDomainError("NOT_FOUND", "Shop not found")

// ErrImportBusy is returned when the import queue cannot take another job
var ErrImportBusy = shared.NewDomainError("IMPORT_BUSY", "Too many catalog imports in progress, try again later")

// ImportEnqueuer accepts import jobs
type ImportEnqueuer interface {
	Enqueue(job ImportJob) error
}

// PartnerService covers the shop partner's own shop: state and catalog updates
type PartnerService struct {
	shops  catalog.ShopRepository
	queue  ImportEnqueuer
	events shared.EventPublisher
}

// NewPartnerService creates a new partner service
func NewPartnerService(shops catalog.ShopRepository, queue ImportEnqueuer, events shared.EventPublisher) *PartnerService {
	return &PartnerService{
		shops:  shops,
		queue:  queue,
		events: events,
	}
}

// RequestUpdate validates the feed URL and schedules the import.
// The result of the run is only visible in logs and metrics.
func (s *PartnerService) RequestUpdate(ctx context.Context, ownerID uint64, rawURL string) error {
	if _, err := feed.ValidateURL(rawURL); err != nil {
		return catalog.ErrInvalidURL
	}

	job := ImportJob{
		OwnerID:   ownerID,
		URL:       rawURL,
		RequestID: logger.GetRequestID(ctx),
	}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, ErrQueueFull) {
			return ErrImportBusy
		}
		return err
	}

	logger.L(ctx).Info("Catalog import scheduled", zap.Uint64("owner_id", ownerID))
	return nil
}

// GetState returns the caller's shop
func (s *PartnerService) GetState(ctx context.Context, ownerID uint64) (*catalog.Shop, error) {
	shop, err := s.shops.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// SetState opens or closes the caller's shop for orders
func (s *PartnerService) SetState(ctx context.Context, ownerID uint64, state bool) error {
	shop, err := s.GetState(ctx, ownerID)
	if err != nil {
		return err
	}

	shop.SetState(state)
	if err := s.shops.Save(ctx, shop); err != nil {
		return err
	}

	if events := shop.GetDomainEvents(); len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			logger.L(ctx).Error("Failed to publish shop events", zap.Error(err))
		}
		shop.ClearDomainEvents()
	}

	logger.L(ctx).Info("Shop state updated", zap.Uint64("shop_id", shop.ID), zap.Bool("state", state))
	return nil
}
