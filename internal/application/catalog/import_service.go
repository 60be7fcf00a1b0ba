package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/infrastructure/feed"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Import outcomes, used as metric labels
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeInvalidURL    = "invalid_url"
	OutcomeFetchError    = "fetch_error"
	OutcomeMalformedFeed = "malformed_feed"
	OutcomeConflict      = "conflict"
	OutcomeFailed        = "failed"
)

// ImportService reconciles partner feeds into the catalog
type ImportService struct {
	fetcher  FeedFetcher
	writer   catalog.CatalogWriter
	shops    catalog.ShopRepository
	locker   ShopLocker
	events   shared.EventPublisher
	archive  FeedArchive
	recorder ImportRecorder
	now      func() time.Time
}

// ImportOption configures optional collaborators of ImportService
type ImportOption func(*ImportService)

// WithArchive stores every fetched document before it is parsed
func WithArchive(archive FeedArchive) ImportOption {
	return func(s *ImportService) {
		s.archive = archive
	}
}

// WithRecorder reports run outcomes and durations
func WithRecorder(recorder ImportRecorder) ImportOption {
	return func(s *ImportService) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// NewImportService creates a new import service
func NewImportService(
	fetcher FeedFetcher,
	writer catalog.CatalogWriter,
	shops catalog.ShopRepository,
	locker ShopLocker,
	events shared.EventPublisher,
	opts ...ImportOption,
) *ImportService {
	s := &ImportService{
		fetcher:  fetcher,
		writer:   writer,
		shops:    shops,
		locker:   locker,
		events:   events,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportURL fetches the feed at rawURL and applies it as the catalog of the owner's shop
func (s *ImportService) ImportURL(ctx context.Context, ownerID uint64, rawURL string) (*catalog.ImportSummary, error) {
	start := s.now()

	if _, err := feed.ValidateURL(rawURL); err != nil {
		s.finish(ctx, ownerID, nil, err, start)
		return nil, err
	}

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.finish(ctx, ownerID, nil, err, start)
		return nil, err
	}

	summary, err := s.apply(ctx, ownerID, body)
	if err == nil {
		s.rememberURL(ctx, summary.ShopID, rawURL)
	}
	s.finish(ctx, ownerID, summary, err, start)
	return summary, err
}

// ImportDocument applies an already loaded feed document
func (s *ImportService) ImportDocument(ctx context.Context, ownerID uint64, body []byte) (*catalog.ImportSummary, error) {
	start := s.now()
	summary, err := s.apply(ctx, ownerID, body)
	s.finish(ctx, ownerID, summary, err, start)
	return summary, err
}

func (s *ImportService) apply(ctx context.Context, ownerID uint64, body []byte) (*catalog.ImportSummary, error) {
	log := logger.L(ctx)

	if s.archive != nil {
		key, err := s.archive.Archive(ctx, ownerID, body)
		if err != nil {
			log.Warn("Failed to archive feed document", zap.Uint64("owner_id", ownerID), zap.Error(err))
		} else {
			log.Debug("Feed document archived", zap.String("key", key))
		}
	}

	doc, err := feed.Parse(body)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lockKey(ownerID))
	if err != nil {
		return nil, fmt.Errorf("acquire shop lock: %w", err)
	}
	defer unlock()

	summary, err := s.writer.ReplaceShopCatalog(ctx, ownerID, doc)
	if err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, catalog.NewCatalogImportedEvent(ownerID, *summary)); err != nil {
		log.Error("Failed to publish catalog imported event", zap.Error(err))
	}
	return summary, nil
}

// rememberURL stores the last successful feed source on the shop
func (s *ImportService) rememberURL(ctx context.Context, shopID uint64, rawURL string) {
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		logger.L(ctx).Warn("Failed to load shop after import", zap.Uint64("shop_id", shopID), zap.Error(err))
		return
	}
	if shop.URL == rawURL {
		return
	}
	shop.URL = rawURL
	if err := s.shops.Save(ctx, shop); err != nil {
		logger.L(ctx).Warn("Failed to store feed url", zap.Uint64("shop_id", shopID), zap.Error(err))
	}
}

func (s *ImportService) finish(ctx context.Context, ownerID uint64, summary *catalog.ImportSummary, err error, start time.Time) {
	elapsed := s.now().Sub(start)
	outcome := Outcome(err)
	goods := 0
	if summary != nil {
		goods = summary.VariantsCreated
	}
	s.recorder.ImportFinished(outcome, goods, elapsed)

	log := logger.L(ctx).With(
		zap.Uint64("owner_id", ownerID),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var malformed *catalog.MalformedFeedError
		if errors.As(err, &malformed) {
			fields = append(fields, zap.Int("issues", malformed.TotalCount), zap.Any("first_issues", malformed.Issues))
		}
		log.Error("Catalog import failed", fields...)
		return
	}
	log.Info("Catalog import finished",
		zap.Uint64("shop_id", summary.ShopID),
		zap.String("shop", summary.ShopName),
		zap.Bool("shop_created", summary.ShopCreated),
		zap.Int64("variants_deleted", summary.VariantsDeleted),
		zap.Int("variants_created", summary.VariantsCreated),
	)
}

// Outcome classifies an import error
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, catalog.ErrInvalidURL):
		return OutcomeInvalidURL
	case errors.Is(err, catalog.ErrFetchFailed):
		return OutcomeFetchError
	case errors.Is(err, catalog.ErrMalformedFeed):
		return OutcomeMalformedFeed
	case errors.Is(err, shared.ErrConflict), errors.Is(err, shared.ErrConstraintViolation):
		return OutcomeConflict
	default:
		return OutcomeFailed
	}
}

// lockKey uses the owner because an owner has at most one shop
func lockKey(ownerID uint64) string {
	return "owner:" + strconv.FormatUint(ownerID, 10)
}
