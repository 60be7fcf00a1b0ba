package catalog

import (
	"context"
	"time"
)

// FeedFetcher downloads a partner feed document
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedArchive keeps the raw documents of import runs and returns the stored key
type FeedArchive interface {
	Archive(ctx context.Context, ownerID uint64, body []byte) (string, error)
}

// ShopLocker serializes import runs of one shop
type ShopLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ImportRecorder receives import metrics
type ImportRecorder interface {
	ImportFinished(outcome string, goods int, d time.Duration)
	ImportQueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) ImportFinished(string, int, time.Duration) {}
func (nopRecorder) ImportQueueDepth(int)                      {}
