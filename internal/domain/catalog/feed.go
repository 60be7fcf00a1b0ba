package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/orders/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// Feed error codes
const (
	ErrCodeFeedRequiredField = "ERR_FEED_REQUIRED_FIELD"
	ErrCodeFeedInvalidLength = "ERR_FEED_INVALID_LENGTH"
	ErrCodeFeedInvalidRange  = "ERR_FEED_INVALID_RANGE"
	ErrCodeFeedDuplicate     = "ERR_FEED_DUPLICATE"
)

// maxFeedIssues caps how many issues a validation run keeps
const maxFeedIssues = 100

// Feed is a partner's full catalog document for one shop.
type Feed struct {
	Shop       string
	Categories []FeedCategory
	Goods      []FeedGood
}

// FeedCategory is a category declared by a feed
type FeedCategory struct {
	ID   uint64
	Name string
}

// FeedGood is one listing of a feed. ID is the partner's external id.
type FeedGood struct {
	ID         uint64
	Category   uint64
	Name       string
	Model      string
	Price      int64
	PriceRRC   int64
	Quantity   int64
	Parameters []FeedParameter
}

// FeedParameter keeps document order, which is also insertion order
type FeedParameter struct {
	Name  string
	Value string
}

// FeedIssue describes one problem found in a feed. Path locates the value,
// e.g. "goods[3].price".
type FeedIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (i FeedIssue) Error() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// MalformedFeedError is returned when a feed cannot be parsed or fails validation
type MalformedFeedError struct {
	Issues     []FeedIssue
	TotalCount int
	Cause      error
}

// Error implements the error interface
func (e *MalformedFeedError) Error() string {
	if e.Cause != nil {
		return "malformed feed: " + e.Cause.Error()
	}
	if len(e.Issues) == 0 {
		return "malformed feed"
	}
	msg := "malformed feed: " + e.Issues[0].Error()
	if e.TotalCount > 1 {
		msg += fmt.Sprintf(" (and %d more)", e.TotalCount-1)
	}
	return msg
}

// Unwrap exposes the parse error, if any
func (e *MalformedFeedError) Unwrap() error {
	return e.Cause
}

// Is matches ErrMalformedFeed
func (e *MalformedFeedError) Is(target error) bool {
	return target == ErrMalformedFeed
}

// Import errors
var (
	ErrInvalidURL    = shared.NewDomainError("INVALID_URL", "Feed URL is not a valid http(s) URL")
	ErrFetchFailed   = shared.NewDomainError("FETCH_ERROR", "Feed document could not be fetched")
	ErrMalformedFeed = shared.NewDomainError("MALFORMED_FEED", "Feed document is malformed")
)

// NewMalformedFeedError wraps a parse failure
func NewMalformedFeedError(cause error) *MalformedFeedError {
	return &MalformedFeedError{Cause: cause}
}

type issueCollector struct {
	issues []FeedIssue
	total  int
}

func (c *issueCollector) add(path, code, format string, args ...any) {
	c.total++
	if len(c.issues) < maxFeedIssues {
		c.issues = append(c.issues, FeedIssue{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
	}
}

// Normalize trims names and converts them to NFC so that visually equal
// names resolve to the same Product, Category and Parameter rows.
func (f *Feed) Normalize() {
	f.Shop = normalizeName(f.Shop)
	for i := range f.Categories {
		f.Categories[i].Name = normalizeName(f.Categories[i].Name)
	}
	for i := range f.Goods {
		g := &f.Goods[i]
		g.Name = normalizeName(g.Name)
		g.Model = normalizeName(g.Model)
		for j := range g.Parameters {
			g.Parameters[j].Name = normalizeName(g.Parameters[j].Name)
			g.Parameters[j].Value = norm.NFC.String(strings.TrimSpace(g.Parameters[j].Value))
		}
	}
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Validate checks the feed's structure. It returns a *MalformedFeedError
// listing every problem found, or nil.
func (f *Feed) Validate() error {
	c := &issueCollector{}

	if f.Shop == "" {
		c.add("shop", ErrCodeFeedRequiredField, "shop name is required")
	} else if tooLong(f.Shop, MaxShopNameLength) {
		c.add("shop", ErrCodeFeedInvalidLength, "shop name must be at most %d characters", MaxShopNameLength)
	}

	categories := make(map[uint64]string, len(f.Categories))
	for i, cat := range f.Categories {
		path := fmt.Sprintf("categories[%d]", i)
		if cat.ID == 0 {
			c.add(path+".id", ErrCodeFeedRequiredField, "category id is required")
		}
		if cat.Name == "" {
			c.add(path+".name", ErrCodeFeedRequiredField, "category name is required")
		} else if tooLong(cat.Name, MaxCategoryNameLength) {
			c.add(path+".name", ErrCodeFeedInvalidLength, "category name must be at most %d characters", MaxCategoryNameLength)
		}
		if prev, ok := categories[cat.ID]; ok && prev != cat.Name {
			c.add(path+".id", ErrCodeFeedDuplicate, "category %d is declared as both %q and %q", cat.ID, prev, cat.Name)
		}
		categories[cat.ID] = cat.Name
	}

	for i, g := range f.Goods {
		path := fmt.Sprintf("goods[%d]", i)
		if g.Name == "" {
			c.add(path+".name", ErrCodeFeedRequiredField, "name is required")
		} else if tooLong(g.Name, MaxProductNameLength) {
			c.add(path+".name", ErrCodeFeedInvalidLength, "name must be at most %d characters", MaxProductNameLength)
		}
		if tooLong(g.Model, MaxModelLength) {
			c.add(path+".model", ErrCodeFeedInvalidLength, "model must be at most %d characters", MaxModelLength)
		}
		if g.Category == 0 {
			c.add(path+".category", ErrCodeFeedRequiredField, "category is required")
		}
		if g.Price < 0 {
			c.add(path+".price", ErrCodeFeedInvalidRange, "price must not be negative")
		}
		if g.PriceRRC < 0 {
			c.add(path+".price_rrc", ErrCodeFeedInvalidRange, "price_rrc must not be negative")
		}
		if g.Quantity < 0 {
			c.add(path+".quantity", ErrCodeFeedInvalidRange, "quantity must not be negative")
		}
		seen := make(map[string]struct{}, len(g.Parameters))
		for _, p := range g.Parameters {
			ppath := fmt.Sprintf("%s.parameters[%s]", path, p.Name)
			if p.Name == "" {
				c.add(path+".parameters", ErrCodeFeedRequiredField, "parameter name is required")
				continue
			}
			if _, dup := seen[p.Name]; dup {
				c.add(ppath, ErrCodeFeedDuplicate, "parameter is listed twice")
			}
			seen[p.Name] = struct{}{}
			if tooLong(p.Name, MaxParameterNameLength) {
				c.add(ppath, ErrCodeFeedInvalidLength, "name must be at most %d characters", MaxParameterNameLength)
			}
			if tooLong(p.Value, MaxParameterValueLength) {
				c.add(ppath, ErrCodeFeedInvalidLength, "value must be at most %d characters", MaxParameterValueLength)
			}
		}
	}

	if c.total == 0 {
		return nil
	}
	return &MalformedFeedError{Issues: c.issues, TotalCount: c.total}
}

func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}
