package persistence

import (
	"fmt"
	"strings"

	"github.com/orders/backend/internal/domain/shared"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Returns "ASC" for empty or unknown input.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ShopSortFields contains allowed sort fields for shops
var ShopSortFields = map[string]bool{
	"id":   true,
	"name": true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"id":   true,
	"name": true,
}

// orderClause builds a safe ORDER BY clause from a filter
func orderClause(filter shared.Filter, allowed map[string]bool) string {
	field := ValidateSortField(filter.OrderBy, allowed, "id")
	return fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir))
}
