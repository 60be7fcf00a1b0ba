package trade

import "github.com/orders/backend/internal/domain/shared"

// Trade errors
var (
	ErrContactNotOwned          = shared.NewDomainError("CONSTRAINT_VIOLATION", "Contact does not belong to the user")
	ErrOrderNotFound            = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrDuplicateLine            = shared.NewDomainError("DUPLICATE_LINE", "Product is already in the basket")
	ErrStateChangedConcurrently = shared.NewDomainError("CONFLICT", "Order state was changed concurrently")
)
