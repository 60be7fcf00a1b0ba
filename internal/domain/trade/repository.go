package trade

import (
	"context"
)

// OrderRepository defines the interface for basket and order persistence
type OrderRepository interface {
	// FindBasket loads the user's basket with lines, variants, products,
	// categories and parameters. Returns shared.ErrNotFound when none exists.
	FindBasket(ctx context.Context, userID uint64) (*Order, error)

	// AddBasketLines gets or creates the user's basket and inserts every
	// line in one transaction. Any failure rolls the whole batch back; the
	// result lists a per-entry outcome either way.
	AddBasketLines(ctx context.Context, userID uint64, lines []BasketLine) (*AddLinesResult, error)

	// UpdateBasketLines overwrites quantities of lines matched by variant.
	// Returns how many lines matched.
	UpdateBasketLines(ctx context.Context, userID uint64, lines []BasketLine) (int64, error)

	// DeleteBasketLines deletes the given line ids from the user's basket
	DeleteBasketLines(ctx context.Context, userID uint64, lineIDs []uint64) (int64, error)

	// PlaceOrder atomically binds the contact and moves the user's basket
	// orderID to state new. Returns false when no basket matched
	// (user, id). Returns ErrContactNotOwned when the contact is not the user's.
	PlaceOrder(ctx context.Context, userID, orderID, contactID uint64) (bool, error)

	// FindUserOrders lists the user's placed orders, newest first
	FindUserOrders(ctx context.Context, userID uint64) ([]Order, error)

	// FindShopOrders lists placed orders containing lines of shops owned by
	// ownerID. Only those lines are loaded.
	FindShopOrders(ctx context.Context, ownerID uint64) ([]Order, error)

	// FindByID loads an order with its lines
	FindByID(ctx context.Context, id uint64) (*Order, error)

	// UpdateState persists a state change, guarded by the previous state
	UpdateState(ctx context.Context, order *Order, from OrderState) error
}

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// FindByUser lists a user's contacts
	FindByUser(ctx context.Context, userID uint64) ([]Contact, error)

	// FindByIDForUser loads a contact owned by the user
	FindByIDForUser(ctx context.Context, userID, id uint64) (*Contact, error)

	// Save creates or updates a contact
	Save(ctx context.Context, contact *Contact) error

	// DeleteForUser deletes the user's contacts with the given ids
	DeleteForUser(ctx context.Context, userID uint64, ids []uint64) (int64, error)
}
