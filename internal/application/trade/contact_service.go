package trade

import (
	"context"

	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
)

// ContactService manages the caller's delivery contacts
type ContactService struct {
	contacts trade.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(contacts trade.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// List returns the caller's contacts
func (s *ContactService) List(ctx context.Context, userID uint64) ([]trade.Contact, error) {
	contacts, err := s.contacts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []trade.Contact{}
	}
	return contacts, nil
}

// Create adds a contact; city, street and phone are required
func (s *ContactService) Create(ctx context.Context, userID uint64, fields trade.ContactFields) (*trade.Contact, error) {
	contact, err := trade.NewContact(userID, fields)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Save(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Update changes the given fields of one of the caller's contacts
func (s *ContactService) Update(ctx context.Context, userID, id uint64, fields trade.ContactFields) (*trade.Contact, error) {
	contact, err := s.contacts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := contact.Apply(fields); err != nil {
		return nil, err
	}
	if err := s.contacts.Save(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes contacts given as "id,id,..."
func (s *ContactService) Delete(ctx context.Context, userID uint64, raw string) (int64, error) {
	ids := shared.ParseIDList(raw)
	if len(ids) == 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "No contact ids given")
	}
	return s.contacts.DeleteForUser(ctx, userID, ids)
}
