package handler

import (
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/interfaces/http/dto"
)

// BasketLinesRequest is the body of POST and PUT /basket
type BasketLinesRequest struct {
	Items dto.LineItems `json:"items" binding:"required"`
}

// IDListRequest is the body of the DELETE endpoints, e.g. {"items": "4,12"}
type IDListRequest struct {
	Items dto.IDList `json:"items"`
}

// ContactRequest carries contact fields; PUT also needs the id
type ContactRequest struct {
	ID        dto.FlexibleID `json:"id"`
	City      *string        `json:"city"`
	Street    *string        `json:"street"`
	House     *string        `json:"house"`
	Building  *string        `json:"building"`
	Apartment *string        `json:"apartment"`
	Phone     *string        `json:"phone"`
}

// Fields returns the contact fields present in the request
func (r ContactRequest) Fields() trade.ContactFields {
	return trade.ContactFields{
		City:      r.City,
		Street:    r.Street,
		House:     r.House,
		Building:  r.Building,
		Apartment: r.Apartment,
		Phone:     r.Phone,
	}
}

// PlaceOrderRequest is the body of POST /order
type PlaceOrderRequest struct {
	ID      dto.FlexibleID `json:"id" binding:"required"`
	Contact dto.FlexibleID `json:"contact" binding:"required"`
}
