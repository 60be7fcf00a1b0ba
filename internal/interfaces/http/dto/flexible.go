package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orders/backend/internal/domain/trade"
)

// Form clients post numbers and booleans as strings; these types accept both.

// FlexibleID is an id given as a JSON number or a digit string
type FlexibleID uint64

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a positive integer: %s", s)
	}
	*id = FlexibleID(v)
	return nil
}

// FlexibleInt is an integer given as a JSON number or a numeric string
type FlexibleInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("value must be an integer: %s", s)
	}
	*n = FlexibleInt(v)
	return nil
}

// FlexibleBool is a boolean given as true/false or as a string such as "true", "0", "yes"
type FlexibleBool struct {
	Value bool
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (b *FlexibleBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	switch strings.ToLower(strings.Trim(s, `"`)) {
	case "true", "1", "yes", "y", "on", "t":
		b.Value = true
	case "false", "0", "no", "n", "off", "f":
		b.Value = false
	default:
		return fmt.Errorf("invalid boolean value %s", s)
	}
	b.Set = true
	return nil
}

// LineItems is a list of basket lines given as a JSON array or as a string
// holding a JSON array
type LineItems []trade.BasketLine

type lineItem struct {
	ProductInfo FlexibleID  `json:"product_info"`
	Quantity    FlexibleInt `json:"quantity"`
}

// UnmarshalJSON implements json.Unmarshaler
func (l *LineItems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		data = []byte(raw)
	}
	var items []lineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("items must be a JSON list of {product_info, quantity}")
	}
	lines := make([]trade.BasketLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, trade.BasketLine{VariantID: uint64(it.ProductInfo), Quantity: int(it.Quantity)})
	}
	*l = lines
	return nil
}

// IDList is a comma separated id list given as a string, a number or an array
type IDList string

// UnmarshalJSON implements json.Unmarshaler
func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = IDList(s)
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, strings.Trim(string(it), `" `))
		}
		*l = IDList(strings.Join(parts, ","))
	default:
		*l = IDList(data)
	}
	return nil
}
