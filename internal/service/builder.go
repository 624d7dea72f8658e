package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
)

const (
	maxNoteLen        = 1000
	maxReasonLen      = 500
	maxLineItems      = 100
	maxTrackingLength = 100
)

// validatePlaceOrder normalises the input in place and rejects anything
// malformed before a transaction is opened.
func validatePlaceOrder(in *PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	if len(in.Items) > maxLineItems {
		return invalid("items", "at most %d items per order", maxLineItems)
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Items))
	var subtotal int64
	for i := range in.Items {
		it := &in.Items[i]
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID == uuid.Nil {
			return invalid(field+".product_id", "is required")
		}
		if _, dup := seen[it.ProductID]; dup {
			return invalid(field+".product_id", "duplicate product %s", it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
		if it.Quantity <= 0 {
			return invalid(field+".quantity", "must be greater than 0")
		}
		if it.UnitPrice < 0 {
			return invalid(field+".unit_price", "must not be negative")
		}
		it.Name = strings.TrimSpace(it.Name)
		it.Image = strings.TrimSpace(it.Image)
		subtotal += it.UnitPrice * int64(it.Quantity)
	}

	if !in.PaymentMethod.Valid() {
		return invalid("payment_method", "must be one of cod, card, bank")
	}
	if !in.ShippingMethod.Valid() {
		return invalid("shipping_method", "must be one of standard, express")
	}
	if err := validateAddress(&in.ShippingAddress); err != nil {
		return err
	}

	in.Note = strings.TrimSpace(in.Note)
	if len(in.Note) > maxNoteLen {
		return invalid("note", "must be at most %d characters", maxNoteLen)
	}

	switch {
	case in.Subtotal < 0:
		return invalid("subtotal", "must not be negative")
	case in.ShippingFee < 0:
		return invalid("shipping_fee", "must not be negative")
	case in.Tax < 0:
		return invalid("tax", "must not be negative")
	case in.Total < 0:
		return invalid("total", "must not be negative")
	}
	if in.Subtotal != subtotal {
		return invalid("subtotal", "expected %d (sum of unit_price * quantity), got %d", subtotal, in.Subtotal)
	}
	if want := in.Subtotal + in.ShippingFee + in.Tax; in.Total != want {
		return invalid("total", "expected %d (subtotal + shipping_fee + tax), got %d", want, in.Total)
	}
	return nil
}

func validateAddress(a *Address) error {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Email = strings.TrimSpace(a.Email)
	a.AddressLine = strings.TrimSpace(a.AddressLine)
	a.Ward = strings.TrimSpace(a.Ward)
	a.District = strings.TrimSpace(a.District)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)

	required := []struct{ field, value string }{
		{"shipping_address.full_name", a.FullName},
		{"shipping_address.phone", a.Phone},
		{"shipping_address.address_line", a.AddressLine},
		{"shipping_address.city", a.City},
	}
	for _, r := range required {
		if r.value == "" {
			return invalid(r.field, "is required")
		}
	}
	return nil
}

// buildOrder snapshots the checkout lines into an order aggregate. Name and
// image fall back to the live product when the caller sent none.
func buildOrder(userID uuid.UUID, in PlaceOrderInput, products map[uuid.UUID]*models.Product, now time.Time) (*models.Order, error) {
	addr, err := json.Marshal(in.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          models.OrderStatusProcessing,
		Subtotal:        in.Subtotal,
		ShippingFee:     in.ShippingFee,
		Tax:             in.Tax,
		Total:           in.Total,
		ShippingAddress: string(addr),
		PaymentMethod:   in.PaymentMethod,
		ShippingMethod:  in.ShippingMethod,
		Note:            in.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	order.Items = make([]models.OrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		name, image := it.Name, it.Image
		if p := products[it.ProductID]; p != nil {
			if name == "" {
				name = p.Name
			}
			if image == "" {
				image = p.Image
			}
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			Position:     int32(i),
			ProductID:    it.ProductID,
			ProductName:  name,
			ProductImage: image,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			LineTotal:    it.UnitPrice * int64(it.Quantity),
			CreatedAt:    now,
		})
	}
	return order, nil
}

func decodeAddress(raw string) (Address, error) {
	var a Address
	if strings.TrimSpace(raw) == "" {
		return a, nil
	}
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return a, fmt.Errorf("decode shipping address: %w", err)
	}
	return a, nil
}
