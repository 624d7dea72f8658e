package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reserveStock списывает остаток условным UPDATE. Если строка не обновилась,
// перечитываем товар, чтобы вернуть фактический остаток в StockError.
func reserveStock(ctx context.Context, products repository.ProductRepo, productID uuid.UUID, qty int32) error {
	ok, err := products.DecrementStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock %s: %w", productID, err)
	}
	if ok {
		return nil
	}
	p, err := products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("reload product %s: %w", productID, err)
	}
	if p == nil {
		return &ProductError{ProductID: productID, Err: ErrProductNotFound}
	}
	return &StockError{ProductID: productID, Requested: qty, Available: p.Stock}
}

// restoreStock returns every line's quantity to its product. A product that no
// longer exists has nothing to restore and is skipped.
func restoreStock(ctx context.Context, products repository.ProductRepo, items []models.OrderItem, log *zap.Logger) error {
	for _, it := range sortedByProduct(items) {
		ok, err := products.IncrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return fmt.Errorf("increment stock %s: %w", it.ProductID, err)
		}
		if !ok {
			log.Warn("Товар удалён, возврат остатка пропущен",
				zap.String("order_id", it.OrderID.String()),
				zap.String("product_id", it.ProductID.String()),
				zap.Int32("quantity", it.Quantity))
		}
	}
	return nil
}

// sortedByProduct orders lines by product id so concurrent transactions lock
// product rows in the same order.
func sortedByProduct(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ProductID[:], out[j].ProductID[:]) < 0
	})
	return out
}

func productIDs(items []models.OrderItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
