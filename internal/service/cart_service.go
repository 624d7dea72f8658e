package service

import (
	"context"
	"fmt"
	"math"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cartService struct {
	store repository.Store
	log   *zap.Logger
}

func NewCartService(store repository.Store, log *zap.Logger) CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &cartService{store: store, log: log}
}

// purchasable loads a product for an advisory cart check.
func purchasable(ctx context.Context, products repository.ProductRepo, productID uuid.UUID) (*models.Product, error) {
	p, err := products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}
	if p == nil {
		return nil, &ProductError{ProductID: productID, Err: ErrProductNotFound}
	}
	if !p.IsActive {
		return nil, &ProductError{ProductID: productID, Err: ErrProductUnavailable}
	}
	return p, nil
}

func clampInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}

func (s *cartService) Add(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, invalid("product_id", "is required")
	}
	if qty <= 0 {
		return nil, invalid("quantity", "must be greater than 0")
	}

	var item *models.CartItem
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := purchasable(ctx, tx.Products(), productID)
		if err != nil {
			return err
		}
		existing, err := tx.Carts().Get(ctx, userID, productID)
		if err != nil {
			return fmt.Errorf("load cart item: %w", err)
		}

		want := int64(qty)
		if existing != nil {
			want += int64(existing.Quantity)
		}
		if want > int64(p.Stock) {
			return &StockError{ProductID: productID, Requested: clampInt32(want), Available: p.Stock}
		}

		item, err = tx.Carts().Upsert(ctx, userID, productID, int32(want))
		if err != nil {
			return fmt.Errorf("save cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapTx("add to cart", err)
	}
	return item, nil
}

func (s *cartService) SetQuantity(ctx context.Context, productID uuid.UUID, qty int32) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, s.Remove(ctx, productID)
	}
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, invalid("product_id", "is required")
	}

	var item *models.CartItem
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := purchasable(ctx, tx.Products(), productID)
		if err != nil {
			return err
		}
		if qty > p.Stock {
			return &StockError{ProductID: productID, Requested: qty, Available: p.Stock}
		}
		item, err = tx.Carts().Upsert(ctx, userID, productID, qty)
		if err != nil {
			return fmt.Errorf("save cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapTx("update cart item", err)
	}
	return item, nil
}

func (s *cartService) Remove(ctx context.Context, productID uuid.UUID) error {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	ok, err := s.store.Carts().Delete(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context) error {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	n, err := s.store.Carts().DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.log.Debug("Корзина очищена", zap.String("user_id", userID.String()), zap.Int64("removed", n))
	return nil
}

func (s *cartService) List(ctx context.Context) (*Cart, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	rows, products, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Items: make([]CartLine, 0, len(rows))}
	for _, r := range rows {
		line := CartLine{ProductID: r.ProductID, Quantity: r.Quantity}
		if p, ok := products[r.ProductID]; ok {
			line.Name = p.Name
			line.Image = p.Image
			line.UnitPrice = p.Price
			line.Stock = p.Stock
			line.IsActive = p.IsActive
			line.LineTotal = p.Price * int64(r.Quantity)
		}
		cart.Items = append(cart.Items, line)
		cart.TotalQuantity += int64(r.Quantity)
		if line.IsActive {
			cart.Subtotal += line.LineTotal
		}
	}
	return cart, nil
}

// Validate is read-only: it reports stale lines without touching the cart.
func (s *cartService) Validate(ctx context.Context) (*CartValidation, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	rows, products, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &CartValidation{Issues: []CartIssue{}}
	for _, r := range rows {
		p, ok := products[r.ProductID]
		switch {
		case !ok:
			res.Issues = append(res.Issues, CartIssue{ProductID: r.ProductID, Kind: CartIssueNotFound, Requested: r.Quantity})
		case !p.IsActive:
			res.Issues = append(res.Issues, CartIssue{ProductID: r.ProductID, Kind: CartIssueInactive, Requested: r.Quantity, Available: p.Stock})
		case r.Quantity > p.Stock:
			res.Issues = append(res.Issues, CartIssue{ProductID: r.ProductID, Kind: CartIssueInsufficientStock, Requested: r.Quantity, Available: p.Stock})
		}
	}
	res.Valid = len(res.Issues) == 0
	return res, nil
}

func (s *cartService) load(ctx context.Context, userID uuid.UUID) ([]models.CartItem, map[uuid.UUID]models.Product, error) {
	rows, err := s.store.Carts().ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	list, err := s.store.Products().BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	products := make(map[uuid.UUID]models.Product, len(list))
	for _, p := range list {
		products[p.ID] = p
	}
	return rows, products, nil
}
