package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// Store is the set of repositories a service works with. WithTx hands out a
// Store bound to one database transaction; returning an error rolls it back.
type Store interface {
	Products() ProductRepo
	Carts() CartRepo
	Orders() OrderRepo
	OrderItems() OrderItemRepo
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type Repository struct {
	DB *gorm.DB

	products   ProductRepo
	carts      CartRepo
	orders     OrderRepo
	orderItems OrderItemRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		products:   NewProductRepo(db),
		carts:      NewCartRepo(db),
		orders:     NewOrderRepo(db),
		orderItems: NewOrderItemRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

func (r *Repository) Products() ProductRepo     { return r.products }
func (r *Repository) Carts() CartRepo           { return r.carts }
func (r *Repository) Orders() OrderRepo         { return r.orders }
func (r *Repository) OrderItems() OrderItemRepo { return r.orderItems }

// Глобальная транзакция на весь набор репо
func (r *Repository) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
