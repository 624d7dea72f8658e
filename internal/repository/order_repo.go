package repository

import (
	"context"
	"errors"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

// OrderListRow is an order header with aggregates over its items.
type OrderListRow struct {
	Order         models.Order
	ItemCount     int64
	TotalQuantity int64
}

type StatusStat struct {
	Status models.OrderStatus
	Count  int64
	Amount int64
}

type OrderRepo interface {
	// Create вставляет заголовок заказа (без Items) в savepoint; конфликт
	// по order_number возвращает ErrDuplicateOrderNumber, внешняя транзакция остаётся живой.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	// TransitionStatus меняет статус только если текущий входит в from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []models.OrderStatus, to models.OrderStatus, fields map[string]any) (bool, error)
	List(ctx context.Context, f OrderListFilter) ([]OrderListRow, int64, error)
	Stats(ctx context.Context, userID *uuid.UUID) ([]StatusStat, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Items").Create(o).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrderNumber
	}
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items", orderItemsByPosition).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items", orderItemsByPosition).First(&ord, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (r *orderRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.OrderStatus, to models.OrderStatus, fields map[string]any) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	upd := map[string]any{"status": to}
	for k, v := range fields {
		upd[k] = v
	}
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]OrderListRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var orders []models.Order
	if err := q.Session(&gorm.Session{}).Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return nil, total, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	type aggRow struct {
		OrderID       uuid.UUID
		ItemCount     int64
		TotalQuantity int64
	}
	var aggs []aggRow
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_id, COUNT(*) AS item_count, COALESCE(SUM(quantity),0) AS total_quantity").
		Where("order_id IN ?", ids).
		Group("order_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, 0, err
	}
	byOrder := make(map[uuid.UUID]aggRow, len(aggs))
	for _, a := range aggs {
		byOrder[a.OrderID] = a
	}

	out := make([]OrderListRow, len(orders))
	for i, o := range orders {
		a := byOrder[o.ID]
		out[i] = OrderListRow{Order: o, ItemCount: a.ItemCount, TotalQuantity: a.TotalQuantity}
	}
	return out, total, nil
}

func (r *orderRepo) Stats(ctx context.Context, userID *uuid.UUID) ([]StatusStat, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total),0) AS amount")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var rows []StatusStat
	err := q.Group("status").Order("status").Scan(&rows).Error
	return rows, err
}
