package repository

import (
	"context"
	"errors"

	"github.com/trunghai04/webmoi-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo interface {
	Get(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	// Upsert выставляет абсолютное количество для пары (user, product).
	Upsert(ctx context.Context, userID, productID uuid.UUID, qty int32) (*models.CartItem, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int64, error)
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) Get(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var it models.CartItem
	err := r.db.WithContext(ctx).First(&it, "user_id = ? AND product_id = ?", userID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *cartRepo) Upsert(ctx context.Context, userID, productID uuid.UUID, qty int32) (*models.CartItem, error) {
	it := models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": qty}),
	}).Create(&it).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID, productID)
}

func (r *cartRepo) Delete(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *cartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return tx.RowsAffected, tx.Error
}

func (r *cartRepo) DeleteProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&models.CartItem{})
	return tx.RowsAffected, tx.Error
}
