package cart

import (
	"context"

	"gorm.io/gorm"

	"workshop/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Lines returns the draft for one customer, spareparts first, each
// group in insertion order.
func (r *Repository) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("kind DESC"). // "sparepart" sorts after "service", DESC puts parts first
		Order("position ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Repository) LinesByKind(ctx context.Context, userID int64, kind domain.ItemKind) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("position ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Repository) FindLine(ctx context.Context, userID int64, kind domain.ItemKind, itemID int64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND item_id = ?", userID, kind, itemID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) NextPosition(ctx context.Context, userID int64, kind domain.ItemKind) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&domain.CartLine{}).
		Select("MAX(position)").
		Where("user_id = ? AND kind = ?", userID, kind).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (r *Repository) Create(ctx context.Context, line *domain.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&domain.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *Repository) Delete(ctx context.Context, lineID int64) error {
	return r.db.WithContext(ctx).Delete(&domain.CartLine{}, lineID).Error
}

// Clear drops the whole draft; called by checkout inside its own
// transaction via ClearTx.
func (r *Repository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CartLine{}).Error
}

// ClearTx is Clear bound to an ambient transaction.
func ClearTx(tx *gorm.DB, userID int64) error {
	return tx.Where("user_id = ?", userID).Delete(&domain.CartLine{}).Error
}

// Catalog lookups used only at add-to-cart time.

func (r *Repository) GetSparepart(ctx context.Context, id int64) (*domain.Sparepart, error) {
	var p domain.Sparepart
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetServiceOffering(ctx context.Context, id int64) (*domain.ServiceOffering, error) {
	var s domain.ServiceOffering
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
