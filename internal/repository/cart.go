package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartRepository interface {
	// FindByCustomerID returns nil (not an error) when the customer has no
	// cart yet; callers decide whether to lazily create one.
	FindByCustomerID(ctx context.Context, tx *gorm.DB, customerID string) (*model.Cart, error)
	Create(ctx context.Context, tx *gorm.DB, cart *model.Cart) error
	AddItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int) error
	RemoveItem(ctx context.Context, tx *gorm.DB, itemID uint) error
	RemoveItems(ctx context.Context, tx *gorm.DB, itemIDs []uint) error
	// AdjustTotal applies a delta to totalAmount in the database, keeping the
	// total incremental rather than recomputed.
	AdjustTotal(ctx context.Context, tx *gorm.DB, cartID uint, delta decimal.Decimal) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) FindByCustomerID(ctx context.Context, tx *gorm.DB, customerID string) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			// newest line first, matching prepend-on-add semantics
			return db.Order("cart_items.id DESC")
		}).
		Where("customer_id = ?", customerID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) Create(ctx context.Context, tx *gorm.DB, cart *model.Cart) error {
	return tx.WithContext(ctx).Create(cart).Error
}

func (r *cartRepoImpl) AddItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int) error {
	return tx.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepoImpl) RemoveItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return tx.WithContext(ctx).Delete(&model.CartItem{}, itemID).Error
}

func (r *cartRepoImpl) RemoveItems(ctx context.Context, tx *gorm.DB, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Delete(&model.CartItem{}, itemIDs).Error
}

func (r *cartRepoImpl) AdjustTotal(ctx context.Context, tx *gorm.DB, cartID uint, delta decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("total_amount", gorm.Expr("total_amount + ?", delta)).Error
}
