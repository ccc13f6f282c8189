package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindVariant(ctx context.Context, productID, sku string) (*model.Variant, error)
	List(ctx context.Context, statuses []model.ProductStatus) ([]*model.Product, error)

	// ReserveStock decrements remaining stock in a single conditional update:
	// the sufficiency check sits in the WHERE clause, so concurrent reserves
	// for the same variant can never drive quantity below zero.
	ReserveStock(ctx context.Context, tx *gorm.DB, sku string, quantity int) error
	// ReleaseStock puts reserved stock back (cancellation path).
	ReleaseStock(ctx context.Context, tx *gorm.DB, sku string, quantity int) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", productID).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindVariant(ctx context.Context, productID, sku string) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND sku = ?", productID, sku).
		First(&variant).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &variant, nil
}

func (r *productRepoImpl) List(ctx context.Context, statuses []model.ProductStatus) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("status IN ?", statuses).
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ReserveStock(ctx context.Context, tx *gorm.DB, sku string, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.Variant{}).
		Where("sku = ? AND quantity >= ?", sku, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotEnoughStock
	}
	return nil
}

func (r *productRepoImpl) ReleaseStock(ctx context.Context, tx *gorm.DB, sku string, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.Variant{}).
		Where("sku = ?", sku).
		Update("quantity", gorm.Expr("quantity + ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrProductNotFound
	}
	return nil
}
