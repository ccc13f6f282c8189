package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	// FindByOrderIDTx reads through the given transaction, so callers inside
	// db.Transaction see their own uncommitted writes.
	FindByOrderIDTx(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindForCustomer(ctx context.Context, customerID, orderID string) (*model.Order, error)
	ListForCustomer(ctx context.Context, customerID string, limit, offset int) ([]*model.Order, error)
	List(ctx context.Context, limit, offset int) ([]*model.Order, error)
	GetHistory(ctx context.Context, orderID string) ([]*model.OrderHistory, error)

	// Transition performs the single atomic conditional update guarding every
	// state change: the current (orderStatus, transactionStatus) pair sits in
	// the WHERE clause, the new state in the SET. A zero row count means the
	// guard did not match.
	Transition(ctx context.Context, tx *gorm.DB, orderID string,
		fromOrder []model.OrderStatus, fromTxn []model.TransactionStatus,
		updates map[string]interface{}) (bool, error)
	AppendHistory(ctx context.Context, tx *gorm.DB, entry *model.OrderHistory) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByOrderIDTx(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindForCustomer(ctx context.Context, customerID, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListForCustomer(ctx context.Context, customerID string, limit, offset int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) List(ctx context.Context, limit, offset int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) GetHistory(ctx context.Context, orderID string) ([]*model.OrderHistory, error) {
	var history []*model.OrderHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&history).Error

	if err != nil {
		return nil, err
	}

	return history, nil
}

func (r *orderRepoImpl) Transition(ctx context.Context, tx *gorm.DB, orderID string,
	fromOrder []model.OrderStatus, fromTxn []model.TransactionStatus,
	updates map[string]interface{}) (bool, error) {

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND order_status IN ? AND transaction_status IN ?",
			orderID, fromOrder, fromTxn).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) AppendHistory(ctx context.Context, tx *gorm.DB, entry *model.OrderHistory) error {
	return tx.WithContext(ctx).Create(entry).Error
}
