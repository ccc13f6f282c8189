package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByID(ctx context.Context, paymentID uint) (*model.Payment, error)
	// UpdateTransaction sets the latest raw payload and status, and appends
	// the payload to the payment's transaction history in the same call.
	UpdateTransaction(ctx context.Context, tx *gorm.DB, paymentID uint,
		status model.TransactionStatus, payload string) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Preload("History").
		First(&payment, paymentID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) UpdateTransaction(ctx context.Context, tx *gorm.DB, paymentID uint,
	status model.TransactionStatus, payload string) error {

	err := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"transaction_status": status,
			"transaction":        payload,
		}).Error
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Create(&model.PaymentTransaction{
		PaymentID: paymentID,
		Payload:   payload,
	}).Error
}
