package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, customerID string) (*model.Customer, error)
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{
		db: db,
	}
}

func (r *customerRepoImpl) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepoImpl) FindByID(ctx context.Context, customerID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("id = ?", customerID).
		First(&customer).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	return &customer, nil
}
