package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"gorm.io/gorm"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	FindByID(ctx context.Context, staffID string) (*model.Staff, error)
	List(ctx context.Context, roles []model.UserRole) ([]*model.Staff, error)
}

type staffRepoImpl struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepoImpl{
		db: db,
	}
}

func (r *staffRepoImpl) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepoImpl) FindByID(ctx context.Context, staffID string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).
		Where("id = ?", staffID).
		First(&staff).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}

	return &staff, nil
}

func (r *staffRepoImpl) List(ctx context.Context, roles []model.UserRole) ([]*model.Staff, error) {
	var staffs []*model.Staff
	query := r.db.WithContext(ctx).Where("status = ?", model.StaffActive)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	if err := query.Find(&staffs).Error; err != nil {
		return nil, err
	}

	return staffs, nil
}
