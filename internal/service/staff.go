package service

import (
	"context"
	"fmt"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/client"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StaffService interface {
	Create(ctx context.Context, req *dto.CreateStaffRequest) (string, error)
	List(ctx context.Context, roles []model.UserRole) ([]*model.Staff, error)
}

type staffServiceImpl struct {
	staffRepo repository.StaffRepository
	mailer    client.Mailer
	logger    *zap.Logger
}

func NewStaffService(staffRepo repository.StaffRepository, mailer client.Mailer, logger *zap.Logger) StaffService {
	return &staffServiceImpl{
		staffRepo: staffRepo,
		mailer:    mailer,
		logger:    logger.Named("staff"),
	}
}

func (s *staffServiceImpl) Create(ctx context.Context, req *dto.CreateStaffRequest) (string, error) {
	switch req.Role {
	case model.RoleStaff, model.RoleDeliveryStaff:
	default:
		return "", apperror.ErrValidation
	}
	if req.Email == "" {
		return "", apperror.ErrValidation
	}

	staff := &model.Staff{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Status:    model.StaffActive,
	}
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return "", err
	}

	// the invite mail is the only credential channel, so its failure fails
	// the whole creation
	if err := s.mailer.SendTemplatedEmail(staff.Email, "Your eFurniture staff account", "staff_invite", map[string]string{
		"Email": staff.Email,
		"Role":  string(staff.Role),
	}); err != nil {
		s.logger.Error("staff invite email failed", zap.String("email", staff.Email), zap.Error(err))
		return "", fmt.Errorf("send staff invite: %w", err)
	}

	return staff.ID, nil
}

func (s *staffServiceImpl) List(ctx context.Context, roles []model.UserRole) ([]*model.Staff, error) {
	return s.staffRepo.List(ctx, roles)
}
