package service

import (
	"context"
	"time"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/middleware"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/google/uuid"
)

type CustomerService interface {
	Register(ctx context.Context, req *dto.RegisterCustomerRequest) (*dto.RegisterCustomerResponse, error)
	GetProfile(ctx context.Context, customerID string) (*model.Customer, error)
}

type customerServiceImpl struct {
	customerRepo repository.CustomerRepository
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewCustomerService(customerRepo repository.CustomerRepository, jwtSecret string, tokenTTL time.Duration) CustomerService {
	return &customerServiceImpl{
		customerRepo: customerRepo,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}
}

func (s *customerServiceImpl) Register(ctx context.Context, req *dto.RegisterCustomerRequest) (*dto.RegisterCustomerResponse, error) {
	if req.Email == "" {
		return nil, apperror.ErrValidation
	}

	customer := &model.Customer{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	token, err := middleware.MintToken(s.jwtSecret, customer.ID, model.RoleCustomer, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterCustomerResponse{
		CustomerID:  customer.ID,
		AccessToken: token,
	}, nil
}

func (s *customerServiceImpl) GetProfile(ctx context.Context, customerID string) (*model.Customer, error) {
	return s.customerRepo.FindByID(ctx, customerID)
}
