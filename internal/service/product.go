package service

import (
	"context"
	"strings"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/google/uuid"
)

type ProductService interface {
	Create(ctx context.Context, req *dto.CreateProductRequest) (string, error)
	Get(ctx context.Context, productID string) (*model.Product, error)
	ListPublic(ctx context.Context) ([]*model.Product, error)
	ListAll(ctx context.Context) ([]*model.Product, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
	}
}

func (s *productServiceImpl) Create(ctx context.Context, req *dto.CreateProductRequest) (string, error) {
	// a product owns 1..5 variants
	if req.Name == "" || len(req.Variants) == 0 || len(req.Variants) > 5 {
		return "", apperror.ErrValidation
	}

	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
		Brand:       req.Brand,
		Image:       req.Image,
		Status:      model.ProductActive,
	}
	for _, v := range req.Variants {
		if v.SKU == "" || v.Quantity < 0 || v.Price.IsNegative() {
			return "", apperror.ErrValidation
		}
		product.Variants = append(product.Variants, model.Variant{
			SKU:      v.SKU,
			Price:    v.Price,
			Quantity: v.Quantity,
			Color:    v.Color,
			Material: v.Material,
		})
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return "", err
	}
	return product.ID, nil
}

func (s *productServiceImpl) Get(ctx context.Context, productID string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, productID)
}

func (s *productServiceImpl) ListPublic(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.List(ctx, []model.ProductStatus{model.ProductActive})
}

func (s *productServiceImpl) ListAll(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.List(ctx, []model.ProductStatus{
		model.ProductActive, model.ProductOutOfStock, model.ProductInactive,
	})
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug + "-" + uuid.NewString()[:8]
}
