package service

import (
	"context"
	"fmt"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	AddItem(ctx context.Context, customerID string, req *dto.AddToCartRequest) error
	// GetCart never returns "not found": a missing cart is lazily created empty.
	GetCart(ctx context.Context, customerID string) (*dto.CartResponse, error)
	UpdateItemQuantity(ctx context.Context, customerID string, req *dto.UpdateCartItemRequest) error
	RemoveItem(ctx context.Context, customerID string, req *dto.RemoveCartItemRequest) error
}

type cartServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, customerID string, req *dto.AddToCartRequest) error {
	if req.Quantity <= 0 {
		return apperror.ErrValidation
	}

	variant, err := s.productRepo.FindVariant(ctx, req.ProductID, req.SKU)
	if err != nil {
		return err
	}

	amount := variant.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindByCustomerID(ctx, tx, customerID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		if cart == nil {
			if req.Quantity > variant.Quantity {
				return apperror.ErrNotEnoughStock
			}
			return s.cartRepo.Create(ctx, tx, &model.Cart{
				CustomerID:  customerID,
				TotalAmount: amount,
				Items: []model.CartItem{{
					ProductID: req.ProductID,
					SKU:       req.SKU,
					Quantity:  req.Quantity,
				}},
			})
		}

		existing := findCartItem(cart.Items, req.ProductID, req.SKU)
		if existing == nil {
			if req.Quantity > variant.Quantity {
				return apperror.ErrNotEnoughStock
			}
			if err := s.cartRepo.AddItem(ctx, tx, &model.CartItem{
				CartID:    cart.ID,
				ProductID: req.ProductID,
				SKU:       req.SKU,
				Quantity:  req.Quantity,
			}); err != nil {
				return fmt.Errorf("add cart item: %w", err)
			}
		} else {
			if existing.Quantity+req.Quantity > variant.Quantity {
				return apperror.ErrNotEnoughStock
			}
			if err := s.cartRepo.UpdateItemQuantity(ctx, tx, existing.ID, existing.Quantity+req.Quantity); err != nil {
				return fmt.Errorf("update cart item quantity: %w", err)
			}
		}

		// totalAmount stays incremental so add/remove round-trips exactly
		return s.cartRepo.AdjustTotal(ctx, tx, cart.ID, amount)
	})
}

func (s *cartServiceImpl) GetCart(ctx context.Context, customerID string) (*dto.CartResponse, error) {
	var cart *model.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = s.cartRepo.FindByCustomerID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = &model.Cart{
				CustomerID:  customerID,
				TotalAmount: decimal.Zero,
			}
			return s.cartRepo.Create(ctx, tx, cart)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.CartResponse{
		Items:       make([]dto.CartItemResponse, 0, len(cart.Items)),
		TotalAmount: cart.TotalAmount,
	}
	for _, item := range cart.Items {
		line := dto.CartItemResponse{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
		}
		// denormalized join for display; missing products render without names
		if product, err := s.productRepo.FindByID(ctx, item.ProductID); err == nil {
			line.ProductName = product.Name
			for _, v := range product.Variants {
				if v.SKU == item.SKU {
					line.Price = v.Price
				}
			}
		}
		resp.Items = append(resp.Items, line)
	}

	return resp, nil
}

func (s *cartServiceImpl) UpdateItemQuantity(ctx context.Context, customerID string, req *dto.UpdateCartItemRequest) error {
	if req.Quantity <= 0 {
		return apperror.ErrValidation
	}

	variant, err := s.productRepo.FindVariant(ctx, req.ProductID, req.SKU)
	if err != nil {
		return err
	}
	if req.Quantity > variant.Quantity {
		return apperror.ErrNotEnoughStock
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindByCustomerID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return apperror.ErrCartEmpty
		}

		item := findCartItem(cart.Items, req.ProductID, req.SKU)
		if item == nil {
			return apperror.ErrCartItemInvalid
		}

		delta := variant.Price.Mul(decimal.NewFromInt(int64(req.Quantity - item.Quantity)))
		if err := s.cartRepo.UpdateItemQuantity(ctx, tx, item.ID, req.Quantity); err != nil {
			return fmt.Errorf("update cart item quantity: %w", err)
		}
		return s.cartRepo.AdjustTotal(ctx, tx, cart.ID, delta)
	})
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, customerID string, req *dto.RemoveCartItemRequest) error {
	variant, err := s.productRepo.FindVariant(ctx, req.ProductID, req.SKU)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindByCustomerID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return apperror.ErrCartEmpty
		}

		item := findCartItem(cart.Items, req.ProductID, req.SKU)
		if item == nil {
			return apperror.ErrCartItemInvalid
		}

		amount := variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if err := s.cartRepo.RemoveItem(ctx, tx, item.ID); err != nil {
			return fmt.Errorf("remove cart item: %w", err)
		}
		return s.cartRepo.AdjustTotal(ctx, tx, cart.ID, amount.Neg())
	})
}

func findCartItem(items []model.CartItem, productID, sku string) *model.CartItem {
	for i := range items {
		if items[i].ProductID == productID && items[i].SKU == sku {
			return &items[i]
		}
	}
	return nil
}
