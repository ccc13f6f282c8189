package handler

import (
	"net/http"

	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/middleware"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
)

func actorFrom(c echo.Context) service.Actor {
	id, _ := c.Get(middleware.ContextActorID).(string)
	role, _ := c.Get(middleware.ContextActorRole).(model.UserRole)
	return service.Actor{ID: id, Role: role}
}

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.AddItem(ctx, actorFrom(c).ID, &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.GetCart(ctx, actorFrom(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.UpdateItemQuantity(ctx, actorFrom(c).ID, &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RemoveCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.RemoveItem(ctx, actorFrom(c).ID, &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
