package handler

import (
	"net/http"
	"strconv"

	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func pagination(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.orderService.CreateOrder(ctx, actorFrom(c).ID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	limit, offset := pagination(c)

	orders, err := h.orderService.ListCustomerOrders(ctx, actorFrom(c).ID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetMyOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetCustomerOrder(ctx, actorFrom(c).ID, c.Param("orderId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetMyOrderHistory(c echo.Context) error {
	ctx := c.Request().Context()

	history, err := h.orderService.GetOrderHistory(ctx, actorFrom(c).ID, c.Param("orderId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, history)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	limit, offset := pagination(c)

	orders, err := h.orderService.ListOrders(ctx, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, c.Param("orderId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ConfirmOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.ConfirmOrder(ctx, c.Param("orderId"), actorFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.orderService.CancelOrder(ctx, c.Param("orderId"), req.Reason, actorFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *OrderHandler) AssignDelivery(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AssignDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.orderService.AssignDelivery(ctx, c.Param("orderId"), req.AssigneeID, actorFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *OrderHandler) DeliverOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.DeliverOrder(ctx, c.Param("orderId"), actorFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *OrderHandler) CompleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.CompleteOrder(ctx, c.Param("orderId"), actorFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
