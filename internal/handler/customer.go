package handler

import (
	"net/http"

	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

func (h *CustomerHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.customerService.Register(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *CustomerHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	customer, err := h.customerService.GetProfile(ctx, actorFrom(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, customer)
}
