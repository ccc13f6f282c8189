package handler

import (
	"net/http"

	"github.com/Deco-Team/efurniture-server/internal/dto"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	id, err := h.productService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.Get(ctx, c.Param("productId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.ListPublic(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) ListAllProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.ListAll(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}
