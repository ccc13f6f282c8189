package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/handler"
	appmiddleware "github.com/Deco-Team/efurniture-server/internal/middleware"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo            *echo.Echo
	cartHandler     *handler.CartHandler
	orderHandler    *handler.OrderHandler
	paymentHandler  *handler.PaymentHandler
	productHandler  *handler.ProductHandler
	staffHandler    *handler.StaffHandler
	customerHandler *handler.CustomerHandler
}

func NewServer(
	cartService service.CartService,
	orderService service.OrderService,
	paymentService service.PaymentService,
	productService service.ProductService,
	staffService service.StaffService,
	taskService service.TaskService,
	customerService service.CustomerService,
	jwtSecret string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	s := &Server{
		echo:            e,
		cartHandler:     handler.NewCartHandler(cartService),
		orderHandler:    handler.NewOrderHandler(orderService),
		paymentHandler:  handler.NewPaymentHandler(paymentService, logger),
		productHandler:  handler.NewProductHandler(productService),
		staffHandler:    handler.NewStaffHandler(staffService, taskService),
		customerHandler: handler.NewCustomerHandler(customerService),
	}

	s.setupRoutes(jwtSecret)
	return s
}

func (s *Server) setupRoutes(jwtSecret string) {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	auth := appmiddleware.Auth(jwtSecret)
	requires := appmiddleware.RequireCapability

	api.POST("/customers/register", s.customerHandler.Register)
	api.GET("/customers/me", s.customerHandler.GetProfile, auth, requires("profile:read"))

	// -------- public catalog --------
	api.GET("/products", s.productHandler.ListProducts)
	api.GET("/products/:productId", s.productHandler.GetProduct)

	// -------- gateway webhooks / callbacks --------
	webhooks := api.Group("/payment")
	webhooks.POST("/momo/ipn", s.paymentHandler.MomoWebhook)
	webhooks.POST("/zalopay/callback", s.paymentHandler.ZaloPayCallback)

	// -------- customer --------
	cart := api.Group("/cart", auth, requires("cart:write"))
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PATCH("/items", s.cartHandler.UpdateItem)
	cart.DELETE("/items", s.cartHandler.RemoveItem)

	orders := api.Group("/orders", auth)
	orders.POST("", s.orderHandler.CreateOrder, requires("order:create"))
	orders.GET("", s.orderHandler.ListMyOrders, requires("order:read:self"))
	orders.GET("/:orderId", s.orderHandler.GetMyOrder, requires("order:read:self"))
	orders.GET("/:orderId/history", s.orderHandler.GetMyOrderHistory, requires("order:read:self"))
	orders.PATCH("/:orderId/cancel", s.orderHandler.CancelOrder, requires("order:cancel"))

	// -------- provider --------
	provider := api.Group("/provider/orders", auth)
	provider.GET("", s.orderHandler.ListOrders, requires("order:list"))
	provider.GET("/:orderId", s.orderHandler.GetOrder, requires("order:list"))
	provider.PATCH("/:orderId/confirm", s.orderHandler.ConfirmOrder, requires("order:confirm"))
	provider.PATCH("/:orderId/cancel", s.orderHandler.CancelOrder, requires("order:cancel"))
	provider.PATCH("/:orderId/assign-delivery", s.orderHandler.AssignDelivery, requires("order:assign"))
	provider.PATCH("/:orderId/deliver", s.orderHandler.DeliverOrder, requires("order:deliver"))
	provider.PATCH("/:orderId/complete", s.orderHandler.CompleteOrder, requires("order:complete"))

	// -------- admin --------
	admin := api.Group("/admin", auth)
	admin.GET("/products", s.productHandler.ListAllProducts, requires("product:write"))
	admin.POST("/products", s.productHandler.CreateProduct, requires("product:write"))
	admin.POST("/staff", s.staffHandler.CreateStaff, requires("staff:manage"))
	admin.GET("/staff", s.staffHandler.ListStaff, requires("staff:manage"))

	// -------- delivery staff --------
	tasks := api.Group("/tasks", auth, requires("task:read"))
	tasks.GET("", s.staffHandler.ListMyTasks)
	tasks.PATCH("/:taskId/start", s.staffHandler.StartTask)
	tasks.PATCH("/:taskId/complete", s.staffHandler.CompleteTask)
}

// errorHandler maps domain errors onto stable JSON payloads so clients can
// branch on the error code instead of parsing messages.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		code := "INTERNAL"
		message := "internal server error"

		var appErr *apperror.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status
			code = appErr.Code
			message = appErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			code = http.StatusText(status)
			message = fmt.Sprint(httpErr.Message)
		default:
			logger.Error("unhandled error", zap.Error(err))
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("code", code), zap.Error(err))
		}

		if writeErr := c.JSON(status, map[string]string{
			"error":   code,
			"message": message,
		}); writeErr != nil {
			logger.Error("write error response", zap.Error(writeErr))
		}
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
