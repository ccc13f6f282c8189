package handler

import (
	"io"
	"net/http"

	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger.Named("webhook"),
	}
}

// MomoWebhook receives Momo's IPN. Momo retries until it gets a 204, and a
// forged or mangled payload must not surface as an error to the caller, so
// signature failures are logged and acknowledged without touching any state.
func (h *PaymentHandler) MomoWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	cb, err := h.paymentService.VerifyIPN(model.PaymentMomo, body)
	if err != nil {
		h.logger.Warn("momo ipn rejected", zap.Error(err))
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.paymentService.ProcessWebhook(c.Request().Context(), cb); err != nil {
		h.logger.Error("momo webhook processing failed",
			zap.String("order_id", cb.OrderID), zap.Error(err))
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ZaloPayCallback receives ZaloPay's server callback. ZaloPay keys retries on
// the return_code in the JSON body: 1 acknowledges, 0 asks for a retry.
func (h *PaymentHandler) ZaloPayCallback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	cb, err := h.paymentService.VerifyIPN(model.PaymentZaloPay, body)
	if err != nil {
		h.logger.Warn("zalopay callback rejected", zap.Error(err))
		return c.JSON(http.StatusOK, map[string]interface{}{
			"return_code":    -1,
			"return_message": "mac not equal",
		})
	}

	if err := h.paymentService.ProcessWebhook(c.Request().Context(), cb); err != nil {
		h.logger.Error("zalopay webhook processing failed",
			zap.String("order_id", cb.OrderID), zap.Error(err))
		return c.JSON(http.StatusOK, map[string]interface{}{
			"return_code":    0,
			"return_message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"return_code":    1,
		"return_message": "success",
	})
}
