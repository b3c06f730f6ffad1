package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"nickstore/domain"
	"nickstore/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	depositService DepositService
	timeout        time.Duration
}

func NewWebhookHandler(depositService DepositService) *WebhookHandler {
	return &WebhookHandler{
		depositService: depositService,
		timeout:        20 * time.Second,
	}
}

// HandleWebhook receives payment confirmations from the gateway. Once a
// payload passes the signature check the response is always 200 so the
// provider stops retrying; match failures and internal errors are
// logged, never surfaced.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error("Failed to read webhook body", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("invalid body"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.depositService.ProcessWebhook(ctx, raw); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			return c.JSON(http.StatusForbidden, ResponseError{Message: "invalid signature"})
		}
		logger.Error("Webhook processing error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("ok"))
}
