package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nickstore/domain"
	"nickstore/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	DepositHandler struct {
		validate       *validator.Validate
		depositService DepositService
		timeout        time.Duration
	}

	DepositService interface {
		CreateDeposit(ctx context.Context, userID uint, amount int64) (domain.DepositIntent, error)
		ProcessWebhook(ctx context.Context, raw []byte) error
		GetUserDeposits(ctx context.Context, userID uint) ([]domain.PendingDeposit, error)
	}

	DepositInput struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
)

func NewDepositHandler(depositService DepositService) *DepositHandler {
	return &DepositHandler{
		validate:       validator.New(),
		depositService: depositService,
		timeout:        20 * time.Second,
	}
}

func (h *DepositHandler) CreateDeposit(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var request DepositInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate deposit request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	intent, err := h.depositService.CreateDeposit(ctx, userID, request.Amount)
	if err != nil {
		logger.Error("Failed to create deposit", err)
		if errors.Is(err, domain.ErrConflict) {
			return c.JSON(http.StatusConflict, ResponseError{Message: "duplicate transfer content, please retry"})
		}
		if errors.Is(err, domain.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, ResponseError{Message: "payment gateway unavailable"})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(intent))
}

func (h *DepositHandler) GetMyDeposits(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deposits, err := h.depositService.GetUserDeposits(ctx, userID)
	if err != nil {
		logger.Error("Failed to get deposits", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(deposits))
}
