package deposit

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"nickstore/domain"
	"nickstore/pkg/logger"
	"nickstore/pkg/metrics"
)

// DepositRepository contract interface
type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.PendingDeposit) error
	FindByTransferContent(ctx context.Context, transferContent string) (domain.PendingDeposit, error)
	FindAllByUser(ctx context.Context, userID uint) ([]domain.PendingDeposit, error)
	ConfirmAndCredit(ctx context.Context, transferContent string, amount int64) (domain.PendingDeposit, error)
	MarkFailed(ctx context.Context, transferContent string) error
	Delete(ctx context.Context, id uint) error
}

// PaymentGateway contract interface
type PaymentGateway interface {
	CreateOrder(ctx context.Context, orderCode, amount int64, description string) (domain.PayOSOrderResponse, error)
	VerifyWebhook(raw []byte) (domain.PayOSWebhookPayload, error)
}

type DepositService struct {
	depositRepo DepositRepository
	gateway     PaymentGateway
}

func NewDepositService(depositRepo DepositRepository, gateway PaymentGateway) *DepositService {
	return &DepositService{
		depositRepo: depositRepo,
		gateway:     gateway,
	}
}

// CreateDeposit opens a top-up intent: a unique transfer content the
// user types into their bank transfer, a pending record, and a gateway
// checkout link. If the gateway call fails the pending record is
// removed again so no unconfirmable deposit lingers.
func (s *DepositService) CreateDeposit(ctx context.Context, userID uint, amount int64) (domain.DepositIntent, error) {
	if amount <= 0 {
		return domain.DepositIntent{}, errors.New("amount must be greater than 0")
	}

	transferContent, err := generateTransferContent(userID)
	if err != nil {
		return domain.DepositIntent{}, fmt.Errorf("generate transfer content: %w", err)
	}

	_, err = s.depositRepo.FindByTransferContent(ctx, transferContent)
	if err == nil {
		logger.Warn("transfer content collision", "transfer_content", transferContent)
		return domain.DepositIntent{}, domain.ErrConflict
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.DepositIntent{}, err
	}

	orderCode, err := generateOrderCode()
	if err != nil {
		return domain.DepositIntent{}, fmt.Errorf("generate order code: %w", err)
	}

	pending := &domain.PendingDeposit{
		UserID:          userID,
		Amount:          amount,
		OrderCode:       orderCode,
		TransferContent: transferContent,
		Status:          domain.DepositPending,
	}

	// a concurrent insert with the same code loses on the unique index
	if err := s.depositRepo.Create(ctx, pending); err != nil {
		logger.Error("Failed to create pending deposit", err)
		return domain.DepositIntent{}, err
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, orderCode, amount, transferContent)
	if err != nil {
		logger.Error("Payment gateway order failed, rolling back deposit", err)
		if delErr := s.depositRepo.Delete(ctx, pending.ID); delErr != nil {
			logger.Error("Failed to roll back pending deposit", delErr, "deposit_id", pending.ID)
		}
		return domain.DepositIntent{}, err
	}

	metrics.DepositsCreated.Inc()
	logger.Info("pending deposit created",
		"user_id", userID, "amount", amount, "transfer_content", transferContent)

	return domain.DepositIntent{
		ID:              pending.ID,
		Amount:          pending.Amount,
		OrderCode:       pending.OrderCode,
		TransferContent: pending.TransferContent,
		Status:          pending.Status,
		CheckoutURL:     gatewayOrder.CheckoutURL,
		QRCode:          gatewayOrder.QRCode,
	}, nil
}

// ProcessWebhook settles one gateway callback. The signature gate runs
// before anything else touches state; after that every outcome is safe
// to receive again, so at-least-once delivery credits at most once.
func (s *DepositService) ProcessWebhook(ctx context.Context, raw []byte) error {
	start := time.Now()
	defer func() {
		metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	}()

	payload, err := s.gateway.VerifyWebhook(raw)
	if err != nil {
		metrics.WebhookRejected.Inc()
		logger.Warn("rejected webhook", "error", err.Error())
		return err
	}

	metrics.WebhookReceived.Inc()

	if payload.Description == "" {
		logger.Warn("webhook without transfer content", "order_code", payload.OrderCode)
		return nil
	}

	if payload.Status != domain.PayOSStatusSuccess {
		err := s.depositRepo.MarkFailed(ctx, payload.Description)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		logger.Info("deposit marked failed",
			"transfer_content", payload.Description, "status", payload.Status)
		return nil
	}

	deposit, err := s.depositRepo.ConfirmAndCredit(ctx, payload.Description, payload.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// replayed webhook, already settled deposit, or mismatched
			// amount: nothing to do
			logger.Warn("webhook matched no pending deposit",
				"transfer_content", payload.Description, "amount", payload.Amount)
			return nil
		}
		logger.Error("Failed to settle deposit", err, "transfer_content", payload.Description)
		return err
	}

	metrics.DepositsCredited.Inc()
	logger.Info("wallet credited",
		"user_id", deposit.UserID, "amount", deposit.Amount,
		"transfer_content", deposit.TransferContent)

	return nil
}

func (s *DepositService) GetUserDeposits(ctx context.Context, userID uint) ([]domain.PendingDeposit, error) {
	return s.depositRepo.FindAllByUser(ctx, userID)
}

// generateTransferContent builds the matching key the user puts in the
// transfer note: "dtm" + last four digits of the user id + six random
// digits. Random enough to avoid colliding with another pending
// deposit; short enough for a bank transfer note.
func generateTransferContent(userID uint) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("dtm%04d%06d", userID%10000, n.Int64()+100000), nil
}

func generateOrderCode() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000000))
	if err != nil {
		return 0, err
	}

	return n.Int64() + 100000000, nil
}
