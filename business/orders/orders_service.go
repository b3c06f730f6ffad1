package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nickstore/domain"
	"nickstore/pkg/logger"
	"nickstore/pkg/utils"
)

// OrdersRepository contract interface
type OrdersRepository interface {
	PlaceOrder(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindAllByUser(ctx context.Context, userID uint) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string, isPaid bool, paidAt *time.Time) error
	HasPurchased(ctx context.Context, userID uint, productID uint64) (bool, error)
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) error
}

const (
	SubjectCredentialDelivery = "Your purchased account details"
)

var validStatuses = map[string]bool{
	domain.OrderPending:    true,
	domain.OrderProcessing: true,
	domain.OrderCompleted:  true,
	domain.OrderCancelled:  true,
}

type OrdersService struct {
	orderRepo     OrdersRepository
	productRepo   ProductRepository
	userRepo      UserRepository
	notifRepo     NotificationRepository
	credentialKey string
}

func NewOrdersService(
	orderRepo OrdersRepository,
	productRepo ProductRepository,
	userRepo UserRepository,
	notifRepo NotificationRepository,
	credentialKey string,
) *OrdersService {
	return &OrdersService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		notifRepo:     notifRepo,
		credentialKey: credentialKey,
	}
}

// CreateOrder buys the requested accounts with the user's wallet. The
// total is recomputed from current catalog prices, never taken from the
// client. Debit, product flips and the order insert commit together.
func (s *OrdersService) CreateOrder(ctx context.Context, userID uint, productIDs []uint64, paymentMethod string) (domain.Order, error) {
	if len(productIDs) == 0 {
		return domain.Order{}, errors.New("no order items")
	}

	var totalPrice int64
	items := make([]domain.OrderItem, 0, len(productIDs))
	products := make([]domain.Product, 0, len(productIDs))

	for _, productID := range productIDs {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			logger.Error("Product not found for order", err, "product_id", productID)
			return domain.Order{}, err
		}

		if product.Status != domain.ProductAvailable {
			return domain.Order{}, domain.ErrProductUnavailable
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Price:     product.Price,
		})
		products = append(products, product)
		totalPrice += product.Price
	}

	now := time.Now()
	order := domain.Order{
		UserID:        userID,
		Items:         items,
		TotalPrice:    totalPrice,
		PaymentMethod: paymentMethod,
		Status:        domain.OrderProcessing,
		IsPaid:        true,
		PaidAt:        &now,
	}

	if err := s.orderRepo.PlaceOrder(ctx, &order); err != nil {
		logger.Error("Failed to place order", err, "user_id", userID)
		return domain.Order{}, err
	}

	logger.Info("order placed", "order_id", order.ID, "user_id", userID, "total", totalPrice)

	// credential delivery is best effort; the buyer can still read them
	// from the product endpoint
	if err := s.deliverCredentials(ctx, userID, products); err != nil {
		logger.Warn("Failed to deliver credentials by email", err, "order_id", order.ID)
	}

	return order, nil
}

func (s *OrdersService) deliverCredentials(ctx context.Context, userID uint, products []domain.Product) error {
	buyer, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	var body strings.Builder
	body.WriteString("Thank you for your purchase. Your account details:\n\n")
	for _, product := range products {
		account, err := utils.DecryptCredential(product.Account, s.credentialKey)
		if err != nil {
			return fmt.Errorf("decrypt account for product %d: %w", product.ID, err)
		}
		password, err := utils.DecryptCredential(product.AccountPassword, s.credentialKey)
		if err != nil {
			return fmt.Errorf("decrypt password for product %d: %w", product.ID, err)
		}

		fmt.Fprintf(&body, "%s (%s)\naccount: %s\npassword: %s\n\n", product.Title, product.Code, account, password)
	}

	return s.notifRepo.SendEmail(buyer.Name, buyer.Email, SubjectCredentialDelivery, body.String())
}

func (s *OrdersService) GetMyOrders(ctx context.Context, userID uint) ([]domain.Order, error) {
	return s.orderRepo.FindAllByUser(ctx, userID)
}

func (s *OrdersService) GetOrder(ctx context.Context, orderID, userID uint, role string) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.UserID != userID && role != domain.RoleAdmin {
		return domain.Order{}, domain.ErrForbidden
	}

	return order, nil
}

func (s *OrdersService) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

func (s *OrdersService) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	if !validStatuses[status] {
		return errors.New("invalid order status")
	}

	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return err
	}

	if status == domain.OrderCompleted {
		now := time.Now()
		return s.orderRepo.UpdateStatus(ctx, orderID, status, true, &now)
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, status, status != domain.OrderCancelled, nil)
}
