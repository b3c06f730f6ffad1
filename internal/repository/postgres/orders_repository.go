package postgres

import (
	"context"
	"errors"
	"time"

	"nickstore/domain"

	"gorm.io/gorm"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// PlaceOrder runs the whole purchase in one transaction: debit the
// buyer's wallet only while it covers the total, flip every product
// available -> sold exactly once, then insert the order with its items.
// Any failed step rolls back the rest.
func (r *OrdersRepository) PlaceOrder(ctx context.Context, order *domain.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		debit := tx.Model(&domain.User{}).
			Where("id = ? AND balance >= ?", order.UserID, order.TotalPrice).
			Update("balance", gorm.Expr("balance - ?", order.TotalPrice))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return domain.ErrInsufficientBalance
		}

		for _, item := range order.Items {
			flip := tx.Model(&domain.Product{}).
				Where("id = ? AND status = ?", item.ProductID, domain.ProductAvailable).
				Update("status", domain.ProductSold)
			if flip.Error != nil {
				return flip.Error
			}
			if flip.RowsAffected == 0 {
				return domain.ErrProductUnavailable
			}
		}

		return tx.Create(order).Error
	})
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}

	return order, nil
}

func (r *OrdersRepository) FindAllByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	var orders []domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrdersRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrdersRepository) UpdateStatus(ctx context.Context, id uint, status string, isPaid bool, paidAt *time.Time) error {
	updates := map[string]interface{}{
		"status":  status,
		"is_paid": isPaid,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	result := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// HasPurchased reports whether the user owns a completed purchase of
// the product. Used to gate credential access post-sale.
func (r *OrdersRepository) HasPurchased(ctx context.Context, userID uint, productID uint64) (bool, error) {
	var count int64

	err := r.DB.WithContext(ctx).Model(&domain.OrderItem{}).
		Joins("join orders o on o.id = order_items.order_id").
		Where("o.user_id = ?", userID).
		Where("order_items.product_id = ?", productID).
		Where("o.status <> ?", domain.OrderCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
