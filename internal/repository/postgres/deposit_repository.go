package postgres

import (
	"context"
	"errors"

	"nickstore/domain"

	"gorm.io/gorm"
)

type DepositRepository struct {
	DB *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{
		DB: db,
	}
}

func (r *DepositRepository) Create(ctx context.Context, deposit *domain.PendingDeposit) error {
	if err := r.DB.WithContext(ctx).Create(&deposit).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}

	return nil
}

func (r *DepositRepository) FindByTransferContent(ctx context.Context, transferContent string) (domain.PendingDeposit, error) {
	var deposit domain.PendingDeposit

	err := r.DB.WithContext(ctx).Where("transfer_content = ?", transferContent).First(&deposit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PendingDeposit{}, domain.ErrNotFound
		}
		return domain.PendingDeposit{}, err
	}

	return deposit, nil
}

func (r *DepositRepository) FindAllByUser(ctx context.Context, userID uint) ([]domain.PendingDeposit, error) {
	var deposits []domain.PendingDeposit

	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&deposits).Error
	if err != nil {
		return nil, err
	}

	return deposits, nil
}

// ConfirmAndCredit settles a verified webhook in one transaction. The
// compare-and-swap on status = pending (with the amount in the match)
// is what makes replayed or duplicate webhooks a no-op: only the first
// delivery flips the row, so only the first delivery credits the wallet.
func (r *DepositRepository) ConfirmAndCredit(ctx context.Context, transferContent string, amount int64) (domain.PendingDeposit, error) {
	var deposit domain.PendingDeposit

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		confirm := tx.Model(&domain.PendingDeposit{}).
			Where("transfer_content = ? AND amount = ? AND status = ?",
				transferContent, amount, domain.DepositPending).
			Update("status", domain.DepositCompleted)
		if confirm.Error != nil {
			return confirm.Error
		}
		if confirm.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		if err := tx.Where("transfer_content = ?", transferContent).First(&deposit).Error; err != nil {
			return err
		}

		credit := tx.Model(&domain.User{}).
			Where("id = ?", deposit.UserID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return domain.PendingDeposit{}, err
	}

	return deposit, nil
}

// MarkFailed flips a deposit pending -> failed when the gateway reports
// an unsuccessful payment. Already-settled deposits are left alone.
func (r *DepositRepository) MarkFailed(ctx context.Context, transferContent string) error {
	result := r.DB.WithContext(ctx).Model(&domain.PendingDeposit{}).
		Where("transfer_content = ? AND status = ?", transferContent, domain.DepositPending).
		Update("status", domain.DepositFailed)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a pending record whose gateway order never got
// created, so no unconfirmable deposit is left behind.
func (r *DepositRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&domain.PendingDeposit{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
