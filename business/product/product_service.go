package product

import (
	"context"
	"errors"
	"fmt"

	"nickstore/domain"
	"nickstore/pkg/logger"
	"nickstore/pkg/utils"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByCode(ctx context.Context, code string) (domain.Product, error)
	FindAll(ctx context.Context, categoryID uint64) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

// PurchaseChecker contract interface
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, userID uint, productID uint64) (bool, error)
}

type productService struct {
	productRepo   ProductRepository
	purchases     PurchaseChecker
	credentialKey string
}

func NewProductService(productRepo ProductRepository, purchases PurchaseChecker, credentialKey string) *productService {
	return &productService{
		productRepo:   productRepo,
		purchases:     purchases,
		credentialKey: credentialKey,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, categoryID uint64) ([]domain.Product, error) {
	products, err := s.productRepo.FindAll(ctx, categoryID)
	if err != nil {
		logger.Error("Failed to find all products", err)
		return nil, err
	}

	for i := range products {
		redactCredentials(&products[i])
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, errors.New("invalid product id")
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return nil, err
	}

	redactCredentials(&product)
	return &product, nil
}

// GetProductCredentials returns the decrypted account payload. Only the
// buyer of a sold listing, or an admin, gets through.
func (s *productService) GetProductCredentials(ctx context.Context, id uint64, requesterID uint, role string) (domain.ProductCredentials, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return domain.ProductCredentials{}, err
	}

	if role != domain.RoleAdmin {
		if product.Status != domain.ProductSold {
			return domain.ProductCredentials{}, domain.ErrForbidden
		}

		bought, err := s.purchases.HasPurchased(ctx, requesterID, id)
		if err != nil {
			return domain.ProductCredentials{}, err
		}
		if !bought {
			return domain.ProductCredentials{}, domain.ErrForbidden
		}
	}

	account, err := utils.DecryptCredential(product.Account, s.credentialKey)
	if err != nil {
		logger.Error("failed to decrypt account credential", err, "product_id", id)
		return domain.ProductCredentials{}, fmt.Errorf("decrypt credentials: %w", err)
	}

	password, err := utils.DecryptCredential(product.AccountPassword, s.credentialKey)
	if err != nil {
		logger.Error("failed to decrypt account password", err, "product_id", id)
		return domain.ProductCredentials{}, fmt.Errorf("decrypt credentials: %w", err)
	}

	return domain.ProductCredentials{
		ProductID:       product.ID,
		Code:            product.Code,
		Account:         account,
		AccountPassword: password,
		SecurityInfo:    product.SecurityInfo,
	}, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Code == "" {
		logger.Error("Invalid product data: code is required")
		return nil, errors.New("product code is required")
	}

	if product.Account == "" || product.AccountPassword == "" {
		logger.Error("Invalid product data: account credentials are required")
		return nil, errors.New("account credentials are required")
	}

	if product.Price <= 0 {
		logger.Error("Invalid product data: price must be greater than 0")
		return nil, errors.New("price must be greater than 0")
	}

	// unique listing code
	if _, err := s.productRepo.FindByCode(ctx, product.Code); err == nil {
		logger.Error("Product code already in use", "code", product.Code)
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	encryptedAccount, err := utils.EncryptCredential(product.Account, s.credentialKey)
	if err != nil {
		logger.Error("failed to encrypt account credential", err)
		return nil, fmt.Errorf("encrypt credentials: %w", err)
	}
	encryptedPassword, err := utils.EncryptCredential(product.AccountPassword, s.credentialKey)
	if err != nil {
		logger.Error("failed to encrypt account password", err)
		return nil, fmt.Errorf("encrypt credentials: %w", err)
	}

	product.Account = encryptedAccount
	product.AccountPassword = encryptedPassword
	product.Status = domain.ProductAvailable

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, err
	}

	logger.Info("product created successfully", "code", product.Code)

	redactCredentials(product)
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == 0 {
		logger.Error("Invalid product data: ID is required")
		return nil, errors.New("product ID is required")
	}

	if product.Price <= 0 {
		logger.Error("Invalid product data: price must be greater than 0")
		return nil, errors.New("price must be greater than 0")
	}

	if _, err := s.productRepo.FindByID(ctx, product.ID); err != nil {
		logger.Error("product not found", err)
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, err
	}

	updatedProduct, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, err
	}

	redactCredentials(&updatedProduct)
	return &updatedProduct, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("Invalid product id when deleting product")
		return errors.New("invalid product id")
	}

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		logger.Error("product not found", err)
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	logger.Info("product deleted", "product_id", id)
	return nil
}

func redactCredentials(product *domain.Product) {
	product.Account = ""
	product.AccountPassword = ""
}
