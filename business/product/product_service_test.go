package product

import (
	"context"
	"errors"
	"testing"

	"nickstore/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCredentialKey = "0123456789abcdef"

type fakeProductRepo struct {
	nextID   uint64
	products map[uint64]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint64]*domain.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.nextID++
	product.ID = r.nextID
	cp := *product
	r.products[product.ID] = &cp

	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}

	return *product, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (domain.Product, error) {
	for _, product := range r.products {
		if product.Code == code {
			return *product, nil
		}
	}

	return domain.Product{}, domain.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, categoryID uint64) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range r.products {
		if categoryID == 0 || product.CategoryID == categoryID {
			out = append(out, *product)
		}
	}

	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return domain.ErrNotFound
	}

	cp := *product
	r.products[product.ID] = &cp

	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}

	delete(r.products, id)

	return nil
}

type fakePurchases struct {
	bought map[uint]map[uint64]bool
}

func (p *fakePurchases) HasPurchased(_ context.Context, userID uint, productID uint64) (bool, error) {
	return p.bought[userID][productID], nil
}

func TestCreateProduct(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, &fakePurchases{}, testCredentialKey)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{
		Code:            "NICK-001",
		Title:           "Mythic rank account",
		Account:         "player-one",
		AccountPassword: "secret-one",
		Price:           150000,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProductAvailable, created.Status)

	// response is redacted, stored credentials are ciphertext
	assert.Empty(t, created.Account)
	assert.Empty(t, created.AccountPassword)
	stored := repo.products[created.ID]
	assert.NotEmpty(t, stored.Account)
	assert.NotEqual(t, "player-one", stored.Account)
	assert.NotEqual(t, "secret-one", stored.AccountPassword)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), &fakePurchases{}, testCredentialKey)

	_, err := svc.CreateProduct(context.Background(), &domain.Product{Account: "a", AccountPassword: "b", Price: 1000})
	assert.Error(t, err)

	_, err = svc.CreateProduct(context.Background(), &domain.Product{Code: "X", Price: 1000})
	assert.Error(t, err)

	_, err = svc.CreateProduct(context.Background(), &domain.Product{Code: "X", Account: "a", AccountPassword: "b", Price: 0})
	assert.Error(t, err)
}

func TestCreateProduct_DuplicateCode(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), &fakePurchases{}, testCredentialKey)

	listing := domain.Product{Code: "NICK-001", Account: "a", AccountPassword: "b", Price: 1000}

	_, err := svc.CreateProduct(context.Background(), &listing)
	require.NoError(t, err)

	dup := domain.Product{Code: "NICK-001", Account: "c", AccountPassword: "d", Price: 2000}
	_, err = svc.CreateProduct(context.Background(), &dup)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestGetProductByID_RedactsCredentials(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, &fakePurchases{}, testCredentialKey)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{
		Code: "NICK-001", Account: "player-one", AccountPassword: "secret-one", Price: 1000,
	})
	require.NoError(t, err)

	got, err := svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Empty(t, got.Account)
	assert.Empty(t, got.AccountPassword)
}

func TestGetProductCredentials(t *testing.T) {
	repo := newFakeProductRepo()
	purchases := &fakePurchases{bought: map[uint]map[uint64]bool{
		10: {1: true},
	}}
	svc := NewProductService(repo, purchases, testCredentialKey)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{
		Code: "NICK-001", Account: "player-one", AccountPassword: "secret-one", Price: 1000,
	})
	require.NoError(t, err)

	// still listed: nobody but an admin may look
	_, err = svc.GetProductCredentials(context.Background(), created.ID, 10, domain.RoleUser)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	repo.products[created.ID].Status = domain.ProductSold

	// buyer gets the plaintext back
	creds, err := svc.GetProductCredentials(context.Background(), created.ID, 10, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "player-one", creds.Account)
	assert.Equal(t, "secret-one", creds.AccountPassword)

	// someone who never bought it does not
	_, err = svc.GetProductCredentials(context.Background(), created.ID, 11, domain.RoleUser)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// admin bypasses both gates
	creds, err = svc.GetProductCredentials(context.Background(), created.ID, 99, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "player-one", creds.Account)
}

func TestDeleteProduct(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, &fakePurchases{}, testCredentialKey)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{
		Code: "NICK-001", Account: "a", AccountPassword: "b", Price: 1000,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID))
	assert.True(t, errors.Is(svc.DeleteProduct(context.Background(), created.ID), domain.ErrNotFound))
}
