package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"nickstore/domain"
	redisRepo "nickstore/internal/repository/redis"
	"nickstore/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrConflict
		}
	}

	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp

	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	return *user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return *user, nil
		}
	}

	return domain.User{}, domain.ErrNotFound
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (domain.User, error) {
	for _, user := range r.users {
		if user.Phone == phone {
			return *user, nil
		}
	}

	return domain.User{}, domain.ErrNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		out = append(out, *user)
	}

	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}

	cp := *user
	r.users[user.ID] = &cp

	return nil
}

func (r *fakeUserRepo) AdjustBalance(_ context.Context, id uint, delta int64) error {
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}

	if user.Balance+delta < 0 {
		return domain.ErrInsufficientBalance
	}

	user.Balance += delta

	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}

	delete(r.users, id)

	return nil
}

type fakeTokenRepo struct {
	sessions map[string]redisRepo.TokenData
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{sessions: make(map[string]redisRepo.TokenData)}
}

func (r *fakeTokenRepo) StoreToken(_ context.Context, _, token string, data redisRepo.TokenData, _ time.Duration) error {
	r.sessions[token] = data

	return nil
}

func (r *fakeTokenRepo) ValidateToken(_ context.Context, token string) (string, error) {
	data, ok := r.sessions[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}

	return data.UserID, nil
}

func (r *fakeTokenRepo) DeleteToken(_ context.Context, _, token string) error {
	if _, ok := r.sessions[token]; !ok {
		return domain.ErrNotFound
	}

	delete(r.sessions, token)

	return nil
}

func newTestService() (*userService, *fakeUserRepo, *fakeTokenRepo) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeTokenRepo()

	return NewUserService(userRepo, tokenRepo, validator.New()), userRepo, tokenRepo
}

func TestRegister(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.Empty(t, created.Password)

	// stored hash verifies against the original password
	stored := repo.users[created.ID]
	assert.NotEqual(t, "hunter22", stored.Password)
	assert.True(t, utils.CheckPassword("hunter22", stored.Password))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &domain.User{Email: "not-an-email", Password: "hunter22"})
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "other-pass"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_DuplicatePhone(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Phone: "0901234567", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &domain.User{Email: "bob@example.com", Phone: "0901234567", Password: "hunter22"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	svc, _, tokenRepo := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "alice@example.com", "hunter22", "203.0.113.1", "test-agent")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.Password)

	// session landed in the token store
	userID, err := tokenRepo.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1", userID)

	claims, err := utils.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong-pass", "", "")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, _, err = svc.Login(context.Background(), "ghost@example.com", "hunter22", "", "")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogout(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	svc, _, tokenRepo := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	token, _, err := svc.Login(context.Background(), "alice@example.com", "hunter22", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), created.ID, token))

	_, err = tokenRepo.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestAdjustBalance(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	user, err := svc.AdjustBalance(context.Background(), created.ID, 500000)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), user.Balance)

	user, err = svc.AdjustBalance(context.Background(), created.ID, -200000)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), user.Balance)

	// overdraft refused, balance intact
	_, err = svc.AdjustBalance(context.Background(), created.ID, -1000000)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	assert.Equal(t, int64(300000), repo.users[created.ID].Balance)

	_, err = svc.AdjustBalance(context.Background(), created.ID, 0)
	assert.Error(t, err)
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{Name: "Alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(context.Background(), created.ID, &domain.User{Name: "Alice B", Role: domain.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, domain.RoleSeller, updated.Role)

	_, err = svc.UpdateUser(context.Background(), created.ID, &domain.User{Role: "superadmin"})
	assert.Error(t, err)

	// cannot take an email already held by someone else
	other, err := svc.Register(context.Background(), &domain.User{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.UpdateUser(context.Background(), other.ID, &domain.User{Email: "alice@example.com"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestGetAllUsers_RedactsPasswords(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), &domain.User{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)

	users, err := svc.GetAllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestDeleteUser(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), created.ID))
	assert.Empty(t, repo.users)

	assert.True(t, errors.Is(svc.DeleteUser(context.Background(), created.ID), domain.ErrNotFound))
}
