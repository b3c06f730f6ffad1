package deposit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"nickstore/domain"
	"nickstore/internal/repository/payos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChecksumKey = "unit-test-checksum-key"

type fakeDepositRepo struct {
	mu       sync.Mutex
	nextID   uint
	deposits map[string]*domain.PendingDeposit
	balances map[uint]int64
}

func newFakeDepositRepo() *fakeDepositRepo {
	return &fakeDepositRepo{
		deposits: make(map[string]*domain.PendingDeposit),
		balances: make(map[uint]int64),
	}
}

func (r *fakeDepositRepo) Create(_ context.Context, deposit *domain.PendingDeposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deposits[deposit.TransferContent]; ok {
		return domain.ErrConflict
	}

	r.nextID++
	deposit.ID = r.nextID
	cp := *deposit
	r.deposits[deposit.TransferContent] = &cp

	return nil
}

func (r *fakeDepositRepo) FindByTransferContent(_ context.Context, transferContent string) (domain.PendingDeposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dep, ok := r.deposits[transferContent]
	if !ok {
		return domain.PendingDeposit{}, domain.ErrNotFound
	}

	return *dep, nil
}

func (r *fakeDepositRepo) FindAllByUser(_ context.Context, userID uint) ([]domain.PendingDeposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.PendingDeposit
	for _, dep := range r.deposits {
		if dep.UserID == userID {
			out = append(out, *dep)
		}
	}

	return out, nil
}

func (r *fakeDepositRepo) ConfirmAndCredit(_ context.Context, transferContent string, amount int64) (domain.PendingDeposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dep, ok := r.deposits[transferContent]
	if !ok || dep.Status != domain.DepositPending || dep.Amount != amount {
		return domain.PendingDeposit{}, domain.ErrNotFound
	}

	dep.Status = domain.DepositCompleted
	r.balances[dep.UserID] += dep.Amount

	return *dep, nil
}

func (r *fakeDepositRepo) MarkFailed(_ context.Context, transferContent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dep, ok := r.deposits[transferContent]
	if !ok || dep.Status != domain.DepositPending {
		return domain.ErrNotFound
	}

	dep.Status = domain.DepositFailed

	return nil
}

func (r *fakeDepositRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, dep := range r.deposits {
		if dep.ID == id {
			delete(r.deposits, key)
			return nil
		}
	}

	return domain.ErrNotFound
}

func (r *fakeDepositRepo) balance(userID uint) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.balances[userID]
}

func (r *fakeDepositRepo) status(transferContent string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	dep, ok := r.deposits[transferContent]
	if !ok {
		return ""
	}

	return dep.Status
}

// fakeGateway stubs checkout creation but runs the real signature check,
// so webhook tests exercise the same verification path as production.
type fakeGateway struct {
	createErr    error
	createdCodes []int64
}

func (g *fakeGateway) CreateOrder(_ context.Context, orderCode, _ int64, _ string) (domain.PayOSOrderResponse, error) {
	if g.createErr != nil {
		return domain.PayOSOrderResponse{}, g.createErr
	}

	g.createdCodes = append(g.createdCodes, orderCode)

	return domain.PayOSOrderResponse{
		CheckoutURL: "https://pay.example.com/checkout",
		QRCode:      "qr-data",
	}, nil
}

func (g *fakeGateway) VerifyWebhook(raw []byte) (domain.PayOSWebhookPayload, error) {
	return payos.VerifyWebhook(raw, testChecksumKey)
}

func signedWebhook(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()

	fields["signature"] = payos.Sign(fields, testChecksumKey)
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	return raw
}

func TestCreateDeposit(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	intent, err := svc.CreateDeposit(context.Background(), 42, 100000)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(intent.TransferContent, "dtm0042"))
	assert.Len(t, intent.TransferContent, 13)
	assert.Equal(t, int64(100000), intent.Amount)
	assert.Equal(t, domain.DepositPending, intent.Status)
	assert.Equal(t, "https://pay.example.com/checkout", intent.CheckoutURL)
	assert.Equal(t, domain.DepositPending, repo.status(intent.TransferContent))
}

func TestCreateDeposit_InvalidAmount(t *testing.T) {
	svc := NewDepositService(newFakeDepositRepo(), &fakeGateway{})

	_, err := svc.CreateDeposit(context.Background(), 42, 0)
	assert.Error(t, err)

	_, err = svc.CreateDeposit(context.Background(), 42, -5000)
	assert.Error(t, err)
}

func TestCreateDeposit_GatewayFailureRollsBack(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{createErr: domain.ErrUpstream})

	_, err := svc.CreateDeposit(context.Background(), 42, 100000)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	// no orphaned pending record left behind
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.deposits)
}

func TestProcessWebhook_CreditsExactlyOnce(t *testing.T) {
	repo := newFakeDepositRepo()
	gw := &fakeGateway{}
	svc := NewDepositService(repo, gw)

	intent, err := svc.CreateDeposit(context.Background(), 7, 100000)
	require.NoError(t, err)

	raw := signedWebhook(t, map[string]interface{}{
		"orderCode":   intent.OrderCode,
		"amount":      100000,
		"description": intent.TransferContent,
		"status":      domain.PayOSStatusSuccess,
		"reference":   "FT123456",
	})

	require.NoError(t, svc.ProcessWebhook(context.Background(), raw))
	assert.Equal(t, int64(100000), repo.balance(7))
	assert.Equal(t, domain.DepositCompleted, repo.status(intent.TransferContent))

	// gateway retries delivery; the replay must be a no-op
	require.NoError(t, svc.ProcessWebhook(context.Background(), raw))
	assert.Equal(t, int64(100000), repo.balance(7))
}

func TestProcessWebhook_ConcurrentReplays(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	intent, err := svc.CreateDeposit(context.Background(), 9, 250000)
	require.NoError(t, err)

	raw := signedWebhook(t, map[string]interface{}{
		"orderCode":   intent.OrderCode,
		"amount":      250000,
		"description": intent.TransferContent,
		"status":      domain.PayOSStatusSuccess,
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.ProcessWebhook(context.Background(), raw)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(250000), repo.balance(9))
}

func TestProcessWebhook_TamperedSignature(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	intent, err := svc.CreateDeposit(context.Background(), 7, 100000)
	require.NoError(t, err)

	fields := map[string]interface{}{
		"orderCode":   intent.OrderCode,
		"amount":      100000,
		"description": intent.TransferContent,
		"status":      domain.PayOSStatusSuccess,
	}
	fields["signature"] = payos.Sign(fields, testChecksumKey)
	fields["amount"] = 99999999
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	err = svc.ProcessWebhook(context.Background(), raw)
	assert.True(t, errors.Is(err, domain.ErrInvalidSignature))

	// nothing credited, deposit untouched
	assert.Equal(t, int64(0), repo.balance(7))
	assert.Equal(t, domain.DepositPending, repo.status(intent.TransferContent))
}

func TestProcessWebhook_AmountMismatch(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	intent, err := svc.CreateDeposit(context.Background(), 7, 100000)
	require.NoError(t, err)

	// correctly signed, but the paid amount does not match the deposit
	raw := signedWebhook(t, map[string]interface{}{
		"orderCode":   intent.OrderCode,
		"amount":      50000,
		"description": intent.TransferContent,
		"status":      domain.PayOSStatusSuccess,
	})

	require.NoError(t, svc.ProcessWebhook(context.Background(), raw))
	assert.Equal(t, int64(0), repo.balance(7))
	assert.Equal(t, domain.DepositPending, repo.status(intent.TransferContent))
}

func TestProcessWebhook_FailedStatus(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	intent, err := svc.CreateDeposit(context.Background(), 7, 100000)
	require.NoError(t, err)

	raw := signedWebhook(t, map[string]interface{}{
		"orderCode":   intent.OrderCode,
		"amount":      100000,
		"description": intent.TransferContent,
		"status":      "cancelled",
	})

	require.NoError(t, svc.ProcessWebhook(context.Background(), raw))
	assert.Equal(t, domain.DepositFailed, repo.status(intent.TransferContent))
	assert.Equal(t, int64(0), repo.balance(7))

	// a later success for the same deposit must not revive it
	rawSuccess := signedWebhook(t, map[string]interface{}{
		"orderCode":   intent.OrderCode,
		"amount":      100000,
		"description": intent.TransferContent,
		"status":      domain.PayOSStatusSuccess,
	})
	require.NoError(t, svc.ProcessWebhook(context.Background(), rawSuccess))
	assert.Equal(t, int64(0), repo.balance(7))
}

func TestProcessWebhook_UnknownTransferContent(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	raw := signedWebhook(t, map[string]interface{}{
		"orderCode":   int64(555),
		"amount":      100000,
		"description": "dtm9999000000",
		"status":      domain.PayOSStatusSuccess,
	})

	// unmatched but signature-valid callbacks are acknowledged quietly
	require.NoError(t, svc.ProcessWebhook(context.Background(), raw))
}

func TestProcessWebhook_EmptyTransferContent(t *testing.T) {
	svc := NewDepositService(newFakeDepositRepo(), &fakeGateway{})

	raw := signedWebhook(t, map[string]interface{}{
		"orderCode": int64(555),
		"amount":    100000,
		"status":    domain.PayOSStatusSuccess,
	})

	require.NoError(t, svc.ProcessWebhook(context.Background(), raw))
}

func TestGenerateTransferContent(t *testing.T) {
	tc, err := generateTransferContent(123456)
	require.NoError(t, err)

	// last four digits of the user id, then six random digits
	assert.True(t, strings.HasPrefix(tc, "dtm3456"))
	assert.Len(t, tc, 13)

	seen := make(map[string]bool)
	for i := 0; i < 30; i++ {
		tc, err := generateTransferContent(42)
		require.NoError(t, err)
		assert.False(t, seen[tc], "duplicate transfer content %s", tc)
		seen[tc] = true
	}
}

func TestGetUserDeposits(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewDepositService(repo, &fakeGateway{})

	_, err := svc.CreateDeposit(context.Background(), 1, 100000)
	require.NoError(t, err)
	_, err = svc.CreateDeposit(context.Background(), 1, 200000)
	require.NoError(t, err)
	_, err = svc.CreateDeposit(context.Background(), 2, 300000)
	require.NoError(t, err)

	deposits, err := svc.GetUserDeposits(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, deposits, 2)
}
