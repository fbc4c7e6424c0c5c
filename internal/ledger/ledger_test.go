package ledger

import (
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/compliment-hotline/compliment-bot/internal/domain"
	errors "github.com/compliment-hotline/compliment-bot/internal/errors"
	"github.com/compliment-hotline/compliment-bot/internal/repository"
)

const (
	testAllowance = int64(10)
	testCost      = int64(1)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	return NewService(repo, testLogger()), repo
}

func seedAccount(t *testing.T, repo *repository.MemoryRepository, userID, used, credits int64) {
	t.Helper()

	now := time.Now().UTC()
	err := repo.CreateIfAbsent(context.Background(), &domain.UserAccount{
		UserID:               userID,
		FreeInteractionsUsed: used,
		Credits:              credits,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	require.NoError(t, err)
}

func TestTryConsume_FreeBeforeCreditPriority(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 1, 9, 5)

	result, err := svc.TryConsume(context.Background(), 1, testAllowance, testCost)
	require.NoError(t, err)

	assert.True(t, result.Authorized)
	assert.Equal(t, BucketFree, result.Bucket)
	assert.Equal(t, int64(0), result.FreeRemaining)
	assert.Equal(t, int64(5), result.Credits, "credits must be untouched while free tier remains")
}

func TestTryConsume_CreditConsumption(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 2, testAllowance, 3)

	result, err := svc.TryConsume(context.Background(), 2, testAllowance, testCost)
	require.NoError(t, err)

	assert.True(t, result.Authorized)
	assert.Equal(t, BucketCredit, result.Bucket)
	assert.Equal(t, int64(0), result.FreeRemaining)
	assert.Equal(t, int64(2), result.Credits)
}

func TestTryConsume_ExhaustionTransition(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 3, testAllowance, 0)

	result, err := svc.TryConsume(context.Background(), 3, testAllowance, testCost)
	require.NoError(t, err)

	assert.False(t, result.Authorized)
	assert.Equal(t, int64(0), result.FreeRemaining)
	assert.Equal(t, int64(0), result.Credits)

	account, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, testAllowance, account.FreeInteractionsUsed, "denial must not mutate counters")
	assert.Equal(t, int64(0), account.Credits)
}

func TestTryConsume_NoDoubleSpendUnderConcurrency(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 4, testAllowance, 1)

	var wg sync.WaitGroup
	results := make([]*Consumption, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot], errs[slot] = svc.TryConsume(context.Background(), 4, testAllowance, testCost)
		}(i)
	}
	wg.Wait()

	authorized := 0
	for i, result := range results {
		require.NoError(t, errs[i])
		if result.Authorized {
			authorized++
		}
	}
	assert.Equal(t, 1, authorized, "exactly one of two simultaneous calls may win the last credit")

	account, err := repo.FindByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Credits, "balance must land on zero, never -1 or 1")
}

func TestTryConsume_ConcurrentCallsNeverOverspend(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 5, 0, 5)

	const callers = 40

	var wg sync.WaitGroup
	var mu sync.Mutex
	authorized := int64(0)
	errs := make([]error, 0)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.TryConsume(context.Background(), 5, testAllowance, testCost)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.Authorized {
				authorized++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)

	assert.Equal(t, testAllowance+5, authorized, "total authorizations are capped by allowance plus credits")

	account, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, testAllowance, account.FreeInteractionsUsed)
	assert.Equal(t, int64(0), account.Credits)
	assert.GreaterOrEqual(t, account.Credits, int64(0))
}

func TestTryConsume_LazilyCreatesAccount(t *testing.T) {
	svc, repo := newTestService()

	result, err := svc.TryConsume(context.Background(), 6, testAllowance, testCost)
	require.NoError(t, err)

	assert.True(t, result.Authorized)
	assert.Equal(t, BucketFree, result.Bucket)
	assert.Equal(t, testAllowance-1, result.FreeRemaining)

	account, err := repo.FindByID(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.FreeInteractionsUsed)
	assert.Equal(t, int64(0), account.Credits)
}

func TestTryConsume_RejectsNegativeParameters(t *testing.T) {
	svc, _ := newTestService()

	testCases := []struct {
		name      string
		allowance int64
		cost      int64
	}{
		{name: "negative allowance", allowance: -1, cost: 1},
		{name: "negative cost", allowance: 10, cost: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.TryConsume(context.Background(), 7, tc.allowance, tc.cost)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidAmount)
		})
	}
}

func TestGetOrCreate_ConcurrentFirstLookups(t *testing.T) {
	svc, repo := newTestService()

	const callers = 20

	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = svc.GetOrCreate(context.Background(), 8)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	account, err := repo.FindByID(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.FreeInteractionsUsed)
	assert.Equal(t, int64(0), account.Credits)
}

func TestPeekBalance_ClampsAtZero(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 9, testAllowance+3, 2)

	freeRemaining, credits, err := svc.PeekBalance(context.Background(), 9, testAllowance)
	require.NoError(t, err)

	assert.Equal(t, int64(0), freeRemaining)
	assert.Equal(t, int64(2), credits)
}

func TestPeekBalance_CreatesUnknownAccount(t *testing.T) {
	svc, _ := newTestService()

	freeRemaining, credits, err := svc.PeekBalance(context.Background(), 10, testAllowance)
	require.NoError(t, err)

	assert.Equal(t, testAllowance, freeRemaining)
	assert.Equal(t, int64(0), credits)
}

func TestResetFreeInteractions_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 11, testAllowance, 0)

	require.NoError(t, svc.ResetFreeInteractions(context.Background(), 11))
	require.NoError(t, svc.ResetFreeInteractions(context.Background(), 11))

	account, err := repo.FindByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.FreeInteractionsUsed)

	result, err := svc.TryConsume(context.Background(), 11, testAllowance, testCost)
	require.NoError(t, err)
	assert.True(t, result.Authorized)
	assert.Equal(t, BucketFree, result.Bucket, "consumption must resume from the free tier after reset")
}

func TestResetAllFreeInteractions(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 12, 4, 0)
	seedAccount(t, repo, 13, testAllowance, 7)
	seedAccount(t, repo, 14, 0, 0)

	affected, err := svc.ResetAllFreeInteractions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	for _, userID := range []int64{12, 13, 14} {
		account, findErr := repo.FindByID(context.Background(), userID)
		require.NoError(t, findErr)
		assert.Equal(t, int64(0), account.FreeInteractionsUsed)
	}

	account, err := repo.FindByID(context.Background(), 13)
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.Credits, "promo reset must not touch credits")
}

func TestGrantCredits(t *testing.T) {
	svc, repo := newTestService()
	seedAccount(t, repo, 15, 0, 2)

	balance, err := svc.GrantCredits(context.Background(), 15, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance)

	account, err := repo.FindByID(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, int64(7), account.Credits)
}

func TestGrantCredits_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService()

	for _, amount := range []int64{0, -3} {
		_, err := svc.GrantCredits(context.Background(), 16, amount)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidAmount)
	}
}

func TestGrantCredits_CreatesUnknownAccount(t *testing.T) {
	svc, repo := newTestService()

	balance, err := svc.GrantCredits(context.Background(), 17, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)

	account, err := repo.FindByID(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.FreeInteractionsUsed)
	assert.Equal(t, int64(3), account.Credits)
}

var errStorageFailure = stdErrors.New("connection refused")

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByID(ctx context.Context, userID int64) (*domain.UserAccount, error) {
	args := m.Called(ctx, userID)
	account, _ := args.Get(0).(*domain.UserAccount)
	return account, args.Error(1)
}

func (m *mockRepository) CreateIfAbsent(ctx context.Context, account *domain.UserAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockRepository) Consume(ctx context.Context, userID, freeAllowance, creditCost int64) (*repository.ConsumeResult, error) {
	args := m.Called(ctx, userID, freeAllowance, creditCost)
	result, _ := args.Get(0).(*repository.ConsumeResult)
	return result, args.Error(1)
}

func (m *mockRepository) ResetFreeInteractions(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRepository) ResetAllFreeInteractions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) GrantCredits(ctx context.Context, userID, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func TestTryConsume_StorageFailureIsNeverAuthorized(t *testing.T) {
	repo := &mockRepository{}
	repo.On("Consume", mock.Anything, int64(18), testAllowance, testCost).
		Return((*repository.ConsumeResult)(nil), errStorageFailure).Once()

	svc := NewService(repo, testLogger())

	result, err := svc.TryConsume(context.Background(), 18, testAllowance, testCost)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsStorage(err))

	repo.AssertExpectations(t)
}

func TestGetOrCreate_StorageFailurePropagates(t *testing.T) {
	repo := &mockRepository{}
	repo.On("FindByID", mock.Anything, int64(19)).
		Return((*domain.UserAccount)(nil), errStorageFailure).Once()

	svc := NewService(repo, testLogger())

	_, err := svc.GetOrCreate(context.Background(), 19)
	require.Error(t, err)
	assert.True(t, errors.IsStorage(err))

	repo.AssertExpectations(t)
}
