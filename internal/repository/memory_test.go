package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliment-hotline/compliment-bot/internal/domain"
)

func newAccount(userID, used, credits int64) *domain.UserAccount {
	now := time.Now().UTC()
	return &domain.UserAccount{
		UserID:               userID,
		FreeInteractionsUsed: used,
		Credits:              credits,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestMemoryRepository_CreateIfAbsentKeepsFirstRecord(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, newAccount(1, 0, 0)))
	require.NoError(t, repo.CreateIfAbsent(ctx, newAccount(1, 9, 99)))

	account, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.FreeInteractionsUsed)
	assert.Equal(t, int64(0), account.Credits)
}

func TestMemoryRepository_OperationsOnMissingAccount(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = repo.Consume(ctx, 42, 10, 1)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	err = repo.ResetFreeInteractions(ctx, 42)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = repo.GrantCredits(ctx, 42, 5)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMemoryRepository_FindReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, newAccount(2, 1, 1)))

	account, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)

	account.Credits = 1000

	stored, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Credits, "mutating a returned account must not touch the store")
}

func TestMemoryRepository_ConcurrentGrantsAreNotLost(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, newAccount(3, 0, 0)))

	const grants = 50

	var wg sync.WaitGroup
	for i := 0; i < grants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.GrantCredits(ctx, 3, 1)
		}()
	}
	wg.Wait()

	account, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(grants), account.Credits)
}

func TestMemoryRepository_ConsumeDeniesWithoutMutation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, newAccount(4, 10, 0)))

	result, err := repo.Consume(ctx, 4, 10, 1)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, int64(10), result.FreeInteractionsUsed)
	assert.Equal(t, int64(0), result.Credits)
}
