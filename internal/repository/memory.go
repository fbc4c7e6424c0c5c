package repository

import (
	"context"
	"sync"
	"time"

	"github.com/compliment-hotline/compliment-bot/internal/domain"
)

type memoryAccount struct {
	mu      sync.Mutex
	account domain.UserAccount
}

// MemoryRepository is an in-memory AccountRepository used for tests and for
// running without a database. Mutations take a per-account lock created on
// demand, so operations on different accounts never block one another.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*memoryAccount
}

// NewMemoryRepository returns an empty in-memory account repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[int64]*memoryAccount),
	}
}

// FindByID returns a copy of the stored account or ErrAccountNotFound.
func (m *MemoryRepository) FindByID(ctx context.Context, userID int64) (*domain.UserAccount, error) {
	entry := m.lookup(userID)
	if entry == nil {
		return nil, ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	snapshot := entry.account
	return &snapshot, nil
}

// CreateIfAbsent stores the account unless one already exists for the user.
func (m *MemoryRepository) CreateIfAbsent(ctx context.Context, account *domain.UserAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.UserID]; exists {
		return nil
	}

	m.accounts[account.UserID] = &memoryAccount{account: *account}
	return nil
}

// Consume applies the free-before-credit decision under the account lock.
func (m *MemoryRepository) Consume(ctx context.Context, userID, freeAllowance, creditCost int64) (*ConsumeResult, error) {
	entry := m.lookup(userID)
	if entry == nil {
		return nil, ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	acc := &entry.account

	switch {
	case acc.FreeInteractionsUsed < freeAllowance:
		acc.FreeInteractionsUsed++
		acc.UpdatedAt = time.Now().UTC()
		return &ConsumeResult{
			Applied:              true,
			FromFree:             true,
			FreeInteractionsUsed: acc.FreeInteractionsUsed,
			Credits:              acc.Credits,
		}, nil
	case acc.Credits >= creditCost:
		acc.Credits -= creditCost
		acc.UpdatedAt = time.Now().UTC()
		return &ConsumeResult{
			Applied:              true,
			FromFree:             false,
			FreeInteractionsUsed: acc.FreeInteractionsUsed,
			Credits:              acc.Credits,
		}, nil
	default:
		return &ConsumeResult{
			Applied:              false,
			FreeInteractionsUsed: acc.FreeInteractionsUsed,
			Credits:              acc.Credits,
		}, nil
	}
}

// ResetFreeInteractions zeroes the free-interaction counter for one account.
func (m *MemoryRepository) ResetFreeInteractions(ctx context.Context, userID int64) error {
	entry := m.lookup(userID)
	if entry == nil {
		return ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.account.FreeInteractionsUsed = 0
	entry.account.UpdatedAt = time.Now().UTC()
	return nil
}

// ResetAllFreeInteractions zeroes the counter on every stored account.
func (m *MemoryRepository) ResetAllFreeInteractions(ctx context.Context) (int64, error) {
	m.mu.RLock()
	entries := make([]*memoryAccount, 0, len(m.accounts))
	for _, entry := range m.accounts {
		entries = append(entries, entry)
	}
	m.mu.RUnlock()

	var affected int64
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.account.FreeInteractionsUsed != 0 {
			entry.account.FreeInteractionsUsed = 0
			entry.account.UpdatedAt = time.Now().UTC()
			affected++
		}
		entry.mu.Unlock()
	}

	return affected, nil
}

// GrantCredits adds amount to the account balance and returns the new value.
func (m *MemoryRepository) GrantCredits(ctx context.Context, userID, amount int64) (int64, error) {
	entry := m.lookup(userID)
	if entry == nil {
		return 0, ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.account.Credits += amount
	entry.account.UpdatedAt = time.Now().UTC()
	return entry.account.Credits, nil
}

func (m *MemoryRepository) lookup(userID int64) *memoryAccount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[userID]
}
