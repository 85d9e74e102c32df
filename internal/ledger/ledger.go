package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/models"
)

// ErrInsufficientFunds is returned when a checked adjustment would overdraw
// the user's balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger tracks one balance per user plus an append-only transaction log.
// The balance map and the log are mutated in lockstep under one mutex, so
// the sum of applied entries always reconciles with the tracked balance.
type Ledger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	entries  []*models.WalletTransaction
}

func New() *Ledger {
	return &Ledger{balances: make(map[uuid.UUID]int64)}
}

// Balance returns the tracked balance, 0 for unknown users.
func (l *Ledger) Balance(userID uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

// Apply adjusts the user's balance by e.Amount and appends the entry.
// There is no overdraft check; use ApplyChecked where one is needed.
func (l *Ledger) Apply(e *models.WalletTransaction) *models.WalletTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[e.UserID] += e.Amount
	return l.append(e)
}

// ApplyChecked is Apply with an overdraft guard: if the adjustment would take
// the balance below zero it returns ErrInsufficientFunds and records nothing.
func (l *Ledger) ApplyChecked(e *models.WalletTransaction) (*models.WalletTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[e.UserID]+e.Amount < 0 {
		return nil, ErrInsufficientFunds
	}
	l.balances[e.UserID] += e.Amount
	return l.append(e), nil
}

// RecordMemo appends an informational entry without touching any balance.
// Used for escrow_release bookkeeping and registration fees.
func (l *Ledger) RecordMemo(e *models.WalletTransaction) *models.WalletTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.append(e)
}

// append stamps id/status/time if unset and stores a copy. Caller holds mu.
func (l *Ledger) append(e *models.WalletTransaction) *models.WalletTransaction {
	cp := *e
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.Status == "" {
		cp.Status = models.TxStatusCompleted
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	l.entries = append(l.entries, &cp)
	out := cp
	return &out
}

// ListByUser returns the user's transactions newest first.
func (l *Ledger) ListByUser(userID uuid.UUID) []*models.WalletTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.WalletTransaction
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID == userID {
			cp := *l.entries[i]
			out = append(out, &cp)
		}
	}
	return out
}

// AppliedSum sums the user's balance-affecting entries. It must equal
// Balance(userID) at every point; memo entries do not contribute.
func (l *Ledger) AppliedSum(userID uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum int64
	for _, e := range l.entries {
		if e.UserID == userID && models.BalanceAffecting(e.Type) {
			sum += e.Amount
		}
	}
	return sum
}
