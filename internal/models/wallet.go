package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet transaction types. Amounts are signed: a deposit is positive, a
// withdrawal or escrow hold negative. escrow_release and registration_fee are
// informational entries: they document money movement that already happened
// (or happened outside the wallet) and never change a balance.
const (
	TxTypeDeposit         = "deposit"
	TxTypeWithdrawal      = "withdrawal"
	TxTypeEarning         = "earning"
	TxTypeEscrowHold      = "escrow_hold"
	TxTypeEscrowRelease   = "escrow_release"
	TxTypeRefund          = "refund"
	TxTypeRegistrationFee = "registration_fee"
)

// TxStatusCompleted is the only status current flows produce.
const TxStatusCompleted = "completed"

// BalanceAffecting reports whether entries of the given type carry a signed
// delta that is applied to the user's balance when recorded.
func BalanceAffecting(txType string) bool {
	switch txType {
	case TxTypeDeposit, TxTypeWithdrawal, TxTypeEarning, TxTypeEscrowHold, TxTypeRefund:
		return true
	}
	return false
}

// WalletTransaction is an immutable, append-only ledger entry.
type WalletTransaction struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Type        string     `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}
