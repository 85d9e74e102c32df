package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/models"
)

// WalletService exposes the deposit/withdrawal flows of the wallet pages.
// Escrow movements belong to the lifecycle engine, not here.
type WalletService struct {
	wallet *ledger.Ledger
	log    *slog.Logger
}

func NewWalletService(wallet *ledger.Ledger, log *slog.Logger) *WalletService {
	if log == nil {
		log = slog.Default()
	}
	return &WalletService{wallet: wallet, log: log}
}

// Deposit credits the user's balance.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount int64, description string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be > 0", ErrValidation)
	}
	if description == "" {
		description = "Wallet deposit"
	}
	tx := s.wallet.Apply(&models.WalletTransaction{
		UserID:      userID,
		Type:        models.TxTypeDeposit,
		Amount:      amount,
		Description: description,
	})
	s.log.Info("deposit", "user_id", userID, "amount", amount)
	return tx, nil
}

// Withdraw debits the user's balance, failing with
// ledger.ErrInsufficientFunds on overdraft.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be > 0", ErrValidation)
	}
	tx, err := s.wallet.ApplyChecked(&models.WalletTransaction{
		UserID:      userID,
		Type:        models.TxTypeWithdrawal,
		Amount:      -amount,
		Description: "Withdrawal to bank account",
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("withdrawal", "user_id", userID, "amount", amount)
	return tx, nil
}

// Balance returns the user's tracked balance.
func (s *WalletService) Balance(userID uuid.UUID) int64 {
	return s.wallet.Balance(userID)
}

// Transactions returns the user's ledger entries, newest first.
func (s *WalletService) Transactions(userID uuid.UUID) []*models.WalletTransaction {
	return s.wallet.ListByUser(userID)
}
