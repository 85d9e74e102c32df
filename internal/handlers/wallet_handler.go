package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

// WalletHandler serves the wallet page endpoints.
type WalletHandler struct {
	wallet *services.WalletService
	log    *slog.Logger
}

func NewWalletHandler(wallet *services.WalletService, log *slog.Logger) *WalletHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WalletHandler{wallet: wallet, log: log}
}

type walletResponse struct {
	Balance      int64                       `json:"balance"`
	Transactions []*models.WalletTransaction `json:"transactions"`
}

// GetWallet handles GET /api/v1/wallet.
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	txs := h.wallet.Transactions(u.ID)
	if txs == nil {
		txs = []*models.WalletTransaction{}
	}
	writeJSON(w, http.StatusOK, walletResponse{
		Balance:      h.wallet.Balance(u.ID),
		Transactions: txs,
	})
}

type amountRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Deposit handles POST /api/v1/wallet/deposit.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	tx, err := h.wallet.Deposit(r.Context(), u.ID, req.Amount, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("deposit", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// Withdraw handles POST /api/v1/wallet/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	tx, err := h.wallet.Withdraw(r.Context(), u.ID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, "insufficient balance")
		default:
			h.log.Error("withdraw", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}
