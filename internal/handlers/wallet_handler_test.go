package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

func newWalletFixture() (*WalletHandler, *ledger.Ledger, *models.User) {
	wallet := ledger.New()
	h := NewWalletHandler(services.NewWalletService(wallet, nil), nil)
	u := &models.User{ID: uuid.New(), Role: models.RoleWorker, IsApproved: true}
	return h, wallet, u
}

func TestGetWallet(t *testing.T) {
	h, wallet, u := newWalletFixture()

	rec := do(h.GetWallet, u, http.MethodGet, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get wallet: got %d", rec.Code)
	}
	var resp struct {
		Balance      int64             `json:"balance"`
		Transactions []json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != 0 {
		t.Errorf("balance: got %d, want 0", resp.Balance)
	}
	if resp.Transactions == nil {
		t.Error("transactions should encode as [], not null")
	}

	wallet.Apply(&models.WalletTransaction{UserID: u.ID, Type: models.TxTypeDeposit, Amount: 40})
	rec = do(h.GetWallet, u, http.MethodGet, nil, "")
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Balance != 40 || len(resp.Transactions) != 1 {
		t.Errorf("wallet after deposit: balance %d, %d txs", resp.Balance, len(resp.Transactions))
	}
}

func TestDepositEndpoint(t *testing.T) {
	h, wallet, u := newWalletFixture()

	rec := do(h.Deposit, u, http.MethodPost, map[string]any{"amount": 30}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit: got %d, body %s", rec.Code, rec.Body.String())
	}
	if got := wallet.Balance(u.ID); got != 30 {
		t.Errorf("balance: got %d, want 30", got)
	}

	rec = do(h.Deposit, u, http.MethodPost, map[string]any{"amount": -5}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative deposit: got %d, want 400", rec.Code)
	}
}

func TestWithdrawEndpoint(t *testing.T) {
	h, wallet, u := newWalletFixture()
	wallet.Apply(&models.WalletTransaction{UserID: u.ID, Type: models.TxTypeDeposit, Amount: 20})

	rec := do(h.Withdraw, u, http.MethodPost, map[string]any{"amount": 15}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdraw: got %d, body %s", rec.Code, rec.Body.String())
	}
	if got := wallet.Balance(u.ID); got != 5 {
		t.Errorf("balance: got %d, want 5", got)
	}

	rec = do(h.Withdraw, u, http.MethodPost, map[string]any{"amount": 6}, "")
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("overdraft: got %d, want 402", rec.Code)
	}
	rec = do(h.Withdraw, u, http.MethodPost, map[string]any{"amount": 0}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero withdrawal: got %d, want 400", rec.Code)
	}
}
