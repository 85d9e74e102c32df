package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/models"
)

// ErrDuplicateEmail is returned when registering with an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials is returned on login with a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Register(ctx context.Context, email, password, name, role, plan string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error)
	ApproveUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo            *Repository
	wallet          *ledger.Ledger
	secret          []byte
	startingBalance int64
}

// NewService wires the user directory and the wallet ledger. Uploaders get
// startingBalance deposited at signup so they can fund their first tasks.
func NewService(repo *Repository, wallet *ledger.Ledger, secret []byte, startingBalance int64) *service {
	return &service{repo: repo, wallet: wallet, secret: secret, startingBalance: startingBalance}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func (s *service) Register(ctx context.Context, email, password, name, role, plan string) (*models.User, error) {
	if role != models.RoleUploader && role != models.RoleWorker {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	planDef, ok := models.Plans[plan]
	if !ok {
		return nil, fmt.Errorf("invalid plan %q", plan)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(&models.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		Plan:         plan,
		IsApproved:   false,
	})
	if err != nil {
		return nil, err
	}

	if role == models.RoleUploader && s.startingBalance > 0 {
		s.wallet.Apply(&models.WalletTransaction{
			UserID:      u.ID,
			Type:        models.TxTypeDeposit,
			Amount:      s.startingBalance,
			Description: "Starting balance",
		})
	}
	// The registration fee is collected at checkout, outside the wallet, so
	// it is recorded without touching the balance.
	if planDef.RegistrationFee > 0 {
		s.wallet.RecordMemo(&models.WalletTransaction{
			UserID:      u.ID,
			Type:        models.TxTypeRegistrationFee,
			Amount:      -planDef.RegistrationFee,
			Description: fmt.Sprintf("Registration fee (%s plan)", planDef.Name),
		})
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(u.ID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) issueToken(userID uuid.UUID, role string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return uuid.Nil, "", errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, c.Role, nil
}

// ApproveUser flips the approval flag. Caller enforces that only admins
// reach this.
func (s *service) ApproveUser(ctx context.Context, userID uuid.UUID) error {
	return s.repo.SetApproved(userID, true)
}
