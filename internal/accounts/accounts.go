// Package accounts signs players up and logs them in.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/tatianab/relic-rush/internal/errors"
	"github.com/tatianab/relic-rush/internal/models"
)

// Store persists accounts keyed by lower-cased email.
type Store interface {
	// Create fails with apperrors.CodeAccountExists for a taken email.
	Create(ctx context.Context, account models.Account) error
	// GetByEmail returns nil when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Service implements sign-up and log-in over a Store.
type Service struct {
	store  Store
	cost   int
	pepper string
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// WithPepper sets a server-side secret mixed into every password.
func WithPepper(pepper string) Option {
	return func(s *Service) {
		s.pepper = pepper
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		cost:  bcrypt.DefaultCost,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail is the identity key used for accounts, sessions and
// history.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account. Every field is required.
func (s *Service) SignUp(ctx context.Context, displayName, email, password string) (*models.Account, error) {
	displayName = strings.TrimSpace(displayName)
	email = NormalizeEmail(email)
	if displayName == "" || email == "" || password == "" {
		return nil, apperrors.New(apperrors.CodeAccountFieldsRequired, "Please fill all fields.")
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.CodeAccountExists, "That email already exists.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.pepper+password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := models.Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hashed),
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, account); err != nil {
		if apperrors.HasCode(err, apperrors.CodeAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

// LogIn verifies the password and returns the account.
func (s *Service) LogIn(ctx context.Context, email, password string) (*models.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.New(apperrors.CodeAccountFieldsRequired, "Enter email + password.")
	}
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		return nil, apperrors.New(apperrors.CodeAccountNotFound, "User not found.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(s.pepper+password)); err != nil {
		return nil, apperrors.New(apperrors.CodeAccountWrongPassword, "Wrong password.")
	}
	return account, nil
}
