package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plantnet/apperr"
	"plantnet/models"
)

type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	InsertIfAbsent(ctx context.Context, u *models.User) (*models.User, error)
	ListExcept(ctx context.Context, email string) ([]models.User, error)
	MarkRequested(ctx context.Context, email string) (int64, error)
	SetRole(ctx context.Context, email string, role models.Role) (int64, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.FindByEmail(ctx, email)
}

// Save creates a Customer on first sign-in; later calls return the stored user unchanged.
func (s *Service) Save(ctx context.Context, email string, info models.User) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperr.ErrInvalid)
	}
	return s.store.InsertIfAbsent(ctx, &models.User{
		Email:     email,
		Name:      info.Name,
		Image:     info.Image,
		Role:      models.RoleCustomer,
		Timestamp: s.now().UnixMilli(),
	})
}

func (s *Service) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	return s.store.ListExcept(ctx, email)
}

// RequestSeller marks a Customer as having asked for Seller status. Only the
// customer may ask, and only once.
func (s *Service) RequestSeller(ctx context.Context, caller, email string) error {
	if caller != email {
		return fmt.Errorf("%w: can only request seller status for yourself", apperr.ErrForbidden)
	}
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Status == models.StatusRequested {
		return fmt.Errorf("%w: you have already requested to become a seller", apperr.ErrConflict)
	}
	if u.Role != models.RoleCustomer {
		return fmt.Errorf("%w: only customers can request seller status", apperr.ErrConflict)
	}

	matched, err := s.store.MarkRequested(ctx, email)
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("%w: you have already requested to become a seller", apperr.ErrConflict)
	}
	return nil
}

func (s *Service) SetRole(ctx context.Context, email string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", apperr.ErrInvalid, role)
	}
	matched, err := s.store.SetRole(ctx, email, role)
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, email)
	}
	return nil
}
