// Package service holds the user use-cases. It is the only layer that turns gateway
// outcomes into typed user.Error failures; the HTTP boundary maps those to statuses.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/security"
)

// UserStore is the storage gateway. Implementations return user.ErrNotFound and
// user.ErrEmailTaken for the two expected outcomes and raw errors for everything else.
type UserStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, c user.Candidate) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersService struct {
	store     UserStore
	passwords security.PasswordEncoder
	log       *slog.Logger
}

func NewUsersService(store UserStore, passwords security.PasswordEncoder, log *slog.Logger) *UsersService {
	if passwords == nil {
		passwords = security.PlainText{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &UsersService{
		store:     store,
		passwords: passwords,
		log:       log,
	}
}

func (s *UsersService) List(ctx context.Context) ([]user.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, s.unexpected(ctx, "list users", err)
	}

	return users, nil
}

func (s *UsersService) GetByID(ctx context.Context, id int64) (user.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.NotFoundByID(id)
		}
		return user.User{}, s.unexpected(ctx, "get user by id", err)
	}

	return u, nil
}

func (s *UsersService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.NotFoundByEmail(email)
		}
		return user.User{}, s.unexpected(ctx, "get user by email", err)
	}

	return u, nil
}

func (s *UsersService) Create(ctx context.Context, c user.Candidate) (user.User, error) {
	exists, err := s.store.ExistsByEmail(ctx, c.Email)
	if err != nil {
		return user.User{}, s.unexpected(ctx, "check email", err)
	}
	if exists {
		return user.User{}, user.DuplicateEmail()
	}

	c.Password, err = s.encodePassword(ctx, c.Password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.store.Create(ctx, c)
	if err != nil {
		// the pre-check can lose a race; the store constraint is authoritative
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, user.DuplicateEmail()
		}
		return user.User{}, s.unexpected(ctx, "create user", err)
	}

	s.log.InfoContext(ctx, "user created", "user_id", created.ID)

	return created, nil
}

func (s *UsersService) Update(ctx context.Context, id int64, c user.Candidate) (user.User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if existing.Email != c.Email {
		taken, err := s.store.ExistsByEmail(ctx, c.Email)
		if err != nil {
			return user.User{}, s.unexpected(ctx, "check email", err)
		}
		if taken {
			return user.User{}, user.DuplicateEmail()
		}
	}

	if !user.IsBlank(c.Password) {
		c.Password, err = s.encodePassword(ctx, c.Password)
		if err != nil {
			return user.User{}, err
		}
	}

	updated, err := s.store.Update(ctx, existing.Apply(c))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			return user.User{}, user.NotFoundByID(id)
		case errors.Is(err, user.ErrEmailTaken):
			return user.User{}, user.DuplicateEmail()
		default:
			return user.User{}, s.unexpected(ctx, "update user", err)
		}
	}

	s.log.InfoContext(ctx, "user updated", "user_id", updated.ID)

	return updated, nil
}

func (s *UsersService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.NotFoundByID(id)
		}
		return s.unexpected(ctx, "delete user", err)
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id)

	return nil
}

func (s *UsersService) encodePassword(ctx context.Context, plain string) (string, error) {
	encoded, err := s.passwords.Encode(plain)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return "", user.Validation(fmt.Sprintf("Password must be at most %d bytes", security.MaxPasswordBytes))
		}
		return "", s.unexpected(ctx, "encode password", err)
	}

	return encoded, nil
}

func (s *UsersService) unexpected(ctx context.Context, op string, err error) error {
	s.log.ErrorContext(ctx, "user store failure", "op", op, "err", err)
	return user.Unexpected(op, err)
}
