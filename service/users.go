package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-todo-cache/cacheaside"
	"github.com/goliatone/go-todo-cache/domain"
	"github.com/goliatone/go-todo-cache/storage"
)

// UserService reads users through the cache and writes them to the store.
type UserService struct {
	store  UserStore
	policy *cacheaside.Policy
	opts   options
}

func NewUserService(store UserStore, policy *cacheaside.Policy, opts ...Option) *UserService {
	return &UserService{store: store, policy: policy, opts: buildOptions(opts)}
}

// GetUser returns the user with id, from the cache when possible.
func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return cacheaside.Read(ctx, s.policy, s.policy.UserByID(id), func(ctx context.Context) (domain.User, error) {
		u, found, err := s.store.FindUserByID(ctx, id)
		if err != nil {
			return domain.User{}, err
		}
		if !found {
			return domain.User{}, &domain.NotFoundError{Entity: "user", ID: id}
		}
		return u, nil
	})
}

// CreateUser checks username then email against the store, never the cache,
// and inserts the user. Nothing is cached or evicted.
func (s *UserService) CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	if _, found, err := s.store.FindUserByUsername(ctx, in.Username); err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	} else if found {
		return domain.User{}, &domain.AlreadyExistsError{Field: "username", Value: in.Username}
	}

	if _, found, err := s.store.FindUserByEmail(ctx, in.Email); err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	} else if found {
		return domain.User{}, &domain.AlreadyExistsError{Field: "email", Value: in.Email}
	}

	u, err := s.store.SaveUser(ctx, domain.User{Username: in.Username, Email: in.Email})
	if err != nil {
		// Another request won the race between the checks and the insert.
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			value := in.Username
			if dup.Field == "email" {
				value = in.Email
			}
			return domain.User{}, &domain.AlreadyExistsError{Field: dup.Field, Value: value}
		}
		return domain.User{}, err
	}

	s.opts.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

// DeleteUser removes the user and its tasks, then evicts the user and the
// owner-scoped task regions.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteUserByID(ctx, id)
	if err != nil {
		return err
	}

	s.policy.EvictGroup(ctx, s.policy.OwnerWindows(id), s.policy.UserByID(id), s.policy.TaskCount(id))

	if !deleted {
		return &domain.NotFoundError{Entity: "user", ID: id}
	}
	s.opts.logger.Info("user deleted", "user_id", id)
	return nil
}
