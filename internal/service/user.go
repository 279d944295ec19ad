package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/audio-repo/internal/apperror"
	"github.com/sakif/audio-repo/internal/model"
	"github.com/sakif/audio-repo/internal/repository"
)

// UserService handles operations on user records after authentication.
//
// Every cross-user operation checks authorization before existence: a
// non-superuser asking about another user's id gets a 403, whether or
// not that id exists. The 404 only ever reaches callers who were allowed
// to ask.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Get returns the user record with the given id on behalf of caller.
// Callers may always read their own record; reading anyone else's
// requires superuser.
func (s *UserService) Get(ctx context.Context, caller *model.User, id int64) (*model.User, error) {
	if err := authorize(caller, id); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUsername changes the caller's own username and returns the
// refreshed record.
//
// The username content is not validated: no length or charset check.
// Tightening it would break existing clients that rely on free-form
// names.
func (s *UserService) UpdateUsername(ctx context.Context, caller *model.User, username string) (*model.User, error) {
	user, err := s.users.UpdateUsername(ctx, caller.ID, username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("username updated", slog.Int64("userID", user.ID))
	return user, nil
}

// Delete permanently removes the user with the given id. Superuser only,
// including for the caller's own record. A repeat delete surfaces the
// repository's not-found.
func (s *UserService) Delete(ctx context.Context, caller *model.User, id int64) error {
	if !caller.IsSuperuser {
		return apperror.Forbidden("insufficient permissions")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		slog.Int64("userID", id),
		slog.Int64("deletedBy", caller.ID),
	)
	return nil
}

// authorize is the per-operation superuser gate: operating on another
// user's resource requires caller.IsSuperuser. It runs before any
// existence check so the denial can't leak whether the target exists.
func authorize(caller *model.User, targetID int64) error {
	if caller == nil {
		return fmt.Errorf("service/user: caller must not be nil")
	}
	if caller.ID != targetID && !caller.IsSuperuser {
		return apperror.Forbidden("insufficient permissions")
	}
	return nil
}
