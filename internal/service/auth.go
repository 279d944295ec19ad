// Package service contains the business logic layer: authentication,
// user accounts and audio uploads. Handlers call services; services call
// repositories and the blob store. Nothing in this package knows about
// HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/audio-repo/internal/apperror"
	"github.com/sakif/audio-repo/internal/auth"
	"github.com/sakif/audio-repo/internal/model"
	"github.com/sakif/audio-repo/internal/repository"
)

// credentialsMessage is the single message returned for every credential
// failure: malformed token, expired token, or a token whose subject no
// longer resolves to a user. Keeping them indistinguishable prevents a
// caller from probing which accounts exist.
const credentialsMessage = "could not validate credentials"

// AuthService owns the login flow and bearer-token resolution.
type AuthService struct {
	users          repository.UserRepository
	tokens         *auth.TokenService
	grantSuperuser bool
	logger         *slog.Logger
}

// NewAuthService creates an AuthService.
//
// grantSuperuser controls whether newly registered accounts are created
// as superusers. The system this one replaced did that unconditionally
// for every signup; keep it false unless reproducing that behavior.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	grantSuperuser bool,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		grantSuperuser: grantSuperuser,
		logger:         logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterYandex handles a completed Yandex OAuth callback:
// find-or-create the user for the profile's Yandex ID, then issue an
// access token for them.
//
// Create can lose a race against a concurrent callback for the same
// Yandex account; the unique constraint on yandex_id turns the loser
// into a conflict, and we re-fetch the winning row. Either way exactly
// one record exists per Yandex ID.
func (s *AuthService) LoginOrRegisterYandex(ctx context.Context, yaUser *auth.YandexUser) (*AuthResult, error) {
	if yaUser == nil {
		return nil, fmt.Errorf("service/auth: Yandex user must not be nil")
	}

	user, err := s.users.GetByYandexID(ctx, yaUser.ID)
	switch {
	case err == nil:
		// returning user

	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			YandexID:    yaUser.ID,
			Email:       yaUser.DefaultEmail,
			Username:    yaUser.Username(),
			IsActive:    true,
			IsSuperuser: s.grantSuperuser,
		}
		if createErr := s.users.Create(ctx, user); createErr != nil {
			if errors.Is(createErr, apperror.ErrConflict) {
				// Lost the race; the row exists now.
				user, err = s.users.GetByYandexID(ctx, yaUser.ID)
				if err != nil {
					return nil, fmt.Errorf("service/auth: refetching user after conflict (yandexID=%s): %w", yaUser.ID, err)
				}
			} else {
				return nil, fmt.Errorf("service/auth: creating user (yandexID=%s): %w", yaUser.ID, createErr)
			}
		} else {
			s.logger.Info("user registered via Yandex",
				slog.Int64("userID", user.ID),
				slog.Bool("superuser", user.IsSuperuser),
			)
		}

	default:
		return nil, fmt.Errorf("service/auth: looking up user (yandexID=%s): %w", yaUser.ID, err)
	}

	s.logger.Info("user authenticated via Yandex", slog.Int64("userID", user.ID))

	token, err := s.tokens.Generate(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token string to an active user record.
//
// The resolution steps, in order:
//  1. validate the token (signature, algorithm, expiry, subject)
//  2. parse the subject claim as an internal user id
//  3. load the user record
//  4. check the account is active
//
// Steps 1-3 all fail with the same generic unauthorized error; a token
// for a deleted account is externally identical to a garbage token. Only
// step 4 produces a distinguishable denial ("inactive account").
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*model.User, error) {
	subject, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return nil, apperror.Unauthorized(credentialsMessage)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, apperror.Unauthorized(credentialsMessage)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(credentialsMessage)
		}
		return nil, fmt.Errorf("service/auth: resolving user %d: %w", userID, err)
	}

	if !user.IsActive {
		return nil, apperror.Forbidden("inactive account")
	}

	return user, nil
}
