// Package repository defines the persistence interfaces consumed by the
// service layer. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/audio-repo/internal/model"
)

// UserRepository persists user accounts.
//
// GetByID and GetByYandexID return apperror.ErrNotFound (wrapped) when no
// matching row exists. Create returns apperror.ErrConflict when the
// yandex_id is already taken.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByYandexID(ctx context.Context, yandexID string) (*model.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

// AudioRepository persists audio file records. Records are append-only:
// there is no update or delete.
type AudioRepository interface {
	Create(ctx context.Context, file *model.AudioFile) error
	ListByOwner(ctx context.Context, ownerID int64) ([]model.AudioFile, error)
}
