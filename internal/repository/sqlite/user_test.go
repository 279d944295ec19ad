package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/audio-repo/internal/apperror"
	"github.com/sakif/audio-repo/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database, closed
// automatically when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, yandexID, email string) *model.User {
	t.Helper()
	user := &model.User{
		YandexID: yandexID,
		Email:    email,
		Username: "someone",
		IsActive: true,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		YandexID: "ya-12345",
		Email:    "test@example.com",
		Username: "testuser",
		IsActive: true,
	}

	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.IsSuperuser {
		t.Error("Create() should not grant superuser unless asked")
	}
}

func TestUserCreate_AssignsFreshIDs(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, "ya-1", "a@example.com")
	second := createTestUser(t, db, "ya-2", "b@example.com")

	if first.ID == second.ID {
		t.Errorf("both users got id %d", first.ID)
	}
}

func TestUserCreate_DuplicateYandexID(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "ya-99999", "first@example.com")

	duplicate := &model.User{
		YandexID: "ya-99999",
		Email:    "second@example.com",
	}
	err := db.Users().Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate yandex_id")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ya-1", "a@example.com")

	got, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.YandexID != "ya-1" || got.Email != "a@example.com" {
		t.Errorf("GetByID() = %+v, want the created user", got)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 12345)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByYandexID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ya-abc", "a@example.com")

	got, err := db.Users().GetByYandexID(context.Background(), "ya-abc")
	if err != nil {
		t.Fatalf("GetByYandexID() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByYandexID() id = %d, want %d", got.ID, created.ID)
	}

	if _, err := db.Users().GetByYandexID(context.Background(), "ya-missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByYandexID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdateUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ya-1", "a@example.com")

	updated, err := db.Users().UpdateUsername(context.Background(), created.ID, "newname")
	if err != nil {
		t.Fatalf("UpdateUsername() error = %v", err)
	}
	if updated.Username != "newname" {
		t.Errorf("Username = %q, want %q", updated.Username, "newname")
	}
	if updated.ID != created.ID {
		t.Errorf("id changed: %d → %d", created.ID, updated.ID)
	}
}

func TestUserUpdateUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().UpdateUsername(context.Background(), 777, "x")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUsername() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ya-1", "a@example.com")

	if err := db.Users().Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Users().GetByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	// Second delete of the same id
	if err := db.Users().Delete(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
