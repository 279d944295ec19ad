package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/sakif/audio-repo/internal/apperror"
	"github.com/sakif/audio-repo/internal/auth"
	"github.com/sakif/audio-repo/internal/model"
)

// fakeUserRepo is an in-memory implementation of
// repository.UserRepository shared by the service tests. A fake (not a
// mock framework) keeps the tests easy to read.
type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64

	// set to force failures
	createErr  error
	getByIDErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.YandexID == user.YandexID {
			return apperror.Conflict("user", user.YandexID)
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByYandexID(ctx context.Context, yandexID string) (*model.User, error) {
	for _, u := range f.users {
		if u.YandexID == yandexID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", yandexID)
}

func (f *fakeUserRepo) UpdateUsername(ctx context.Context, id int64, username string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.Username = username
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

// add seeds a user directly, bypassing Create.
func (f *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID == 0 {
		u.ID = f.nextID
		f.nextID++
	}
	f.users[u.ID] = u
	return u
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func testYandexUser() *auth.YandexUser {
	return &auth.YandexUser{
		ID:           "ya-1001",
		DefaultEmail: "ivan@example.com",
		DisplayName:  "Ivan",
	}
}

func TestLoginOrRegisterYandex_CreatesNewUser(t *testing.T) {
	repo := newFakeUserRepo()
	tokens := newTestTokens(t)
	svc := NewAuthService(repo, tokens, false, testLogger())

	result, err := svc.LoginOrRegisterYandex(context.Background(), testYandexUser())
	if err != nil {
		t.Fatalf("LoginOrRegisterYandex() error = %v", err)
	}

	if result.User.ID == 0 {
		t.Error("new user has no ID")
	}
	if result.User.Email != "ivan@example.com" {
		t.Errorf("email = %q", result.User.Email)
	}
	if !result.User.IsActive {
		t.Error("new user should be active")
	}
	if result.User.IsSuperuser {
		t.Error("new user should not be a superuser by default")
	}

	// The issued token must resolve back to this user
	subject, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() on issued token error = %v", err)
	}
	if subject != strconv.FormatInt(result.User.ID, 10) {
		t.Errorf("token subject = %q, want %d", subject, result.User.ID)
	}
}

func TestLoginOrRegisterYandex_GrantSuperuserFlag(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, newTestTokens(t), true, testLogger())

	result, err := svc.LoginOrRegisterYandex(context.Background(), testYandexUser())
	if err != nil {
		t.Fatalf("LoginOrRegisterYandex() error = %v", err)
	}
	if !result.User.IsSuperuser {
		t.Error("signup with the grant flag should create a superuser")
	}
}

func TestLoginOrRegisterYandex_ReturningUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, newTestTokens(t), false, testLogger())

	first, err := svc.LoginOrRegisterYandex(context.Background(), testYandexUser())
	if err != nil {
		t.Fatalf("first login error = %v", err)
	}
	second, err := svc.LoginOrRegisterYandex(context.Background(), testYandexUser())
	if err != nil {
		t.Fatalf("second login error = %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Errorf("second login created a new user: %d vs %d", first.User.ID, second.User.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("repo holds %d users, want 1", len(repo.users))
	}
}

// racingUserRepo simulates losing the create race: the initial lookup
// misses, Create reports a conflict, and the winner's row is visible on
// the re-fetch.
type racingUserRepo struct {
	*fakeUserRepo
	lookups int
}

func (r *racingUserRepo) GetByYandexID(ctx context.Context, yandexID string) (*model.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, apperror.NotFound("user", yandexID)
	}
	return r.fakeUserRepo.GetByYandexID(ctx, yandexID)
}

func TestLoginOrRegisterYandex_LostCreateRace(t *testing.T) {
	inner := newFakeUserRepo()
	winner := inner.add(&model.User{YandexID: "ya-1001", Email: "ivan@example.com", IsActive: true})
	inner.createErr = apperror.Conflict("user", "ya-1001")

	repo := &racingUserRepo{fakeUserRepo: inner}
	svc := NewAuthService(repo, newTestTokens(t), false, testLogger())

	result, err := svc.LoginOrRegisterYandex(context.Background(), testYandexUser())
	if err != nil {
		t.Fatalf("LoginOrRegisterYandex() error = %v", err)
	}
	if result.User.ID != winner.ID {
		t.Errorf("resolved user %d, want the winning row %d", result.User.ID, winner.ID)
	}
	if len(inner.users) != 1 {
		t.Errorf("repo holds %d users, want 1", len(inner.users))
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	repo := newFakeUserRepo()
	tokens := newTestTokens(t)
	svc := NewAuthService(repo, tokens, false, testLogger())

	user := repo.add(&model.User{YandexID: "ya-1", Email: "a@example.com", IsActive: true})
	token, _ := tokens.Generate(strconv.FormatInt(user.ID, 10))

	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Authenticate() user = %d, want %d", got.ID, user.ID)
	}
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newTestTokens(t), false, testLogger())

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Authenticate() error = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	tokens := newTestTokens(t)
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, tokens, false, testLogger())

	user := repo.add(&model.User{YandexID: "ya-1", IsActive: true})
	token, _ := tokens.GenerateWithTTL(strconv.FormatInt(user.ID, 10), -time.Second)

	_, err := svc.Authenticate(context.Background(), token)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Authenticate() error = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticate_NonNumericSubject(t *testing.T) {
	tokens := newTestTokens(t)
	svc := NewAuthService(newFakeUserRepo(), tokens, false, testLogger())

	token, _ := tokens.Generate("not-a-number")

	_, err := svc.Authenticate(context.Background(), token)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Authenticate() error = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticate_DeletedUserLooksLikeBadToken(t *testing.T) {
	tokens := newTestTokens(t)
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, tokens, false, testLogger())

	// Token for a user id that does not exist (e.g. deleted after issue)
	token, _ := tokens.Generate("424242")

	_, deletedErr := svc.Authenticate(context.Background(), token)
	_, garbageErr := svc.Authenticate(context.Background(), "garbage")

	if !errors.Is(deletedErr, apperror.ErrUnauthorized) {
		t.Fatalf("deleted-user error = %v, want ErrUnauthorized", deletedErr)
	}
	// Externally identical denials: same message, no existence leak
	if deletedErr.Error() != garbageErr.Error() {
		t.Errorf("deleted-user denial %q differs from bad-token denial %q",
			deletedErr.Error(), garbageErr.Error())
	}
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	tokens := newTestTokens(t)
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, tokens, false, testLogger())

	user := repo.add(&model.User{YandexID: "ya-1", IsActive: false})
	token, _ := tokens.Generate(strconv.FormatInt(user.ID, 10))

	_, err := svc.Authenticate(context.Background(), token)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Authenticate() error = %v, want ErrForbidden", err)
	}
	// Distinguishable from the credential denial
	if errors.Is(err, apperror.ErrUnauthorized) {
		t.Error("inactive denial should not be a credential denial")
	}
}
