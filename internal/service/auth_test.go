package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel/internal/db/dbtest"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/jonboulle/clockwork"
)

func newAuthService(t *testing.T) (*AuthService, *GoalService, fakeClock) {
	t.Helper()
	database := dbtest.Open(t)
	clock := clockwork.NewFakeClockAt(testNow)
	env := &testEnv{clock: clock, events: &recordedEvents{}}
	goals := env.newGoalService(repository.NewGoalRepository(database), repository.NewActivityRepository(database))
	auth := NewAuthService(repository.NewUserRepository(database), goals, clock, "test-secret", time.Hour, false)
	return auth, goals, clock
}

func TestRegisterSeedsDefaultGoals(t *testing.T) {
	auth, goals, _ := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "  Runner@Example.com ", "long enough secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "runner@example.com" {
		t.Fatalf("email not normalised: %q", user.Email)
	}

	list, err := goals.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Goals) != 3 {
		t.Fatalf("expected 3 default goals, got %d", len(list.Goals))
	}

	if _, err := auth.Register(ctx, "runner@example.com", "another long secret"); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("duplicate register: got %v", err)
	}
	var verr *ValidationError
	if _, err := auth.Register(ctx, "new@example.com", "short"); !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("weak password: got %v", err)
	}
}

func TestLoginAndSessionToken(t *testing.T) {
	auth, _, clock := newAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "lifter@example.com", "long enough secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Login(ctx, "lifter@example.com", "wrong secret here"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := auth.Login(ctx, "nobody@example.com", "long enough secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}

	user, err := auth.Login(ctx, "LIFTER@example.com", "long enough secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, expiry, err := auth.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if !expiry.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("expiry = %v", expiry)
	}

	resolved, err := auth.UserFromToken(ctx, token)
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if resolved.ID != registered.ID {
		t.Fatalf("token resolved to %s, want %s", resolved.ID, registered.ID)
	}

	if _, err := auth.VerifyJWT(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered token: got %v", err)
	}

	clock.Advance(2 * time.Hour)
	if _, err := auth.VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v", err)
	}
}

func TestJWTCookie(t *testing.T) {
	auth, _, _ := newAuthService(t)
	rec := httptest.NewRecorder()
	auth.SetJWTCookie(rec, "abc", testNow.Add(time.Hour))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != AuthCookieName || cookies[0].Value != "abc" || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
}
