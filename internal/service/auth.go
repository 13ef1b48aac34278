package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/fitfuel/fitfuel/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims are the session token claims. Subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users        repository.UserRepository
	goals        *GoalService
	clock        clockwork.Clock
	jwtSecret    []byte
	jwtExpiry    time.Duration
	isProduction bool
}

func NewAuthService(
	users repository.UserRepository,
	goals *GoalService,
	clock clockwork.Clock,
	jwtSecret string,
	jwtExpiry time.Duration,
	isProduction bool,
) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		users:        users,
		goals:        goals,
		clock:        clock,
		jwtSecret:    []byte(jwtSecret),
		jwtExpiry:    jwtExpiry,
		isProduction: isProduction,
	}
}

// Register creates an account and seeds the default goals. A seeding
// failure is logged; the account still exists.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validation.ValidateEmail(email); err != nil {
		return nil, &ValidationError{Field: "email", Message: err.Error()}
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, &ValidationError{Field: "password", Message: err.Error()}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)

	if s.goals != nil {
		if err := s.goals.SeedDefaults(ctx, user.ID); err != nil {
			slog.Warn("failed to seed default goals", "error", err, "user_id", user.ID)
		}
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GenerateJWT returns a signed session token and its expiry.
func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	now := s.clock.Now()
	expiry := now.Add(s.jwtExpiry)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserFromToken resolves a session token to its user.
func (s *AuthService) UserFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.users.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
