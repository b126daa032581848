package devapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by the bearer tokens the API issues.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// AuthService implements login, registration and token checks.
type AuthService struct {
	store    *Store
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
}

func NewAuthService(store *Store, secret string, tokenTTL time.Duration, cost int) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, secret: []byte(secret), tokenTTL: tokenTTL, cost: cost, now: time.Now}
}

func (s *AuthService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// SeedAdmin creates the administrator account unless it already exists.
func (s *AuthService) SeedAdmin(ctx context.Context, cfg AdminConfig) (User, error) {
	u, err := s.store.UserByUsername(ctx, cfg.Username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	h, err := s.hash(cfg.Password)
	if err != nil {
		return User{}, err
	}
	return s.store.CreateUser(ctx, User{
		Name:         cfg.Name,
		Surname:      cfg.Surname,
		Username:     cfg.Username,
		Role:         RoleAdmin,
		IsActive:     true,
		PasswordHash: h,
	})
}

// Register creates an active operator account.
func (s *AuthService) Register(ctx context.Context, u User, password string) (User, error) {
	h, err := s.hash(password)
	if err != nil {
		return User{}, err
	}
	u.Role = RoleOperator
	u.IsActive = true
	u.PasswordHash = h
	return s.store.CreateUser(ctx, u)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return "", User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", User{}, ErrInactive
	}
	token, err := s.issue(u)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

func (s *AuthService) UpdateCredentials(ctx context.Context, id int64, username, password string) (User, error) {
	var h string
	if password != "" {
		var err error
		if h, err = s.hash(password); err != nil {
			return User{}, err
		}
	}
	return s.store.UpdateCredentials(ctx, id, username, h)
}

func (s *AuthService) issue(u User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

var errInvalidToken = errors.New("invalid token")

// Verify parses a bearer token and checks that its account still exists
// and is active.
func (s *AuthService) Verify(ctx context.Context, raw string) (User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return User{}, fmt.Errorf("%w: %w", errInvalidToken, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return User{}, fmt.Errorf("%w: bad subject", errInvalidToken)
	}
	u, err := s.store.User(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("%w: unknown user", errInvalidToken)
	}
	if err != nil {
		return User{}, err
	}
	if !u.IsActive {
		return User{}, ErrInactive
	}
	return u, nil
}
