// Package auth issues and verifies the JWT access/refresh tokens that
// gate the user and admin API surfaces, and hashes the login and
// transactional passwords stored on a user.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/metrics"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Surface distinguishes the user-facing API from the admin one; each
// carries its own session id so logging in on one never invalidates
// the other.
type Surface string

const (
	SurfaceUser  Surface = "user"
	SurfaceAdmin Surface = "admin"
)

const refreshTTLMultiple = 24 // refresh tokens outlive access tokens by this many access-token lifetimes

// Claims is the JWT payload minted at login and checked on every
// authenticated request.
type Claims struct {
	UserID int64   `json:"user_id"`
	Sid    string  `json:"sid"`
	Surf   Surface `json:"surf"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens.
type Service struct {
	db         *sqlite.DB
	signingKey []byte
}

// NewService creates an auth service signing with signingKey (HS256).
func NewService(db *sqlite.DB, signingKey []byte) *Service {
	return &Service{db: db, signingKey: signingKey}
}

func (s *Service) accessTTL(ctx context.Context) (time.Duration, error) {
	settings, err := s.db.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	hours := settings.TokenValidityPeriodHours
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour, nil
}

// LoginUser validates username/password and is_active, mints a fresh
// session_id_user, and returns an access+refresh token pair scoped to
// the user surface.
func (s *Service) LoginUser(ctx context.Context, username, password string) (access, refresh string, err error) {
	return s.login(ctx, username, password, SurfaceUser, false)
}

// LoginAdmin is LoginUser but additionally requires is_staff and mints
// session_id_admin instead.
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (access, refresh string, err error) {
	return s.login(ctx, username, password, SurfaceAdmin, true)
}

func (s *Service) login(ctx context.Context, username, password string, surf Surface, requireStaff bool) (string, string, error) {
	access, refresh, err := s.loginInner(ctx, username, password, surf, requireStaff)
	result := "ok"
	if err != nil {
		result = "denied"
	}
	metrics.LoginAttempts.WithLabelValues(string(surf), result).Inc()
	return access, refresh, err
}

func (s *Service) loginInner(ctx context.Context, username, password string, surf Surface, requireStaff bool) (string, string, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", domain.Auth(domain.ErrInvalidCredentials, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", domain.Auth(domain.ErrInvalidCredentials, "")
	}
	if !user.IsActive {
		return "", "", domain.Auth(domain.ErrAccountInactive, "")
	}
	if requireStaff && !user.IsStaff {
		return "", "", domain.Auth(domain.ErrNotStaff, "")
	}

	sid := uuid.NewString()
	if err := s.db.UpdateUserSession(ctx, user.ID, string(surf), sid); err != nil {
		return "", "", err
	}

	return s.issuePair(ctx, user.ID, sid, surf)
}

func (s *Service) issuePair(ctx context.Context, userID int64, sid string, surf Surface) (string, string, error) {
	accessTTL, err := s.accessTTL(ctx)
	if err != nil {
		return "", "", err
	}
	access, err := s.sign(userID, sid, surf, accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.sign(userID, sid, surf, accessTTL*refreshTTLMultiple)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Service) sign(userID int64, sid string, surf Surface, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Sid:    sid,
		Surf:   surf,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Refresh mints a fresh access token from a still-valid refresh token,
// re-checking the stored session id so a token from a superseded
// login is rejected even before it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Verify(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	accessTTL, err := s.accessTTL(ctx)
	if err != nil {
		return "", err
	}
	return s.sign(claims.UserID, claims.Sid, claims.Surf, accessTTL)
}

// Verify decodes tokenString and checks its sid against the user's
// currently stored session id for the token's surface. Returns the
// token's claims on success.
func (s *Service) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.Auth(domain.ErrMalformedToken, "")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, domain.Auth(domain.ErrMalformedToken, "")
	}

	user, err := s.db.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Auth(domain.ErrInvalidSession, "")
	}

	current := user.SessionIDUser
	if claims.Surf == SurfaceAdmin {
		current = user.SessionIDAdmin
	}
	if claims.Sid == "" || claims.Sid != current {
		return nil, domain.Auth(domain.ErrInvalidSession, "")
	}

	if claims.Surf != SurfaceAdmin {
		_ = s.db.TouchLastConnection(ctx, user.ID)
	}

	return claims, nil
}

// HashPassword bcrypt-hashes a plaintext login password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyTransactionalPassword checks plain against the user's 4-digit
// transactional password, required before admin wallet adjustments.
func VerifyTransactionalPassword(user *domain.User, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.TransactPasswordHash), []byte(plain)); err != nil {
		return domain.Auth(domain.ErrInvalidCredentials, "transactional password mismatch")
	}
	return nil
}

// HashTransactionalPassword bcrypt-hashes a 4-digit transactional password.
func HashTransactionalPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}
