package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// Config controls token issuance and password hashing.
type Config struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	BcryptCost int
}

// Claims are carried by every issued bearer token.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Token is an issued bearer credential.
type Token struct {
	Value     string
	ExpiresAt time.Time
	User      *domain.User
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates an account and signs it in.
func (uc *UseCase) Register(ctx context.Context, name, email, password string, meta map[string]string) (*Token, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to create user", err)
	}

	logger.FromContext(ctx, uc.logger).Info("user registered", zap.String("user_id", user.ID))
	return uc.issue(ctx, user, meta)
}

// Login checks credentials and opens a new session.
func (uc *UseCase) Login(ctx context.Context, email, password string, meta map[string]string) (*Token, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "account is disabled")
	}
	return uc.issue(ctx, user, meta)
}

// Authenticate resolves a bearer token to an identity. The token must be
// correctly signed, unexpired and backed by a live session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := uc.parse(token)
	if err != nil {
		logger.FromContext(ctx, uc.logger).Debug("rejected bearer token", zap.Error(err))
		return nil, domain.ErrUnauthorized
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load session", err)
	}
	if session.IsExpired(time.Now()) || session.UserID != claims.UserID {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrUnauthorized
	}

	return &domain.Identity{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

// Refresh extends the session behind identity and issues a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, identity domain.Identity) (*Token, error) {
	if err := uc.sessions.Extend(ctx, identity.SessionID, uc.cfg.TTL); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to extend session", err)
	}
	user, err := uc.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	expiresAt := time.Now().Add(uc.cfg.TTL)
	signed, err := uc.sign(user.ID, identity.SessionID, expiresAt)
	if err != nil {
		return nil, err
	}
	return &Token{Value: signed, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the session; tokens bound to it stop working immediately.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to revoke session", err)
	}
	return nil
}

func (uc *UseCase) issue(ctx context.Context, user *domain.User, meta map[string]string) (*Token, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.TTL),
		Metadata:  meta,
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to save session", err)
	}

	signed, err := uc.sign(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &Token{Value: signed, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (uc *UseCase) sign(userID, sessionID string, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}
	return signed, nil
}

func (uc *UseCase) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(uc.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if uc.cfg.Issuer != "" && !claims.VerifyIssuer(uc.cfg.Issuer, true) {
		return nil, errors.New("unexpected issuer")
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, errors.New("missing identity claims")
	}
	return claims, nil
}
