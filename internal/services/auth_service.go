package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var ErrInvalidToken = errors.New("invalid token")

// Verified against when the username is unknown so that both failure paths
// cost one argon2 derivation.
const dummyPasswordHash = "c2FsdHNhbHRzYWx0c2FsdA==$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g="

// Claims is the session token payload.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50" example:"alice"`
	Password string `json:"password" validate:"required,max=128" example:"password123"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type AuthService struct {
	db     *sql.DB
	redis  *redis.Client
	users  *store.UserStore
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:     db,
		redis:  redisClient,
		users:  store.NewUserStore(),
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

// Authenticate checks username and secret. An unknown user and a wrong secret
// both return ErrAuthFailed.
func (s *AuthService) Authenticate(ctx context.Context, username, secret string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || secret == "" || !storableText(username) {
		return nil, ErrAuthFailed
	}

	user, err := s.users.FindByUsername(ctx, s.db, username)
	if errors.Is(err, store.ErrNotFound) {
		VerifyPassword(secret, dummyPasswordHash)
		s.logger.Info("login rejected", zap.String("reason", "credentials"))
		return nil, ErrAuthFailed
	}
	if err != nil {
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: find user: %w", ErrStoreUnavailable, err)
	}

	if !VerifyPassword(secret, user.PasswordHash) {
		s.logger.Info("login rejected", zap.String("reason", "credentials"))
		return nil, ErrAuthFailed
	}

	s.logger.Info("login succeeded", zap.Int64("user_id", user.ID))
	return user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(tokenLifetime())

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature, algorithm and expiry.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return signingKey(), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if s.redis == nil {
		s.logger.Warn("redis unavailable, token not blacklisted", zap.Int64("user_id", claims.UserID))
		return nil
	}

	ttl := tokenLifetime()
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistKey(claims.ID), "1", ttl).Err(); err != nil {
		s.logger.Error("failed to blacklist token", zap.Error(err))
		return fmt.Errorf("%w: blacklist token: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the token was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, blacklistKey(claims.ID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: check blacklist: %w", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

func signingKey() []byte {
	return []byte(viper.GetString("jwt.secret_key"))
}

func tokenLifetime() time.Duration {
	hours := viper.GetInt("jwt.expiry_hours")
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

type argon2Params struct {
	time      uint32
	memory    uint32
	threads   uint8
	keyLength uint32
	saltLen   int
}

func loadArgon2Params() argon2Params {
	p := argon2Params{time: 1, memory: 64 * 1024, threads: 4, keyLength: 32, saltLen: 16}
	if v := viper.GetInt("argon2.time"); v > 0 {
		p.time = uint32(v)
	}
	if v := viper.GetInt("argon2.memory"); v > 0 {
		p.memory = uint32(v)
	}
	if v := viper.GetInt("argon2.threads"); v > 0 {
		p.threads = uint8(v)
	}
	if v := viper.GetInt("argon2.key_length"); v > 0 {
		p.keyLength = uint32(v)
	}
	if v := viper.GetInt("argon2.salt_length"); v > 0 {
		p.saltLen = v
	}
	return p
}

// HashPassword returns "base64(salt)$base64(argon2id(password, salt))".
func HashPassword(password string) (string, error) {
	p := loadArgon2Params()
	salt := make([]byte, p.saltLen)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func VerifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(hash) == 0 {
		return false
	}

	p := loadArgon2Params()
	computedHash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
