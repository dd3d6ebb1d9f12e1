package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/evita-erp/evita-erp/internal/shared"
)

const tokenKeyPrefix = "evita:token:"

// Service wraps authentication business rules. Issued tokens live in
// redis so a restart invalidates nothing and a logout works across
// instances.
type Service struct {
	repo  Repository
	redis *redis.Client
	ttl   time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{repo: repo, redis: rdb, ttl: ttl}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	token := uuid.NewString()
	payload, err := json.Marshal(Session{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", nil, err
	}
	if err := s.redis.Set(ctx, tokenKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", nil, fmt.Errorf("store token: %w", err)
	}
	return token, user, nil
}

// Logout revokes a token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.redis.Del(ctx, tokenKeyPrefix+token).Err()
}

// ResolveToken looks a bearer token up and refreshes its TTL, keeping
// active users logged in.
func (s *Service) ResolveToken(ctx context.Context, token string) (*Session, error) {
	raw, err := s.redis.Get(ctx, tokenKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	s.redis.Expire(ctx, tokenKeyPrefix+token, s.ttl)
	return &sess, nil
}

// CurrentUser loads the full user record for an identity.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}
