package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-memo/internal/cache"
	"go-memo/internal/features/mailqueue"

	"go.uber.org/zap"
)

// userCacheTTL bounds how stale a cached user lookup can be
const userCacheTTL = 5 * time.Minute

// KV is the cache primitive behind the read-through user lookup. Get
// returns nil, nil on a miss.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type UserService interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) error
	ActiveRecipients(ctx context.Context) ([]mailqueue.Recipient, error)
}

type UserServiceImpl struct {
	Repo   UserRepository
	Cache  KV
	Logger *zap.Logger
}

func NewUserService(repo UserRepository, redis *cache.RedisClient, logger *zap.Logger) UserService {
	return &UserServiceImpl{
		Repo:   repo,
		Cache:  redis,
		Logger: logger,
	}
}

func userCacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

// GetUser is a read-through lookup: Redis first, Mongo on a miss with
// cache backfill. Cache trouble degrades to a direct Mongo read.
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*User, error) {
	key := userCacheKey(id)

	if data, err := s.Cache.Get(ctx, key); err != nil {
		s.Logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
	} else if data != nil {
		var cached User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		s.Logger.Warn("dropping corrupt user cache entry", zap.String("user_id", id))
	}

	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := s.Cache.Set(ctx, key, data, userCacheTTL); err != nil {
			s.Logger.Warn("user cache backfill failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return user, nil
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.Repo.FindByEmail(ctx, email)
}

// UpdateUser replaces the stored profile. Cached copies come back without
// the credential and status fields (stripped from the JSON form), so those
// are reloaded from the store before the replace.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, user *User) error {
	existing, err := s.Repo.FindByID(ctx, user.ID.Hex())
	if err != nil {
		return err
	}
	user.Password = existing.Password
	user.Status = existing.Status
	user.VerifyToken = existing.VerifyToken
	user.VerifyExpiresAt = existing.VerifyExpiresAt
	user.CreatedAt = existing.CreatedAt

	if err := s.Repo.Update(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID.Hex())
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *UserServiceImpl) invalidate(ctx context.Context, id string) {
	if err := s.Cache.Del(ctx, userCacheKey(id)); err != nil {
		s.Logger.Warn("user cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}

// ActiveRecipients adapts the user store to the mail queue's broadcast
// producer.
func (s *UserServiceImpl) ActiveRecipients(ctx context.Context) ([]mailqueue.Recipient, error) {
	users, err := s.Repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]mailqueue.Recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, mailqueue.Recipient{
			Email:  u.Email,
			UserID: u.ID.Hex(),
		})
	}
	return recipients, nil
}
