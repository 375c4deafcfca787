package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"streamflix-api/internal/database"
	"streamflix-api/internal/models"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// errTokenNotFound is returned when a reset token is unknown, used or expired
var errTokenNotFound = errors.New("token not found or expired")

// ResetTokenStore keeps password reset tokens until they are used or expire
type ResetTokenStore interface {
	StoreToken(ctx context.Context, token string, accountID uint, ttl time.Duration) error
	ConsumeToken(ctx context.Context, token string) (uint, error)
}

// RateLimiter tracks short cool-down windows per key
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string) (bool, error)
	SetRateLimit(ctx context.Context, key string, window time.Duration) error
}

// RedisService provides Redis operations
type RedisService struct {
	client *redis.Client
}

// NewRedisService wraps an existing Redis client
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

// StoreToken stores a password reset token with a TTL
func (r *RedisService) StoreToken(ctx context.Context, token string, accountID uint, ttl time.Duration) error {
	key := fmt.Sprintf("password_reset:%s", token)
	return r.client.Set(ctx, key, strconv.FormatUint(uint64(accountID), 10), ttl).Err()
}

// ConsumeToken reads and deletes a password reset token in one step
func (r *RedisService) ConsumeToken(ctx context.Context, token string) (uint, error) {
	key := fmt.Sprintf("password_reset:%s", token)

	value, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, errTokenNotFound
		}
		return 0, err
	}

	accountID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt reset token entry: %w", err)
	}
	return uint(accountID), nil
}

// SetRateLimit sets rate limit
func (r *RedisService) SetRateLimit(ctx context.Context, key string, window time.Duration) error {
	return r.client.Set(ctx, "rate_limit:"+key, "1", window).Err()
}

// CheckRateLimit checks rate limit
func (r *RedisService) CheckRateLimit(ctx context.Context, key string) (bool, error) {
	exists, err := r.client.Exists(ctx, "rate_limit:"+key).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}

// DBResetTokenStore keeps reset tokens in the password_reset table
type DBResetTokenStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBResetTokenStore creates a database backed token store
func NewDBResetTokenStore(db *gorm.DB) *DBResetTokenStore {
	return &DBResetTokenStore{db: db, now: time.Now}
}

// StoreToken implements ResetTokenStore
func (s *DBResetTokenStore) StoreToken(ctx context.Context, token string, accountID uint, ttl time.Duration) error {
	row := &models.PasswordReset{
		AccountID: accountID,
		Token:     token,
		ExpiresAt: s.now().Add(ttl),
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// ConsumeToken implements ResetTokenStore
func (s *DBResetTokenStore) ConsumeToken(ctx context.Context, token string) (uint, error) {
	var accountID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PasswordReset
		err := database.LockForUpdate(tx).Where("token = ?", token).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errTokenNotFound
			}
			return err
		}
		if !row.IsValidAt(s.now()) {
			return errTokenNotFound
		}

		if err := tx.Model(&models.PasswordReset{}).Where("id = ?", row.ID).Update("is_used", true).Error; err != nil {
			return err
		}
		accountID = row.AccountID
		return nil
	})
	return accountID, err
}
