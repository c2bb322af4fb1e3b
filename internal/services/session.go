package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gul251/nutrimate-backend/internal/database"
)

const (
	// SessionDuration keeps users logged in across browser restarts,
	// matching local session persistence on the client.
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"

	// Login throttling: after MaxLoginAttempts failures within
	// LoginAttemptWindow, sign-in is refused until the window expires.
	LoginAttemptKeyPrefix = "login_attempts:"
	MaxLoginAttempts      = 5
	LoginAttemptWindow    = 15 * time.Minute
)

// CreateSession creates a new session for a user and stores it in Redis.
// An existing session for the same user is invalidated first so the 7-day
// timer resets from the current login.
func CreateSession(uid string) (string, error) {
	InvalidateUserSessions(uid)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + uid

	if err := database.RedisClient.Set(ctx, sessionKey, uid, SessionDuration).Err(); err != nil {
		return "", err
	}

	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks if a session token is valid and returns the uid.
func ValidateSession(sessionToken string) (string, bool, error) {
	if sessionToken == "" {
		return "", false, nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	uid, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil || uid == "" {
		return "", false, nil
	}

	return uid, true, nil
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	uid, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && uid != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+uid)
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions invalidates all sessions for a user.
func InvalidateUserSessions(uid string) error {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + uid

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+sessionToken)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}

// IsLoginThrottled reports whether the account has exceeded the failed
// attempt budget.
func IsLoginThrottled(email string) bool {
	ctx := context.Background()
	count, err := database.RedisClient.Get(ctx, LoginAttemptKeyPrefix+email).Int()
	if err != nil {
		return false
	}
	return count >= MaxLoginAttempts
}

// RecordFailedLogin bumps the failure counter and refreshes its window.
func RecordFailedLogin(email string) error {
	ctx := context.Background()
	key := LoginAttemptKeyPrefix + email

	count, err := database.RedisClient.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	if count == 1 {
		database.RedisClient.Expire(ctx, key, LoginAttemptWindow)
	}
	return nil
}

// ClearFailedLogins resets the counter after a successful sign-in.
func ClearFailedLogins(email string) {
	database.RedisClient.Del(context.Background(), LoginAttemptKeyPrefix+email)
}
