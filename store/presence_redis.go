package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mediahub/chat-center/utils"
)

const (
	presenceKeyPrefix = "chat:presence:"
	onlineSetKey      = "chat:online_users"
)

// RedisPresence tracks presence in Redis so the online-user set survives
// restarts and can be shared between replicas. Each user gets a key with a
// TTL equal to the online timeout plus membership in a shared online set;
// the set is cleaned lazily when it is read.
type RedisPresence struct {
	client  *redis.Client
	timeout time.Duration
	logger  *utils.Logger
}

func NewRedisPresence(client *redis.Client, timeout time.Duration, logger *utils.Logger) *RedisPresence {
	return &RedisPresence{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

func (p *RedisPresence) Touch(ctx context.Context, username string) error {
	if username == "" {
		return nil
	}

	key := presenceKeyPrefix + username

	pipe := p.client.Pipeline()
	pipe.Set(ctx, key, time.Now().Unix(), p.timeout)
	pipe.SAdd(ctx, onlineSetKey, username)
	// Keep the online set alive longer than any single member.
	pipe.Expire(ctx, onlineSetKey, p.timeout*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	return nil
}

func (p *RedisPresence) Online(ctx context.Context) ([]string, error) {
	usernames, err := p.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get online users: %w", err)
	}
	if len(usernames) == 0 {
		return []string{}, nil
	}

	pipe := p.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(usernames))
	for i, username := range usernames {
		cmds[i] = pipe.Exists(ctx, presenceKeyPrefix+username)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to check presence keys: %w", err)
	}

	online := make([]string, 0, len(usernames))
	var expired []string
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			online = append(online, usernames[i])
		} else {
			expired = append(expired, usernames[i])
		}
	}

	// Presence keys expire on their own; drop the stale set members here.
	if len(expired) > 0 {
		if err := p.client.SRem(ctx, onlineSetKey, expired).Err(); err != nil {
			p.logger.Warn("Failed to remove expired users from online set", "error", err)
		}
	}

	return online, nil
}

// NewRedisClient connects to Redis using a URL of the form
// redis://host:port/db and verifies the connection.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
