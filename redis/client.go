package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
	"time"
)

type DB int
type ReleaseLock func() error

// ErrNotFound is returned for keys that do not exist.
var ErrNotFound = errors.New("redis key not found")

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
	lockRetries    int
}

type Config struct {
	LockExpirationSeconds   int     `envconfig:"HMMTAG_REDIS_LOCK_EXPIRATION" default:"30"`
	LockRetries             int     `envconfig:"HMMTAG_REDIS_LOCK_RETRIES" default:"20"`
	Host                    string  `envconfig:"HMMTAG_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"HMMTAG_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"HMMTAG_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"HMMTAG_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"HMMTAG_REDIS_AUTH_PASSWORD" default:""`
	AuthRequired            bool    `envconfig:"HMMTAG_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"HMMTAG_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"HMMTAG_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Client{}, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateFailoverClient(&cfg, db)
	} else {
		client = CreateClient(&cfg, db)
	}
	return Wrap(client, time.Duration(cfg.LockExpirationSeconds)*time.Second, cfg.LockRetries), nil
}

// Wrap builds a Client around an existing connection.
func Wrap(client redis.UniversalClient, lockExpiration time.Duration, lockRetries int) Client {
	return Client{
		client:         client,
		lockExpiration: lockExpiration,
		lockRetries:    lockRetries,
	}
}

func CreateFailoverClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClient(&options)
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

func (client *Client) GetJSON(ctx context.Context, key string, v interface{}) error {
	b, err := client.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (client *Client) SaveJSON(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.client.Set(ctx, key, b, 0).Err()
}

// Lock holds "lock:<key>" until the returned function is called, retrying
// with a linear backoff while another holder has it.
func (client *Client) Lock(ctx context.Context, key string) (ReleaseLock, error) {
	locker := redislock.New(client.client)
	strategy := redislock.LimitRetry(redislock.LinearBackoff(time.Second), client.lockRetries)
	lock, err := locker.Obtain(ctx, fmt.Sprintf("lock:%s", key), client.lockExpiration, &redislock.Options{RetryStrategy: strategy})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(context.Background())
	}, nil
}

// Update reads the JSON document at key into v, applies update and writes
// it back while holding the key's lock.
func (client *Client) Update(ctx context.Context, key string, v interface{}, update func() error) (err error) {
	releaseLock, err := client.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()
	if err = client.GetJSON(ctx, key, v); err != nil {
		return err
	}
	if err = update(); err != nil {
		return err
	}
	return client.SaveJSON(ctx, key, v)
}

func (client *Client) Close() error {
	return client.client.Close()
}
