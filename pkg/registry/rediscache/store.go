// Package rediscache implements registry.Cache on top of Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"domainintel/pkg/registry"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written by the store.
const KeyPrefix = "domainintel:registration:"

// Key returns the Redis key holding the registration of domain.
func Key(domain string) string {
	return KeyPrefix + domain
}

// Options defines the Redis connection.
type Options struct {
	Addr         string        // Redis address, e.g. "localhost:6379"
	Username     string        // Optional username
	Password     string        // Optional password
	DB           int           // Redis DB number
	DialTimeout  time.Duration // Dial timeout
	ReadTimeout  time.Duration // Read timeout
	WriteTimeout time.Duration // Write timeout
}

// Store caches registrations as JSON strings.
type Store struct {
	client redis.UniversalClient
}

// Ensure Store conforms to the registry.Cache interface at compile time.
var _ registry.Cache = (*Store)(nil)

// New creates a Store with its own client. No connection is made until the
// first command.
func New(opts Options) *Store {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}))
}

// NewFromClient wraps an existing client.
func NewFromClient(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Get implements registry.Cache. A missing key is a miss, not an error.
func (s *Store) Get(ctx context.Context, domain string) (*registry.Registration, error) {
	data, err := s.client.Get(ctx, Key(domain)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil //nolint: nilnil
		}

		return nil, errors.Wrap(err, "failed to get registration")
	}

	var reg registry.Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal registration")
	}

	return &reg, nil
}

// Set implements registry.Cache.
func (s *Store) Set(ctx context.Context, reg *registry.Registration, ttl time.Duration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal registration")
	}
	if err := s.client.Set(ctx, Key(reg.Domain), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save registration")
	}

	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to ping redis")
	}

	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close() //nolint: wrapcheck
}
