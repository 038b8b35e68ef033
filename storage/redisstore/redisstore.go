package redisstore

import (
	"context"
	"fmt"

	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/storage"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "planora"

var _ storage.Backend = (*Store)(nil)

// Store is a persistent backend on Redis. Keys are namespaced by a prefix
// and a profile name so several local profiles can share one server.
type Store struct {
	client    redis.UniversalClient
	namespace string
}

// New wraps an existing client. profile may be empty.
func New(client redis.UniversalClient, profile string) (*Store, error) {
	if client == nil {
		return nil, errors.New("[redisstore.New] client is required")
	}
	namespace := defaultPrefix
	if profile != "" {
		namespace = fmt.Sprintf("%s:%s", defaultPrefix, profile)
	}
	return &Store{client: client, namespace: namespace}, nil
}

// Dial connects to addr and checks the connection with a PING.
func Dial(ctx context.Context, opts *redis.Options, profile string) (*Store, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "[redisstore.Dial] ping")
	}
	return New(client, profile)
}

func (s *Store) key(key string) string {
	return fmt.Sprintf("%s:%s", s.namespace, key)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", clienterrors.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[redisstore.Get]")
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(s.client.Set(ctx, s.key(key), value, 0).Err(), "[redisstore.Set]")
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, s.key(key)).Err(), "[redisstore.Remove]")
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
