package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/immigration-ai/authkit/pkg/twofactor"
)

const (
	defaultKeyPrefix = "twofactor:failures:"
	defaultRetention = time.Hour
)

// Store implements twofactor.AttemptStore as a sliding failure window on
// Redis sorted sets, one set per account scored by attempt time.
//
// Only failed attempts are kept: the throttle never reads anything else, and
// the durable audit trail stays with the credential storage. Entries expire
// after the retention period, which must cover the service's throttle window.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	retention time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithKeyPrefix overrides the key prefix for failure sets.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithRetention sets how long failure entries are kept. Values shorter than
// the service's throttle window will undercount failures.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retention = d
		}
	}
}

// New creates a Store on top of an established Redis client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ twofactor.AttemptStore = (*Store)(nil)

func (s *Store) RecordAttempt(ctx context.Context, attempt twofactor.Attempt) error {
	if attempt.Success {
		// Nothing reads successes back from this store.
		return nil
	}

	key := s.key(attempt.AccountID)
	at := attempt.CreatedAt
	cutoff := strconv.FormatInt(at.Add(-s.retention).UnixNano(), 10)

	// Member carries the attempt type plus a nonce so simultaneous failures
	// never collapse into one entry.
	member := fmt.Sprintf("%s:%s", attempt.Type, uuid.NewString())

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixNano()), Member: member})
	pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
	pipe.Expire(ctx, key, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (s *Store) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	min := strconv.FormatInt(since.UnixNano(), 10)

	count, err := s.client.ZCount(ctx, s.key(accountID), min, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count recent failures: %w", err)
	}
	return int(count), nil
}

func (s *Store) key(accountID uuid.UUID) string {
	return s.keyPrefix + accountID.String()
}
