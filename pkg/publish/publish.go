// Package publish mirrors a store's effective entries into a Redis hash so
// processes without file access can read the same configuration.
package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/envfile"
	"github.com/platinummonkey/envfile/pkg/observability"
)

// UpdatesSuffix is appended to the hash key to name the channel that
// announces each publish. The message is the number of keys written.
const UpdatesSuffix = ":updates"

// NewClient connects to the Redis server at url and verifies it with a ping.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Publisher writes entries to one Redis hash.
type Publisher struct {
	client  *redis.Client
	key     string
	logger  logrus.FieldLogger
	metrics *observability.Metrics
}

// NewPublisher creates a publisher for the hash at key. The caller owns client.
func NewPublisher(client *redis.Client, key string, logger logrus.FieldLogger, metrics *observability.Metrics) *Publisher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Publisher{
		client:  client,
		key:     key,
		logger:  logger.WithField("redis_key", key),
		metrics: metrics,
	}
}

// Key returns the hash key.
func (p *Publisher) Key() string {
	return p.key
}

// Publish replaces the hash with the first occurrence of each key in entries
// and announces the update. The replace is a MULTI/EXEC transaction, so
// readers never see a mix of old and new fields. It returns the number of
// fields written.
func (p *Publisher) Publish(ctx context.Context, entries []envfile.Entry) (int, error) {
	start := time.Now()
	entries = envfile.FirstOccurrences(entries)

	fields := make([]interface{}, 0, len(entries)*2)
	for _, e := range entries {
		fields = append(fields, e.Key, e.Value)
	}

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, p.key, fields...)
		}
		pipe.Publish(ctx, p.key+UpdatesSuffix, strconv.Itoa(len(entries)))
		return nil
	})
	if err != nil {
		p.metrics.RecordPublish(observability.StatusFailure, time.Since(start))
		p.logger.WithError(err).Error("Failed to publish entries")
		return 0, fmt.Errorf("publish to %s: %w", p.key, err)
	}

	p.metrics.RecordPublish(observability.StatusSuccess, time.Since(start))
	p.logger.WithFields(logrus.Fields{
		"entries":  len(entries),
		"duration": time.Since(start),
	}).Info("Published entries")
	return len(entries), nil
}

// PublishStore publishes the store's effective entries.
func (p *Publisher) PublishStore(ctx context.Context, store *envfile.Store) (int, error) {
	return p.Publish(ctx, store.Effective())
}

// Fetch reads the published hash back.
func (p *Publisher) Fetch(ctx context.Context) (map[string]string, error) {
	values, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.key, err)
	}
	return values, nil
}
