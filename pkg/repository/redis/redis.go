package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

const defaultKeyPrefix = "noticekit:dismissed"

// Redis keeps one hash per user: field = notice key, value = unix seconds.
// Writes touch a single field, so concurrent dismissals of different keys do
// not overwrite each other.
type Redis struct {
	client    goredis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

var _ interfaces.DismissalStore = &Redis{}

type Option func(*Redis)

func WithKeyPrefix(prefix string) Option {
	return func(r *Redis) {
		r.keyPrefix = prefix
	}
}

// New connects to addr and checks the connection with PING
func New(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr), goerr.V("db", db))
	}
	return NewWithClient(client, opts...), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client goredis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(userID types.UserID) string {
	return r.keyPrefix + ":" + userID.String()
}

func (r *Redis) GetDismissal(ctx context.Context, userID types.UserID, key string) (time.Time, bool, error) {
	if userID == "" {
		return time.Time{}, false, nil
	}

	v, err := r.client.HGet(ctx, r.key(userID), key).Result()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, goerr.Wrap(err, "failed to get dismissal", goerr.V("user_id", userID), goerr.V("key", key))
	}

	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, goerr.Wrap(err, "invalid dismissal timestamp", goerr.V("user_id", userID), goerr.V("value", v))
	}
	return time.Unix(ts, 0), true, nil
}

func (r *Redis) GetDismissals(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	record := model.DismissalRecord{}
	if userID == "" {
		return record, nil
	}

	values, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get dismissals", goerr.V("user_id", userID))
	}

	for k, v := range values {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid dismissal timestamp", goerr.V("user_id", userID), goerr.V("key", k))
		}
		record[k] = ts
	}
	return record, nil
}

func (r *Redis) SetDismissed(ctx context.Context, userID types.UserID, key string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if key == "" {
		return goerr.New("notice key is required", goerr.V("user_id", userID))
	}

	ts := strconv.FormatInt(r.now().Unix(), 10)
	if err := r.client.HSet(ctx, r.key(userID), key, ts).Err(); err != nil {
		return goerr.Wrap(err, "failed to save dismissal", goerr.V("user_id", userID), goerr.V("key", key))
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
