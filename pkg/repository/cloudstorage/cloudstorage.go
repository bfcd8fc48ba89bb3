package cloudstorage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/utils/safe"
)

const defaultPrefix = "dismissed_notices"

// CloudStorage keeps each user's record as a JSON object
// "<prefix>/<user>.json" in a bucket. The user ID is path-escaped so it
// always names a single object directly under the prefix.
type CloudStorage struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

var _ interfaces.DismissalStore = &CloudStorage{}

type Option func(*CloudStorage)

func WithPrefix(prefix string) Option {
	return func(s *CloudStorage) {
		s.prefix = prefix
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*CloudStorage, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cloud storage client", goerr.V("bucket", bucket))
	}

	s := &CloudStorage{
		client: client,
		bucket: bucket,
		prefix: defaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *CloudStorage) object(userID types.UserID) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(objectName(s.prefix, userID))
}

func objectName(prefix string, userID types.UserID) string {
	return path.Join(prefix, url.PathEscape(userID.String())+".json")
}

func (s *CloudStorage) load(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	if userID == "" {
		return model.DismissalRecord{}, nil
	}

	r, err := s.object(userID).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return model.DismissalRecord{}, nil
		}
		return nil, goerr.Wrap(err, "failed to open dismissal record", goerr.V("user_id", userID))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read dismissal record", goerr.V("user_id", userID))
	}

	record := model.DismissalRecord{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, goerr.Wrap(err, "failed to parse dismissal record", goerr.V("user_id", userID))
	}
	return record, nil
}

func (s *CloudStorage) GetDismissal(ctx context.Context, userID types.UserID, key string) (time.Time, bool, error) {
	record, err := s.load(ctx, userID)
	if err != nil {
		return time.Time{}, false, err
	}
	at, ok := record.DismissedAt(key)
	return at, ok, nil
}

func (s *CloudStorage) GetDismissals(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	return s.load(ctx, userID)
}

func (s *CloudStorage) SetDismissed(ctx context.Context, userID types.UserID, key string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if key == "" {
		return goerr.New("notice key is required", goerr.V("user_id", userID))
	}

	record, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	record.Set(key, s.now())

	data, err := json.Marshal(record)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal dismissal record", goerr.V("user_id", userID))
	}

	w := s.object(userID).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write dismissal record", goerr.V("user_id", userID))
	}
	// Close commits the upload
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit dismissal record",
			goerr.V("user_id", userID),
			goerr.V("key", key),
		)
	}
	return nil
}

func (s *CloudStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
