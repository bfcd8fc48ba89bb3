package firestore

import (
	"context"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const dismissalsCollection = "dismissed_notices"

// Firestore stores one document per user. The document holds the whole
// dismissal record and is rewritten on every dismissal.
type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	now              func() time.Time
}

var _ interfaces.DismissalStore = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// dismissalDoc is the Firestore persistence model
type dismissalDoc struct {
	UserID    string           `firestore:"user_id"`
	Notices   map[string]int64 `firestore:"notices"`
	UpdatedAt time.Time        `firestore:"updated_at"`
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) collection() *firestore.CollectionRef {
	if f.collectionPrefix != "" {
		return f.client.Collection(f.collectionPrefix + "_" + dismissalsCollection)
	}
	return f.client.Collection(dismissalsCollection)
}

// docID maps a user ID onto a valid document ID. Escaping removes "/", and
// the reserved "." / ".." / "__*__" forms get a "%" prefix, which escaping
// alone never emits before a non-hex character.
func docID(userID types.UserID) string {
	id := url.PathEscape(userID.String())
	if id == "." || id == ".." || strings.HasPrefix(id, "__") {
		return "%" + id
	}
	return id
}

func (f *Firestore) load(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	if userID == "" {
		return model.DismissalRecord{}, nil
	}

	doc, err := f.collection().Doc(docID(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.DismissalRecord{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get dismissal record", goerr.V("user_id", userID))
	}

	var d dismissalDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal dismissal record", goerr.V("user_id", userID))
	}

	return model.DismissalRecord(d.Notices).Clone(), nil
}

func (f *Firestore) GetDismissal(ctx context.Context, userID types.UserID, key string) (time.Time, bool, error) {
	record, err := f.load(ctx, userID)
	if err != nil {
		return time.Time{}, false, err
	}
	at, ok := record.DismissedAt(key)
	return at, ok, nil
}

func (f *Firestore) GetDismissals(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	return f.load(ctx, userID)
}

func (f *Firestore) SetDismissed(ctx context.Context, userID types.UserID, key string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if key == "" {
		return goerr.New("notice key is required", goerr.V("user_id", userID))
	}

	record, err := f.load(ctx, userID)
	if err != nil {
		return err
	}

	now := f.now()
	record.Set(key, now)

	doc := &dismissalDoc{
		UserID:    userID.String(),
		Notices:   record,
		UpdatedAt: now,
	}
	if _, err := f.collection().Doc(docID(userID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save dismissal record",
			goerr.V("user_id", userID),
			goerr.V("key", key),
		)
	}

	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
