package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/repository/cloudstorage"
	"github.com/secmon-lab/noticekit/pkg/repository/firestore"
	"github.com/secmon-lab/noticekit/pkg/repository/memory"
	"github.com/secmon-lab/noticekit/pkg/repository/redis"
	"github.com/secmon-lab/noticekit/pkg/repository/sqlite"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendStorage   = "storage"
	BackendRedis     = "redis"
	BackendSQLite    = "sqlite"
)

// Repository holds CLI flags for dismissal store configuration
type Repository struct {
	backend string

	projectID        string
	databaseID       string
	collectionPrefix string

	bucket        string
	storagePrefix string

	redisAddr     string
	redisPassword string
	redisDB       int

	sqlitePath        string
	sqliteBusyTimeout time.Duration
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Category:    "Repository",
			Usage:       "Dismissal store backend (memory, firestore, storage, redis or sqlite)",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("NOTICEKIT_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Repository",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("NOTICEKIT_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Repository",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("NOTICEKIT_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Category:    "Repository",
			Usage:       "Prefix for the Firestore collection name",
			Sources:     cli.EnvVars("NOTICEKIT_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Category:    "Repository",
			Usage:       "Cloud Storage bucket (required when using storage backend)",
			Sources:     cli.EnvVars("NOTICEKIT_STORAGE_BUCKET"),
			Destination: &r.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Category:    "Repository",
			Usage:       "Object name prefix in the Cloud Storage bucket",
			Sources:     cli.EnvVars("NOTICEKIT_STORAGE_PREFIX"),
			Destination: &r.storagePrefix,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Category:    "Repository",
			Usage:       "Redis address host:port (required when using redis backend)",
			Sources:     cli.EnvVars("NOTICEKIT_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Category:    "Repository",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("NOTICEKIT_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Category:    "Repository",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("NOTICEKIT_REDIS_DB"),
			Destination: &r.redisDB,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Category:    "Repository",
			Usage:       "SQLite database file (required when using sqlite backend)",
			Value:       "noticekit.db",
			Sources:     cli.EnvVars("NOTICEKIT_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.DurationFlag{
			Name:        "sqlite-busy-timeout",
			Category:    "Repository",
			Usage:       "How long SQLite waits on a locked database",
			Value:       5 * time.Second,
			Sources:     cli.EnvVars("NOTICEKIT_SQLITE_BUSY_TIMEOUT"),
			Destination: &r.sqliteBusyTimeout,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

func (r Repository) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", r.backend)}
	switch r.backend {
	case BackendFirestore:
		attrs = append(attrs, slog.String("project_id", r.projectID), slog.String("database_id", r.databaseID))
	case BackendStorage:
		attrs = append(attrs, slog.String("bucket", r.bucket))
	case BackendRedis:
		attrs = append(attrs, slog.String("addr", r.redisAddr), slog.Int("db", r.redisDB))
	case BackendSQLite:
		attrs = append(attrs, slog.String("path", r.sqlitePath))
	}
	return slog.GroupValue(attrs...)
}

// Configure initializes and returns a dismissal store based on the configured backend.
// The caller is responsible for calling Close() on the returned store.
func (r *Repository) Configure(ctx context.Context) (interfaces.DismissalStore, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingOption, "firestore-project-id is required when using firestore backend",
				goerr.V(OptionKey, "firestore-project-id"))
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendStorage:
		if r.bucket == "" {
			return nil, goerr.Wrap(ErrMissingOption, "storage-bucket is required when using storage backend",
				goerr.V(OptionKey, "storage-bucket"))
		}
		var opts []cloudstorage.Option
		if r.storagePrefix != "" {
			opts = append(opts, cloudstorage.WithPrefix(r.storagePrefix))
		}
		repo, err := cloudstorage.New(ctx, r.bucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize cloud storage repository")
		}
		logging.Default().Info("Using Cloud Storage repository", "bucket", r.bucket)
		return repo, nil

	case BackendRedis:
		if r.redisAddr == "" {
			return nil, goerr.Wrap(ErrMissingOption, "redis-addr is required when using redis backend",
				goerr.V(OptionKey, "redis-addr"))
		}
		repo, err := redis.New(ctx, r.redisAddr, r.redisPassword, r.redisDB)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "addr", r.redisAddr, "db", r.redisDB)
		return repo, nil

	case BackendSQLite:
		if r.sqlitePath == "" {
			return nil, goerr.Wrap(ErrMissingOption, "sqlite-path is required when using sqlite backend",
				goerr.V(OptionKey, "sqlite-path"))
		}
		repo, err := sqlite.New(ctx, r.sqlitePath, sqlite.WithBusyTimeout(r.sqliteBusyTimeout))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unsupported repository backend", goerr.V(BackendKey, r.backend))
	}
}
