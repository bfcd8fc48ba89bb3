package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/repository/cloudstorage"
	"github.com/secmon-lab/noticekit/pkg/repository/firestore"
	"github.com/secmon-lab/noticekit/pkg/repository/memory"
	"github.com/secmon-lab/noticekit/pkg/repository/redis"
	"github.com/secmon-lab/noticekit/pkg/repository/sqlite"
)

// uniqueUser avoids collisions between runs against shared backends
func uniqueUser(name string) types.UserID {
	return types.UserID(fmt.Sprintf("%s-%d", name, time.Now().UnixNano()))
}

func runDismissalStoreTest(t *testing.T, newStore func(t *testing.T) interfaces.DismissalStore) {
	t.Helper()

	t.Run("unknown user has no dismissals", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		user := uniqueUser("nobody")

		_, ok, err := store.GetDismissal(ctx, user, "update-key")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()

		record, err := store.GetDismissals(ctx, user)
		gt.NoError(t, err).Required()
		gt.Value(t, len(record)).Equal(0)
	})

	t.Run("SetDismissed then GetDismissal", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		user := uniqueUser("u42")
		before := time.Now().Add(-time.Second)

		gt.NoError(t, store.SetDismissed(ctx, user, "update-key")).Required()

		at, ok, err := store.GetDismissal(ctx, user, "update-key")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.Bool(t, at.After(before)).True()

		_, ok, err = store.GetDismissal(ctx, user, "other-key")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("dismissal is per user", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		u42 := uniqueUser("u42")
		u43 := uniqueUser("u43")

		gt.NoError(t, store.SetDismissed(ctx, u42, "update-key")).Required()

		_, ok, err := store.GetDismissal(ctx, u43, "update-key")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("user IDs with path separators stay distinct", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		plain := uniqueUser("u42")
		tricky := types.UserID("x/../" + plain.String())

		gt.NoError(t, store.SetDismissed(ctx, tricky, "update-key")).Required()

		_, ok, err := store.GetDismissal(ctx, plain, "update-key")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()

		_, ok, err = store.GetDismissal(ctx, tricky, "update-key")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
	})

	t.Run("SetDismissed is idempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		user := uniqueUser("idem")

		gt.NoError(t, store.SetDismissed(ctx, user, "k")).Required()
		gt.NoError(t, store.SetDismissed(ctx, user, "k")).Required()

		_, ok, err := store.GetDismissal(ctx, user, "k")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		record, err := store.GetDismissals(ctx, user)
		gt.NoError(t, err).Required()
		gt.Value(t, len(record)).Equal(1)
	})

	t.Run("record keeps every key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		user := uniqueUser("multi")

		keys := []string{"update-key", "warning:0123456789", "with.dots/and:colons"}
		for _, k := range keys {
			gt.NoError(t, store.SetDismissed(ctx, user, k)).Required()
		}

		record, err := store.GetDismissals(ctx, user)
		gt.NoError(t, err).Required()
		gt.Value(t, len(record)).Equal(len(keys))
		for _, k := range keys {
			gt.Bool(t, record.Has(k)).True()
		}
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		user := uniqueUser("copy")

		gt.NoError(t, store.SetDismissed(ctx, user, "k")).Required()
		record, err := store.GetDismissals(ctx, user)
		gt.NoError(t, err).Required()
		record.Set("injected", time.Now())

		_, ok, err := store.GetDismissal(ctx, user, "injected")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("rejects empty user or key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.Value(t, store.SetDismissed(ctx, "", "k")).NotNil()
		gt.Value(t, store.SetDismissed(ctx, uniqueUser("empty"), "")).NotNil()
	})
}

func TestMemoryDismissalStore(t *testing.T) {
	runDismissalStoreTest(t, func(t *testing.T) interfaces.DismissalStore {
		return memory.New()
	})

	t.Run("concurrent dismissals of different keys", func(t *testing.T) {
		store := memory.New()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.SetDismissed(ctx, "42", "key-"+strconv.Itoa(i))
			}()
		}
		wg.Wait()

		record, err := store.GetDismissals(ctx, "42")
		gt.NoError(t, err).Required()
		gt.Value(t, len(record)).Equal(20)
	})

	t.Run("dismissing again refreshes the timestamp", func(t *testing.T) {
		var mu sync.Mutex
		now := time.Unix(1000, 0)
		store := memory.New(memory.WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}))
		ctx := context.Background()

		gt.NoError(t, store.SetDismissed(ctx, "42", "k")).Required()
		at, ok, err := store.GetDismissal(ctx, "42", "k")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.Value(t, at.Unix()).Equal(int64(1000))

		mu.Lock()
		now = time.Unix(2000, 0)
		mu.Unlock()

		gt.NoError(t, store.SetDismissed(ctx, "42", "k")).Required()
		at, ok, err = store.GetDismissal(ctx, "42", "k")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.Value(t, at.Unix()).Equal(int64(2000))

		record, err := store.GetDismissals(ctx, "42")
		gt.NoError(t, err).Required()
		gt.Value(t, record["k"]).Equal(int64(2000))
	})

	t.Run("clock", func(t *testing.T) {
		fixed := time.Unix(1700000000, 0)
		store := memory.New(memory.WithClock(func() time.Time { return fixed }))
		gt.NoError(t, store.SetDismissed(context.Background(), "42", "k")).Required()

		at, ok, err := store.GetDismissal(context.Background(), "42", "k")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
		gt.Value(t, at.Unix()).Equal(fixed.Unix())
	})
}

func TestSQLiteDismissalStore(t *testing.T) {
	runDismissalStoreTest(t, func(t *testing.T) interfaces.DismissalStore {
		t.Helper()
		store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "notices.db"))
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestRedisDismissalStore(t *testing.T) {
	runDismissalStoreTest(t, func(t *testing.T) interfaces.DismissalStore {
		t.Helper()

		addr := os.Getenv("TEST_REDIS_ADDR")
		if addr == "" {
			t.Skip("TEST_REDIS_ADDR not set")
		}

		store, err := redis.New(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"), 0,
			redis.WithKeyPrefix(fmt.Sprintf("test:%d", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestFirestoreDismissalStore(t *testing.T) {
	runDismissalStoreTest(t, func(t *testing.T) interfaces.DismissalStore {
		t.Helper()

		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
		}

		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
		if databaseID == "" {
			t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
		}

		store, err := firestore.New(context.Background(), projectID, databaseID,
			firestore.WithCollectionPrefix(fmt.Sprintf("test_%d", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestCloudStorageDismissalStore(t *testing.T) {
	runDismissalStoreTest(t, func(t *testing.T) interfaces.DismissalStore {
		t.Helper()

		bucket := os.Getenv("TEST_CLOUD_STORAGE_BUCKET")
		if bucket == "" {
			t.Skip("TEST_CLOUD_STORAGE_BUCKET not set")
		}

		store, err := cloudstorage.New(context.Background(), bucket,
			cloudstorage.WithPrefix(fmt.Sprintf("test/%d", time.Now().UnixNano())),
		)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}
