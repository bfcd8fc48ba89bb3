package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

// DismissalStore persists per-user notice dismissals.
//
// A user's record may be written as a whole (read-modify-write). Concurrent
// dismissals of different keys by the same user can lose one of the writes;
// the lost notice is simply shown once more.
type DismissalStore interface {
	// GetDismissal returns when userID dismissed key. ok is false if never.
	GetDismissal(ctx context.Context, userID types.UserID, key string) (at time.Time, ok bool, err error)

	// GetDismissals returns the user's whole record. Unknown users get an empty record.
	GetDismissals(ctx context.Context, userID types.UserID) (model.DismissalRecord, error)

	// SetDismissed inserts or overwrites key with the current time
	SetDismissed(ctx context.Context, userID types.UserID, key string) error

	Close() error
}
