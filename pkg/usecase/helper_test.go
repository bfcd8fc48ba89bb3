package usecase_test

import (
	"bytes"
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

var testNonceKey = bytes.Repeat([]byte("k"), 32)

// brokenStore fails every call
type brokenStore struct {
	writes int
}

var _ interfaces.DismissalStore = &brokenStore{}

func (s *brokenStore) GetDismissal(context.Context, types.UserID, string) (time.Time, bool, error) {
	return time.Time{}, false, goerr.New("store unavailable")
}

func (s *brokenStore) GetDismissals(context.Context, types.UserID) (model.DismissalRecord, error) {
	return nil, goerr.New("store unavailable")
}

func (s *brokenStore) SetDismissed(context.Context, types.UserID, string) error {
	s.writes++
	return goerr.New("store unavailable")
}

func (s *brokenStore) Close() error { return nil }

func contains(s, sub string) bool {
	return bytes.Contains([]byte(s), []byte(sub))
}

// spyStore counts calls made to the wrapped store
type spyStore struct {
	interfaces.DismissalStore
	reads  int
	writes int
}

func (s *spyStore) GetDismissal(ctx context.Context, userID types.UserID, key string) (time.Time, bool, error) {
	s.reads++
	return s.DismissalStore.GetDismissal(ctx, userID, key)
}

func (s *spyStore) SetDismissed(ctx context.Context, userID types.UserID, key string) error {
	s.writes++
	return s.DismissalStore.SetDismissed(ctx, userID, key)
}
