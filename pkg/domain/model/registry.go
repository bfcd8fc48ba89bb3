package model

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ErrDuplicateNoticeID is returned when a registry already has an entry with the same ID
var ErrDuplicateNoticeID = goerr.New("duplicate notice ID")

// NoticeProvider builds the notices to show an actor on one page assembly.
type NoticeProvider func(ctx context.Context, actor *Actor) []Notice

// NoticeRegistry is the ordered set of notice providers the admin page
// renders. It holds settings only and is built once at startup.
type NoticeRegistry struct {
	providers map[string]NoticeProvider
	order     []string
}

// NewNoticeRegistry creates an empty registry
func NewNoticeRegistry() *NoticeRegistry {
	return &NoticeRegistry{
		providers: make(map[string]NoticeProvider),
	}
}

// Register adds a provider under id
func (r *NoticeRegistry) Register(id string, provider NoticeProvider) error {
	if _, exists := r.providers[id]; exists {
		return goerr.Wrap(ErrDuplicateNoticeID, "failed to register notice provider", goerr.V("id", id))
	}
	r.providers[id] = provider
	r.order = append(r.order, id)
	return nil
}

// RegisterStatic adds a provider always returning notice
func (r *NoticeRegistry) RegisterStatic(id string, notice Notice) error {
	return r.Register(id, func(context.Context, *Actor) []Notice {
		return []Notice{notice}
	})
}

// IDs returns provider IDs in registration order
func (r *NoticeRegistry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Collect calls every provider in registration order
func (r *NoticeRegistry) Collect(ctx context.Context, actor *Actor) []Notice {
	var notices []Notice
	for _, id := range r.order {
		notices = append(notices, r.providers[id](ctx, actor)...)
	}
	return notices
}
