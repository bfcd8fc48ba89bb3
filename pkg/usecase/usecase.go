package usecase

import (
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
)

type UseCases struct {
	store     interfaces.DismissalStore
	gate      interfaces.AuthorizationGate
	nonce     *NonceIssuer
	formatter MessageFormatter
	registry  *model.NoticeRegistry

	Notice *NoticeUseCase
}

type Option func(*UseCases)

func WithAuthorizationGate(gate interfaces.AuthorizationGate) Option {
	return func(uc *UseCases) {
		uc.gate = gate
	}
}

func WithFormatter(formatter MessageFormatter) Option {
	return func(uc *UseCases) {
		uc.formatter = formatter
	}
}

func WithRegistry(registry *model.NoticeRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

func New(store interfaces.DismissalStore, nonce *NonceIssuer, opts ...Option) *UseCases {
	uc := &UseCases{
		store: store,
		nonce: nonce,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.registry == nil {
		uc.registry = model.NewNoticeRegistry()
	}

	uc.Notice = NewNoticeUseCase(store, uc.gate, nonce, uc.formatter)

	return uc
}

// Registry returns the notice providers rendered on the admin page
func (uc *UseCases) Registry() *model.NoticeRegistry {
	return uc.registry
}
