package http

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
)

// DefaultUserHeader is the header a trusted proxy puts the logged in user in
const DefaultUserHeader = "X-Forwarded-User"

// ActorResolver returns the user a request was made by, or nil when the
// request carries no session.
type ActorResolver interface {
	Resolve(r *http.Request) *model.Actor
}

// HeaderResolver reads the user ID from a header set by an authenticating
// reverse proxy. Any client that reaches the server directly can set the
// header too, so either keep the server behind the proxy or pass the proxy
// addresses as trusted: the header is then ignored on connections from
// anywhere else.
type HeaderResolver struct {
	header  string
	trusted []netip.Prefix
}

func NewHeaderResolver(header string, trusted ...netip.Prefix) *HeaderResolver {
	if header == "" {
		header = DefaultUserHeader
	}
	return &HeaderResolver{header: header, trusted: trusted}
}

func (h *HeaderResolver) Resolve(r *http.Request) *model.Actor {
	id := strings.TrimSpace(r.Header.Get(h.header))
	if id == "" {
		return nil
	}
	if !h.fromTrustedProxy(r) {
		logging.From(r.Context()).Warn("ignoring user header from untrusted peer",
			"header", h.header,
			"remote", r.RemoteAddr,
		)
		return nil
	}
	return &model.Actor{ID: types.UserID(id), Name: id}
}

func (h *HeaderResolver) fromTrustedProxy(r *http.Request) bool {
	if len(h.trusted) == 0 {
		return true
	}

	var addr netip.Addr
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		addr = ap.Addr()
	} else if a, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		addr = a
	} else {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range h.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// StaticResolver attributes every request to one fixed user. It is meant for
// local development without an authenticating proxy.
type StaticResolver struct {
	actor model.Actor
}

func NewStaticResolver(actor model.Actor) *StaticResolver {
	return &StaticResolver{actor: actor}
}

func (s *StaticResolver) Resolve(_ *http.Request) *model.Actor {
	actor := s.actor
	return &actor
}

// actorMiddleware stores the resolved actor and a request scoped logger in
// the request context
func actorMiddleware(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			actor := resolver.Resolve(r)
			if actor.IsAnonymous() {
				next.ServeHTTP(w, r)
				return
			}

			ctx = model.ContextWithActor(ctx, actor)
			ctx = logging.With(ctx, logging.From(ctx).With("actor", actor.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
