package usecase

import (
	"bytes"
	"context"
	"errors"
	"html/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/utils/errutil"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
)

// MaxNoticeKeyLength bounds keys accepted from dismissal requests
const MaxNoticeKeyLength = 255

var noticeTemplate = template.Must(template.New("notice").Parse(
	`<div class="{{.Class}}"{{if .Key}} data-id="{{.Key}}" data-nonce="{{.Nonce}}"{{end}}>{{.Message}}</div>`,
))

type noticeView struct {
	Class   string
	Key     string
	Nonce   string
	Message template.HTML
}

// RenderResult is the outcome of rendering one notice. An empty Markup means
// the notice must not be shown. NeedsScript is set when the markup carries
// the data the client script reports back on dismissal.
type RenderResult struct {
	Markup      template.HTML
	NeedsScript bool
}

// IsEmpty reports whether nothing is to be displayed
func (r RenderResult) IsEmpty() bool {
	return r.Markup == ""
}

type NoticeUseCase struct {
	store     interfaces.DismissalStore
	gate      interfaces.AuthorizationGate
	nonce     *NonceIssuer
	formatter MessageFormatter
}

func NewNoticeUseCase(store interfaces.DismissalStore, gate interfaces.AuthorizationGate, nonce *NonceIssuer, formatter MessageFormatter) *NoticeUseCase {
	if formatter == nil {
		formatter = ParagraphFormatter{}
	}
	return &NoticeUseCase{
		store:     store,
		gate:      gate,
		nonce:     nonce,
		formatter: formatter,
	}
}

// Render decides whether notice is shown to actor and builds its markup.
// Checks run in order and stop at the first failing one: capability, then
// persisted dismissal. Failures are logged and never returned.
func (uc *NoticeUseCase) Render(ctx context.Context, actor *model.Actor, notice model.Notice) RenderResult {
	logger := logging.From(ctx)

	if err := notice.Validate(); err != nil {
		noticeSuppressedTotal.WithLabelValues(suppressedInvalid).Inc()
		logger.Warn("skip invalid notice", "error", err)
		return RenderResult{}
	}

	if notice.RequiresCapability() && !uc.hasCapability(ctx, actor, notice) {
		noticeSuppressedTotal.WithLabelValues(suppressedCapability).Inc()
		return RenderResult{}
	}

	key, tracked := notice.DismissalKey()
	if actor.IsAnonymous() {
		// Nothing can be recorded for an anonymous actor
		tracked = false
	}

	if tracked && uc.isDismissed(ctx, actor, key) {
		noticeSuppressedTotal.WithLabelValues(suppressedDismissed).Inc()
		return RenderResult{}
	}

	message, err := uc.formatter.Format(notice.Message())
	if err != nil {
		noticeSuppressedTotal.WithLabelValues(suppressedInvalid).Inc()
		errutil.Handle(ctx, goerr.Wrap(err, "failed to format notice", goerr.V("severity", notice.Severity())), "failed to render notice")
		return RenderResult{}
	}

	view := noticeView{
		Class:   notice.ClassAttr(),
		Message: message,
	}

	if tracked {
		nonce, err := uc.nonce.Create(actor.ID, DismissNonceAction)
		if err != nil {
			// The notice is still shown; its dismissal just will not persist
			errutil.Handle(ctx, err, "failed to create dismissal nonce")
		} else {
			view.Key = key
			view.Nonce = nonce
		}
	}

	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, view); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to execute notice template"), "failed to render notice")
		return RenderResult{}
	}

	noticeRenderedTotal.WithLabelValues(notice.Severity().String()).Inc()
	return RenderResult{
		Markup:      template.HTML(buf.String()), // #nosec G203 - produced by html/template
		NeedsScript: view.Key != "",
	}
}

// RenderAll renders notices in order, skipping hidden ones, and enqueues the
// client script on assets when any rendered notice needs it.
func (uc *NoticeUseCase) RenderAll(ctx context.Context, actor *model.Actor, notices []model.Notice, assets *model.AssetQueue) []template.HTML {
	var out []template.HTML
	for _, n := range notices {
		result := uc.Render(ctx, actor, n)
		if result.IsEmpty() {
			continue
		}
		if result.NeedsScript && assets != nil {
			assets.Enqueue(model.DismissNoticeScript)
		}
		out = append(out, result.Markup)
	}
	return out
}

// Dismiss validates a dismissal request for actor and records it.
func (uc *NoticeUseCase) Dismiss(ctx context.Context, actor *model.Actor, key, nonce string) error {
	if key == "" || nonce == "" {
		dismissalTotal.WithLabelValues("missing_fields").Inc()
		return goerr.Wrap(ErrMissingFields, "dismissal request is incomplete",
			goerr.V("has_key", key != ""),
			goerr.V("has_nonce", nonce != ""),
		)
	}
	if len(key) > MaxNoticeKeyLength {
		dismissalTotal.WithLabelValues("invalid_key").Inc()
		return goerr.Wrap(ErrInvalidKey, "notice key is too long", goerr.V("length", len(key)))
	}
	if actor.IsAnonymous() {
		dismissalTotal.WithLabelValues("not_logged_in").Inc()
		return goerr.Wrap(ErrNotLoggedIn, "dismissal requires a user", goerr.V(NoticeKeyKey, key))
	}

	if err := uc.nonce.Verify(nonce, actor.ID, DismissNonceAction); err != nil {
		dismissalTotal.WithLabelValues("bad_token").Inc()
		logging.From(ctx).Warn("rejected dismissal nonce",
			UserIDKey, actor.ID,
			NoticeKeyKey, key,
			"error", err,
		)
		return goerr.Wrap(ErrBadToken, "nonce verification failed",
			goerr.V(UserIDKey, actor.ID),
			goerr.V(NoticeKeyKey, key),
		)
	}

	if err := uc.store.SetDismissed(ctx, actor.ID, key); err != nil {
		dismissalTotal.WithLabelValues("store_error").Inc()
		errutil.Handle(ctx, err, "failed to persist dismissal")
		return goerr.Wrap(ErrPersistence, "store rejected dismissal",
			goerr.V(UserIDKey, actor.ID),
			goerr.V(NoticeKeyKey, key),
		)
	}

	dismissalTotal.WithLabelValues("ok").Inc()
	logging.From(ctx).Info("notice dismissed", UserIDKey, actor.ID, NoticeKeyKey, key)
	return nil
}

// Dismissals returns the actor's dismissal record
func (uc *NoticeUseCase) Dismissals(ctx context.Context, actor *model.Actor) (model.DismissalRecord, error) {
	if actor.IsAnonymous() {
		return nil, goerr.Wrap(ErrNotLoggedIn, "dismissal record requires a user")
	}
	record, err := uc.store.GetDismissals(ctx, actor.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get dismissals", goerr.V(UserIDKey, actor.ID))
	}
	return record, nil
}

// IsDismissed reports whether notice is currently dismissed for actor
func (uc *NoticeUseCase) IsDismissed(ctx context.Context, actor *model.Actor, notice model.Notice) bool {
	key, ok := notice.DismissalKey()
	if !ok || actor.IsAnonymous() {
		return false
	}
	return uc.isDismissed(ctx, actor, key)
}

func (uc *NoticeUseCase) hasCapability(ctx context.Context, actor *model.Actor, notice model.Notice) bool {
	if uc.gate == nil || actor.IsAnonymous() {
		return false
	}
	return uc.gate.HasCapability(ctx, actor, notice.Capability())
}

// isDismissed treats store errors as "not dismissed" so a notice is shown
// again rather than lost.
func (uc *NoticeUseCase) isDismissed(ctx context.Context, actor *model.Actor, key string) bool {
	_, ok, err := uc.store.GetDismissal(ctx, actor.ID, key)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to read dismissal",
			goerr.V(UserIDKey, actor.ID),
			goerr.V(NoticeKeyKey, key),
		), "failed to read dismissal state")
		return false
	}
	return ok
}

// IsClientError reports whether err was caused by the request rather than the server
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrBadToken) ||
		errors.Is(err, ErrNotLoggedIn)
}
