package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/secmon-lab/noticekit/pkg/utils/errutil"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
)

const maxAjaxBodySize = 64 << 10

// ajaxResponse follows the {success, data} envelope the client script expects
type ajaxResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

func writeAjaxError(ctx context.Context, w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(ctx, w, statusCode, ajaxResponse{Success: false, Data: msg})
}

// ajaxHandler dispatches form posts to the handler registered for the
// request's action field
func ajaxHandler(actions map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAjaxBodySize)
		if err := r.ParseForm(); err != nil {
			logging.From(r.Context()).Warn("failed to parse ajax request", "error", err)
			writeAjaxError(r.Context(), w, http.StatusBadRequest, "invalid request")
			return
		}

		action := r.PostForm.Get("action")
		if action == "" {
			action = r.URL.Query().Get("action")
		}

		handler, ok := actions[action]
		if !ok {
			writeAjaxError(r.Context(), w, http.StatusBadRequest, "unknown action")
			return
		}
		handler(w, r)
	}
}

// dismissNoticeHandler records a notice dismissal for the current actor
func dismissNoticeHandler(uc *usecase.NoticeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := model.ActorFromContext(ctx)

		err := uc.Dismiss(ctx, actor, r.PostForm.Get("notice"), r.PostForm.Get("_wpnonce"))
		if err != nil {
			status, msg := dismissFailure(err)
			if status >= http.StatusInternalServerError {
				errutil.Handle(ctx, err, "dismissal failed")
			}
			writeAjaxError(ctx, w, status, msg)
			return
		}

		writeJSON(ctx, w, http.StatusOK, ajaxResponse{Success: true})
	}
}

// dismissFailure maps a dismissal error to the status and message sent to the
// client. A store failure is reported in the body with 200 because the
// notice is already gone from the page.
func dismissFailure(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		return http.StatusBadRequest, usecase.ErrMissingFields.Error()
	case errors.Is(err, usecase.ErrInvalidKey):
		return http.StatusBadRequest, usecase.ErrInvalidKey.Error()
	case errors.Is(err, usecase.ErrNotLoggedIn):
		return http.StatusUnauthorized, usecase.ErrNotLoggedIn.Error()
	case errors.Is(err, usecase.ErrBadToken):
		return http.StatusForbidden, usecase.ErrBadToken.Error()
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusOK, usecase.ErrPersistence.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// dismissedHandler returns the current actor's dismissal record
func dismissedHandler(uc *usecase.NoticeUseCase) http.HandlerFunc {
	type response struct {
		UserID    string                `json:"user_id"`
		Attribute string                `json:"attribute"`
		Notices   model.DismissalRecord `json:"notices"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := model.ActorFromContext(ctx)
		if actor.IsAnonymous() {
			writeAjaxError(ctx, w, http.StatusUnauthorized, usecase.ErrNotLoggedIn.Error())
			return
		}

		record, err := uc.Dismissals(ctx, actor)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to load dismissal record"), http.StatusInternalServerError)
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			UserID:    actor.ID.String(),
			Attribute: model.DismissedNoticesAttribute,
			Notices:   record.Clone(),
		})
	}
}
