package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/secmon-lab/noticekit/pkg/utils/errutil"
	"github.com/secmon-lab/noticekit/pkg/utils/safe"
)

var (
	//go:embed assets/dismiss-notice.js
	dismissNoticeJS []byte

	//go:embed templates/admin.html
	templateFS embed.FS

	adminTemplate = template.Must(template.ParseFS(templateFS, "templates/admin.html"))
)

// scriptSources maps asset handles to the paths they are served from
var scriptSources = map[string]string{
	model.DismissNoticeScript: scriptPath,
}

type scriptTag struct {
	Handle  string
	Src     string
	AjaxURL string
}

type adminPage struct {
	Title   string
	Notices []template.HTML
	Scripts []scriptTag
}

// adminHandler renders every registered notice for the current actor and
// adds the client script once when any of them can be dismissed
func adminHandler(uc *usecase.NoticeUseCase, registry *model.NoticeRegistry, title, ajaxURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := model.ActorFromContext(ctx)

		var assets model.AssetQueue
		page := adminPage{
			Title:   title,
			Notices: uc.RenderAll(ctx, actor, registry.Collect(ctx, actor), &assets),
		}
		for _, handle := range assets.Handles() {
			src, ok := scriptSources[handle]
			if !ok {
				continue
			}
			page.Scripts = append(page.Scripts, scriptTag{Handle: handle, Src: src, AjaxURL: ajaxURL})
		}

		var buf bytes.Buffer
		if err := adminTemplate.ExecuteTemplate(&buf, "admin.html", page); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to render admin page"), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		safe.Write(ctx, w, buf.Bytes())
	}
}

func scriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	safe.Write(r.Context(), w, dismissNoticeJS)
}
