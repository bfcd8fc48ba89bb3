package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/cli/config"
	httpctrl "github.com/secmon-lab/noticekit/pkg/controller/http"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var title string
	var ajaxURL string
	var enableMetrics bool
	var repoCfg config.Repository
	var nonceCfg config.Nonce
	var noticesCfg config.Notices
	var actorCfg config.Actor

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("NOTICEKIT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Title of the admin page",
			Value:       "Dashboard",
			Sources:     cli.EnvVars("NOTICEKIT_TITLE"),
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "ajax-url",
			Usage:       "URL the client script posts dismissals to, when served behind a path prefix",
			Value:       httpctrl.AjaxPath,
			Sources:     cli.EnvVars("NOTICEKIT_AJAX_URL"),
			Destination: &ajaxURL,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("NOTICEKIT_METRICS"),
			Destination: &enableMetrics,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, nonceCfg.Flags()...)
	flags = append(flags, noticesCfg.Flags()...)
	flags = append(flags, actorCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			noticeFile, err := noticesCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load notices")
			}
			registry, err := noticeFile.Registry()
			if err != nil {
				return goerr.Wrap(err, "failed to build notice registry")
			}

			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			issuer, err := nonceCfg.Configure()
			if err != nil {
				return err
			}

			resolver, err := actorCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(store, issuer,
				usecase.WithAuthorizationGate(noticeFile.RoleGate()),
				usecase.WithRegistry(registry),
			)

			handler := httpctrl.New(uc,
				httpctrl.WithActorResolver(resolver),
				httpctrl.WithTitle(title),
				httpctrl.WithAjaxURL(ajaxURL),
				httpctrl.WithMetrics(enableMetrics),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"notices", len(registry.IDs()),
					"repository", repoCfg,
					"nonce", nonceCfg,
					"actor", actorCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return g.Wait()
		},
	}
}
