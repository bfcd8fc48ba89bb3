package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/cli/config"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var noticesCfg config.Notices

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the notice file and print a summary",
		Flags:   noticesCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if noticesCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingOption, "--notices is required", goerr.V(config.OptionKey, "notices"))
			}

			file, err := noticesCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if _, err := file.Registry(); err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			printSummary(outputOf(c), file)
			logging.Default().Info("Configuration validation passed",
				"notice_count", len(file.Notices),
				"role_count", len(file.Roles),
			)
			return nil
		},
	}
}

func outputOf(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printSummary(w io.Writer, file *config.NoticeFile) {
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow, color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = ok.Fprintf(w, "✔ %d notice(s), %d role(s)\n", len(file.Notices), len(file.Roles))
	for i, n := range file.Notices {
		tracking := n.Tracking()
		_, _ = fmt.Fprintf(w, "  %s [%s] dismissible=%t tracking=%s",
			n.RegistryID(i), types.ParseSeverity(n.Severity), n.Dismissible, tracking)
		if n.Capability != "" {
			_, _ = dim.Fprintf(w, " capability=%s", n.Capability)
		}
		_, _ = fmt.Fprintln(w)

		if !n.Dismissible && !tracking.IsNone() {
			_, _ = warn.Fprintf(w, "    ! key is ignored because the notice is not dismissible\n")
		}
	}

	granted := file.GrantedCapabilities()
	for _, capability := range file.Capabilities() {
		if !granted[capability] {
			_, _ = warn.Fprintf(w, "! capability %q is not granted by any role; its notices are never shown\n", capability)
		}
	}
}
