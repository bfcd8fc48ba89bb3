package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/cli/config"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdDismissals() *cli.Command {
	var userID string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User ID whose dismissal record is printed",
			Required:    true,
			Destination: &userID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "dismissals",
		Aliases: []string{"d"},
		Usage:   "Print the notices a user has dismissed",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			record, err := store.GetDismissals(ctx, types.UserID(userID))
			if err != nil {
				return goerr.Wrap(err, "failed to get dismissals", goerr.V("user_id", userID))
			}

			printDismissals(c, userID, record)
			return nil
		},
	}
}

func printDismissals(c *cli.Command, userID string, record model.DismissalRecord) {
	w := outputOf(c)
	_, _ = fmt.Fprintf(w, "%s of user %s: %d\n", model.DismissedNoticesAttribute, userID, len(record))

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		at, _ := record.DismissedAt(k)
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", k, at.UTC().Format(time.RFC3339))
	}
}
