package config

import (
	"log/slog"
	"net/netip"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/noticekit/pkg/controller/http"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Actor holds CLI flags for resolving the logged in user of a request
type Actor struct {
	header         string
	trustedProxies []string
	noAuthUID      string
}

func (x *Actor) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "user-header",
			Category:    "Authentication",
			Usage:       "Request header carrying the user ID set by an authenticating proxy",
			Value:       httpctrl.DefaultUserHeader,
			Sources:     cli.EnvVars("NOTICEKIT_USER_HEADER"),
			Destination: &x.header,
		},
		&cli.StringSliceFlag{
			Name:        "trusted-proxy",
			Category:    "Authentication",
			Usage:       "Address or CIDR of the authenticating proxy; the user header is only accepted from these peers. Repeatable",
			Sources:     cli.EnvVars("NOTICEKIT_TRUSTED_PROXIES"),
			Destination: &x.trustedProxies,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Category:    "Authentication",
			Usage:       "Skip authentication and run every request as the specified user ID (development only). Example: --no-auth=42",
			Sources:     cli.EnvVars("NOTICEKIT_NO_AUTH"),
			Destination: &x.noAuthUID,
		},
	}
}

// IsNoAuthMode reports whether requests are attributed to a fixed user
func (x *Actor) IsNoAuthMode() bool {
	return x.noAuthUID != ""
}

func (x Actor) LogValue() slog.Value {
	if x.noAuthUID != "" {
		return slog.GroupValue(slog.String("no_auth", x.noAuthUID))
	}
	return slog.GroupValue(
		slog.String("header", x.header),
		slog.Any("trusted_proxies", x.trustedProxies),
	)
}

// parseTrustedProxies accepts both CIDRs and single addresses
func parseTrustedProxies(values []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(v); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid trusted proxy",
				goerr.V(OptionKey, "trusted-proxy"),
				goerr.V("value", v))
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Configure returns the resolver for the configured mode
func (x *Actor) Configure() (httpctrl.ActorResolver, error) {
	if x.IsNoAuthMode() {
		logging.Default().Warn("Running in no-auth mode (development only)", "user_id", x.noAuthUID)
		return httpctrl.NewStaticResolver(model.Actor{
			ID:   types.UserID(x.noAuthUID),
			Name: x.noAuthUID,
		}), nil
	}

	trusted, err := parseTrustedProxies(x.trustedProxies)
	if err != nil {
		return nil, err
	}
	if len(trusted) == 0 {
		logging.Default().Warn("No trusted proxy configured; the user header is accepted from any peer, so the server must only be reachable through the authenticating proxy",
			"header", x.header)
	}
	return httpctrl.NewHeaderResolver(x.header, trusted...), nil
}
