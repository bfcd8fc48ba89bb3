package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Nonce holds CLI flags for the dismissal nonce signer
type Nonce struct {
	key      string
	lifetime time.Duration
}

func (x *Nonce) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nonce-key",
			Category:    "Nonce",
			Usage:       "Signing key for dismissal nonces, at least 32 bytes. A random key is used when empty",
			Sources:     cli.EnvVars("NOTICEKIT_NONCE_KEY"),
			Destination: &x.key,
		},
		&cli.DurationFlag{
			Name:        "nonce-lifetime",
			Category:    "Nonce",
			Usage:       "How long a rendered dismissal nonce stays valid",
			Value:       usecase.DefaultNonceLifetime,
			Sources:     cli.EnvVars("NOTICEKIT_NONCE_LIFETIME"),
			Destination: &x.lifetime,
		},
	}
}

func (x Nonce) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("key_configured", x.key != ""),
		slog.Duration("lifetime", x.lifetime),
	)
}

// Configure builds the nonce issuer
func (x *Nonce) Configure() (*usecase.NonceIssuer, error) {
	key := []byte(x.key)
	if len(key) == 0 {
		generated, err := usecase.GenerateNonceKey()
		if err != nil {
			return nil, err
		}
		key = generated
		logging.Default().Warn("No nonce key configured, using a random key. Rendered nonces become invalid on restart")
	}

	issuer, err := usecase.NewNonceIssuer(key, usecase.WithNonceLifetime(x.lifetime))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure nonce issuer", goerr.V(OptionKey, "nonce-key"))
	}
	return issuer, nil
}
