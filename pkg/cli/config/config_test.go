package config_test

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/cli/config"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/secmon-lab/noticekit/pkg/utils/logging"
)

func TestNonce_Configure(t *testing.T) {
	t.Run("configured key", func(t *testing.T) {
		key := strings.Repeat("n", usecase.MinNonceKeyLength)
		issuer, err := config.NewNonceForTest(key).Configure()
		gt.NoError(t, err).Required()

		other, err := config.NewNonceForTest(key).Configure()
		gt.NoError(t, err).Required()

		nonce, err := issuer.Create("42", usecase.DismissNonceAction)
		gt.NoError(t, err).Required()
		gt.NoError(t, other.Verify(nonce, "42", usecase.DismissNonceAction))
	})

	t.Run("random key when empty", func(t *testing.T) {
		a, err := config.NewNonceForTest("").Configure()
		gt.NoError(t, err).Required()
		b, err := config.NewNonceForTest("").Configure()
		gt.NoError(t, err).Required()

		nonce, err := a.Create("42", usecase.DismissNonceAction)
		gt.NoError(t, err).Required()
		gt.Value(t, b.Verify(nonce, "42", usecase.DismissNonceAction)).NotNil()
	})

	t.Run("short key", func(t *testing.T) {
		_, err := config.NewNonceForTest("short").Configure()
		gt.Value(t, err).NotNil()
	})
}

func TestActor_Configure(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		resolver, err := config.NewActorForTest("X-User", "").Configure()
		gt.NoError(t, err).Required()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-User", "42")
		actor := resolver.Resolve(req)
		gt.Value(t, actor).NotNil()
		gt.Value(t, actor.ID.String()).Equal("42")
	})

	t.Run("no auth", func(t *testing.T) {
		cfg := config.NewActorForTest("X-User", "dev")
		gt.Bool(t, cfg.IsNoAuthMode()).True()
		resolver, err := cfg.Configure()
		gt.NoError(t, err).Required()
		actor := resolver.Resolve(httptest.NewRequest("GET", "/", nil))
		gt.Value(t, actor.ID.String()).Equal("dev")
	})

	t.Run("missing header", func(t *testing.T) {
		resolver, err := config.NewActorForTest("", "").Configure()
		gt.NoError(t, err).Required()
		actor := resolver.Resolve(httptest.NewRequest("GET", "/", nil))
		gt.Bool(t, actor.IsAnonymous()).True()
	})

	t.Run("trusted proxies", func(t *testing.T) {
		resolver, err := config.NewActorWithProxiesForTest("X-User", "10.0.0.0/8", "192.0.2.7").Configure()
		gt.NoError(t, err).Required()

		testCases := []struct {
			name   string
			remote string
			want   bool
		}{
			{name: "inside CIDR", remote: "10.1.2.3:5555", want: true},
			{name: "single address", remote: "192.0.2.7:443", want: true},
			{name: "IPv4-mapped IPv6", remote: "[::ffff:10.0.0.1]:80", want: true},
			{name: "outside", remote: "192.0.2.8:443", want: false},
			{name: "unparsable remote", remote: "pipe", want: false},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest("GET", "/", nil)
				req.RemoteAddr = tc.remote
				req.Header.Set("X-User", "42")
				actor := resolver.Resolve(req)
				gt.Value(t, !actor.IsAnonymous()).Equal(tc.want)
			})
		}
	})

	t.Run("invalid trusted proxy", func(t *testing.T) {
		_, err := config.NewActorWithProxiesForTest("X-User", "not-an-ip").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestLogger_Configure(t *testing.T) {
	prev := logging.Default()
	defer logging.SetDefault(prev)

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.log")
		closer, err := config.NewLoggerForTest("info", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "user_id", "42")
		logging.Default().Debug("hidden")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains(`"msg":"hello"`)
		gt.Bool(t, strings.Contains(string(data), "hidden")).False()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "json", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})
}

func TestRedactFilter(t *testing.T) {
	type signer struct {
		SigningKey string
		Name       string
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: config.RedactFilter()}))
	logger.Info("configured", "signer", signer{SigningKey: "super-secret-key", Name: "main"})

	gt.Bool(t, strings.Contains(buf.String(), "super-secret-key")).False()
	gt.String(t, buf.String()).Contains("main")
}
