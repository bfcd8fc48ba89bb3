package usecase

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

const (
	// DismissNoticeAction is the ajax action marker sent by the client script
	DismissNoticeAction = "stellarwp-dismiss-notice"

	// DismissNonceAction is the scope every dismissal nonce is bound to
	DismissNonceAction = "stellarwp-admin-notice-dismiss"

	DefaultNonceLifetime = 24 * time.Hour
	MinNonceKeyLength    = 32

	nonceActionClaim = "act"
)

// NonceIssuer mints and verifies anti-forgery tokens. A token is an HS256
// JWT bound to one user and one action scope, valid for a fixed lifetime.
type NonceIssuer struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

type NonceOption func(*NonceIssuer)

func WithNonceLifetime(d time.Duration) NonceOption {
	return func(x *NonceIssuer) {
		if d > 0 {
			x.lifetime = d
		}
	}
}

func WithNonceClock(now func() time.Time) NonceOption {
	return func(x *NonceIssuer) {
		x.now = now
	}
}

func NewNonceIssuer(key []byte, opts ...NonceOption) (*NonceIssuer, error) {
	if len(key) < MinNonceKeyLength {
		return nil, goerr.New("nonce key is too short",
			goerr.V("length", len(key)),
			goerr.V("min", MinNonceKeyLength),
		)
	}

	x := &NonceIssuer{
		key:      append([]byte(nil), key...),
		lifetime: DefaultNonceLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// GenerateNonceKey returns a random key suitable for NewNonceIssuer
func GenerateNonceKey() ([]byte, error) {
	key := make([]byte, MinNonceKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, goerr.Wrap(err, "failed to generate nonce key")
	}
	return key, nil
}

// Create mints a token for userID scoped to action
func (x *NonceIssuer) Create(userID types.UserID, action string) (string, error) {
	if userID == "" {
		return "", goerr.New("user ID is required for nonce")
	}

	now := x.now()
	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Subject(userID.String()).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(x.lifetime)).
		Claim(nonceActionClaim, action).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build nonce", goerr.V(UserIDKey, userID))
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, x.key))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign nonce", goerr.V(UserIDKey, userID))
	}
	return string(signed), nil
}

// Verify checks signature, lifetime, user and action of nonce
func (x *NonceIssuer) Verify(nonce string, userID types.UserID, action string) error {
	if nonce == "" || userID == "" {
		return goerr.New("nonce and user ID are required")
	}

	_, err := jwt.Parse([]byte(nonce),
		jwt.WithKey(jwa.HS256, x.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(x.now)),
		jwt.WithSubject(userID.String()),
		jwt.WithClaimValue(nonceActionClaim, action),
	)
	if err != nil {
		return goerr.Wrap(err, "invalid nonce", goerr.V(UserIDKey, userID), goerr.V("action", action))
	}
	return nil
}
