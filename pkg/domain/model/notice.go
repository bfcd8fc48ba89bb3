package model

import (
	"crypto/md5" // #nosec G501 - identity hash, not a security boundary
	"encoding/hex"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

// ErrEmptyMessage is returned when a notice has no message
var ErrEmptyMessage = goerr.New("notice message is required")

const derivedKeyHashLength = 10

type trackingKind int

const (
	trackingNone trackingKind = iota
	trackingAuto
	trackingExplicit
)

// DismissalTracking selects how a dismissible notice is identified in the
// dismissal store: not at all, by a key derived from its content, or by an
// explicit key.
type DismissalTracking struct {
	kind trackingKind
	key  string
}

// NoTracking disables persisted dismissal. The notice comes back on every render.
func NoTracking() DismissalTracking {
	return DismissalTracking{kind: trackingNone}
}

// AutoTracking derives the key from severity and message.
func AutoTracking() DismissalTracking {
	return DismissalTracking{kind: trackingAuto}
}

// ExplicitTracking uses key as is. An empty key means NoTracking.
func ExplicitTracking(key string) DismissalTracking {
	if key == "" {
		return NoTracking()
	}
	return DismissalTracking{kind: trackingExplicit, key: key}
}

func (t DismissalTracking) IsNone() bool { return t.kind == trackingNone }
func (t DismissalTracking) IsAuto() bool { return t.kind == trackingAuto }

func (t DismissalTracking) String() string {
	switch t.kind {
	case trackingAuto:
		return "auto"
	case trackingExplicit:
		return "explicit:" + t.key
	default:
		return "none"
	}
}

// DeriveDismissalKey returns "<severity>:<first 10 hex chars of md5(message)>".
// Two notices with the same severity and text share a key.
func DeriveDismissalKey(severity types.Severity, message string) string {
	sum := md5.Sum([]byte(message)) // #nosec G401
	return severity.String() + ":" + hex.EncodeToString(sum[:])[:derivedKeyHashLength]
}

// Notice is a configured admin banner. Values are immutable; every With*
// method returns an updated copy.
type Notice struct {
	message     string
	severity    types.Severity
	dismissible bool
	tracking    DismissalTracking
	capability  types.Capability
	alt         bool
	inline      bool
}

// NewNotice creates an info level, non-dismissible notice unless severity
// names another known level.
func NewNotice(message string, severity types.Severity) Notice {
	return Notice{
		message:  message,
		severity: types.ParseSeverity(severity.String()),
		tracking: NoTracking(),
	}
}

// WithDismissible toggles dismissibility and sets how dismissals are tracked.
// The tracking is kept on a non-dismissible notice but never consulted.
func (n Notice) WithDismissible(dismissible bool, tracking DismissalTracking) Notice {
	n.dismissible = dismissible
	n.tracking = tracking
	return n
}

// WithCapability hides the notice from actors lacking capability.
func (n Notice) WithCapability(capability types.Capability) Notice {
	n.capability = capability
	return n
}

// WithAltStyling adds the notice-alt class.
func (n Notice) WithAltStyling(alt bool) Notice {
	n.alt = alt
	return n
}

// WithInline adds the inline class so the host keeps the notice in place.
func (n Notice) WithInline(inline bool) Notice {
	n.inline = inline
	return n
}

func (n Notice) Message() string { return n.message }
func (n Notice) Severity() types.Severity { return n.severity }
func (n Notice) Dismissible() bool { return n.dismissible }
func (n Notice) Tracking() DismissalTracking { return n.tracking }
func (n Notice) Capability() types.Capability { return n.capability }
func (n Notice) RequiresCapability() bool { return n.capability != "" }
func (n Notice) AltStyling() bool { return n.alt }
func (n Notice) Inline() bool { return n.inline }

// DismissalKey resolves the tracking key. It reports false when the notice is
// not dismissible or has no tracking, so callers never touch dismissal state
// for such notices.
func (n Notice) DismissalKey() (string, bool) {
	if !n.dismissible {
		return "", false
	}
	switch n.tracking.kind {
	case trackingExplicit:
		return n.tracking.key, true
	case trackingAuto:
		return DeriveDismissalKey(n.severity, n.message), true
	default:
		return "", false
	}
}

// Classes returns the CSS classes of the wrapping element in render order.
func (n Notice) Classes() []string {
	classes := []string{"notice", "notice-" + n.severity.String()}
	if n.alt {
		classes = append(classes, "notice-alt")
	}
	if n.inline {
		classes = append(classes, "inline")
	}
	if n.dismissible {
		classes = append(classes, "is-dismissible")
	}
	return classes
}

// ClassAttr joins Classes with spaces.
func (n Notice) ClassAttr() string {
	return strings.Join(n.Classes(), " ")
}

// Validate checks that the notice can be rendered
func (n Notice) Validate() error {
	if strings.TrimSpace(n.message) == "" {
		return goerr.Wrap(ErrEmptyMessage, "invalid notice", goerr.V("severity", n.severity))
	}
	return nil
}
