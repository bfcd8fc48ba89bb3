package interfaces

import (
	"context"

	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

// AuthorizationGate answers capability checks for the current actor
type AuthorizationGate interface {
	HasCapability(ctx context.Context, actor *model.Actor, capability types.Capability) bool
}
