package usecase

import (
	"context"

	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

// Role is a named set of capabilities
type Role struct {
	Name         string
	Capabilities []types.Capability
}

// RoleGate grants capabilities through roles assigned to users
type RoleGate struct {
	roles map[string]map[types.Capability]struct{}
	users map[types.UserID][]string
}

var _ interfaces.AuthorizationGate = &RoleGate{}

func NewRoleGate() *RoleGate {
	return &RoleGate{
		roles: make(map[string]map[types.Capability]struct{}),
		users: make(map[types.UserID][]string),
	}
}

// AddRole defines (or extends) a role
func (g *RoleGate) AddRole(role Role) {
	caps, ok := g.roles[role.Name]
	if !ok {
		caps = make(map[types.Capability]struct{})
		g.roles[role.Name] = caps
	}
	for _, c := range role.Capabilities {
		caps[c] = struct{}{}
	}
}

// Assign gives userID the named role
func (g *RoleGate) Assign(userID types.UserID, role string) {
	g.users[userID] = append(g.users[userID], role)
}

func (g *RoleGate) HasCapability(ctx context.Context, actor *model.Actor, capability types.Capability) bool {
	if actor.IsAnonymous() {
		return false
	}
	for _, role := range g.users[actor.ID] {
		if _, ok := g.roles[role][capability]; ok {
			return true
		}
	}
	return false
}

// GateFunc adapts a function to AuthorizationGate
type GateFunc func(ctx context.Context, actor *model.Actor, capability types.Capability) bool

func (f GateFunc) HasCapability(ctx context.Context, actor *model.Actor, capability types.Capability) bool {
	return f(ctx, actor, capability)
}
