package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/usecase"
)

func TestRoleGate(t *testing.T) {
	ctx := context.Background()
	gate := usecase.NewRoleGate()
	gate.AddRole(usecase.Role{Name: "editor", Capabilities: []types.Capability{"edit_posts"}})
	gate.AddRole(usecase.Role{Name: "administrator", Capabilities: []types.Capability{"edit_posts", "manage_options"}})
	gate.Assign("1", "administrator")
	gate.Assign("2", "editor")
	gate.Assign("3", "ghost-role")

	tests := []struct {
		name  string
		actor *model.Actor
		cap   types.Capability
		want  bool
	}{
		{name: "admin manage_options", actor: &model.Actor{ID: "1"}, cap: "manage_options", want: true},
		{name: "editor edit_posts", actor: &model.Actor{ID: "2"}, cap: "edit_posts", want: true},
		{name: "editor manage_options", actor: &model.Actor{ID: "2"}, cap: "manage_options", want: false},
		{name: "undefined role", actor: &model.Actor{ID: "3"}, cap: "edit_posts", want: false},
		{name: "unknown user", actor: &model.Actor{ID: "9"}, cap: "edit_posts", want: false},
		{name: "anonymous", actor: nil, cap: "edit_posts", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, gate.HasCapability(ctx, tt.actor, tt.cap)).Equal(tt.want)
		})
	}
}

func TestGateFunc(t *testing.T) {
	gate := usecase.GateFunc(func(_ context.Context, actor *model.Actor, c types.Capability) bool {
		return actor.ID == "root"
	})
	gt.Bool(t, gate.HasCapability(context.Background(), &model.Actor{ID: "root"}, "anything")).True()
	gt.Bool(t, gate.HasCapability(context.Background(), &model.Actor{ID: "42"}, "anything")).False()
}
