package controller

import (
	"context"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// GroupControllerModel shows or edits a group.
type GroupControllerModel struct {
	log     logrus.FieldLogger
	service GroupService
	group   *model.GroupReceiver
	mode    model.ControllerModelMode

	avatarController *AvatarControllerModel
	onRemoved        onRemoved

	subject string
	Name    string
	Members []string
}

// NewGroup creates the controller for group. A missing group or service
// is logged and yields a controller that is never valid.
func NewGroup(opts Options, mode model.ControllerModelMode, group *model.GroupReceiver) *GroupControllerModel {
	g := &GroupControllerModel{
		log:     opts.logger("GroupControllerModel"),
		service: opts.Service,
		group:   group,
		mode:    mode,
	}
	if !g.ready() {
		g.log.Error("Missing group or service")
		return g
	}
	t := opts.translator()

	switch mode {
	case model.ModeView:
		g.subject = group.Name
	case model.ModeEdit:
		g.subject = editSubject(t, group.Name)
		g.Name = group.Name
		g.Members = append([]string(nil), group.Members...)
		g.avatarController = NewAvatarControllerModel(g.log, group.Avatar)
	default:
		g.log.Errorf("Invalid controller model mode: %s", mode)
	}
	return g
}

func (g *GroupControllerModel) Kind() model.ReceiverType { return model.ReceiverGroup }

func (g *GroupControllerModel) Mode() model.ControllerModelMode { return g.mode }

func (g *GroupControllerModel) Subject() string { return g.subject }

// Avatar returns the avatar controller, nil outside of edit mode.
func (g *GroupControllerModel) Avatar() *AvatarControllerModel { return g.avatarController }

func (g *GroupControllerModel) ready() bool {
	return g.group != nil && g.service != nil
}

// IsValid reports whether the group is still known and has not been left
// after it was disabled.
func (g *GroupControllerModel) IsValid() bool {
	if !g.ready() {
		return false
	}
	current, ok := g.service.Group(g.group.ID)
	if !ok {
		return false
	}
	if !current.Disabled {
		return true
	}
	me := g.service.Me()
	if me == nil {
		return false
	}
	for _, member := range current.Members {
		if member == me.ID {
			return true
		}
	}
	return false
}

// CanChat is false for disabled groups.
func (g *GroupControllerModel) CanChat() bool { return g.ready() && !g.group.Disabled }

// CanEdit is true for enabled groups that allow any change.
func (g *GroupControllerModel) CanEdit() bool {
	if !g.ready() {
		return false
	}
	access := g.group.Access
	return !g.group.Disabled && (access.CanChangeName || access.CanChangeMembers || access.CanChangeAvatar)
}

func (g *GroupControllerModel) SetOnRemoved(fn func(receiverID string)) {
	if g.group == nil {
		return
	}
	g.onRemoved.set(g.service, g.group.ID, fn)
}

// Save submits name, members and avatar in edit mode.
func (g *GroupControllerModel) Save(ctx context.Context) (model.Receiver, error) {
	if g.mode != model.ModeEdit || g.avatarController == nil {
		g.log.Error("Not allowed to save group: Invalid mode")
		return nil, nil
	}
	name := g.Name
	updated, err := g.service.ModifyGroup(ctx, g.group.ID, &name, g.Members, g.avatarController.GetAvatar())
	if err != nil {
		return nil, err
	}
	return updated, nil
}
