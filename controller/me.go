package controller

import (
	"context"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// MeControllerModel shows, and when profile editing is enabled edits, the
// user's own profile. It mirrors the identity owned by the web client.
type MeControllerModel struct {
	log     logrus.FieldLogger
	service ProfileService
	me      *model.ContactReceiver
	mode    model.ControllerModelMode
	canEdit bool

	avatarController *AvatarControllerModel
	onRemoved        onRemoved

	// set up by the constructor, empty when the mode was rejected
	subject  string
	Nickname string
}

// NewMe creates the profile controller. An unsupported mode is logged and
// leaves the controller without subject and nickname. A missing service is
// logged and yields a controller that is never valid.
func NewMe(opts Options, mode model.ControllerModelMode, me *model.ContactReceiver) *MeControllerModel {
	m := &MeControllerModel{
		log:     opts.logger("MeControllerModel"),
		service: opts.Service,
		me:      me,
		mode:    mode,
		canEdit: opts.ProfileEditing,
	}
	if m.service == nil {
		m.log.Error("Missing profile service")
		m.canEdit = false
		return m
	}
	t := opts.translator()

	switch {
	case mode == model.ModeView:
		m.subject = t.Instant("messenger.MY_THREEMA_ID", nil)
		m.Nickname = m.service.Profile().PublicNickname
	case mode == model.ModeEdit && m.canEdit && me != nil:
		profile := m.service.Profile()
		m.subject = editSubject(t, me.DisplayName)
		m.Nickname = profile.PublicNickname
		m.avatarController = NewAvatarControllerModel(m.log, profile.Avatar)
	default:
		m.log.Errorf("Invalid controller model mode: %s", mode)
	}
	return m
}

func (m *MeControllerModel) Kind() model.ReceiverType { return model.ReceiverMe }

func (m *MeControllerModel) Mode() model.ControllerModelMode { return m.mode }

func (m *MeControllerModel) Subject() string { return m.subject }

// Avatar returns the avatar controller, nil outside of edit mode.
func (m *MeControllerModel) Avatar() *AvatarControllerModel { return m.avatarController }

// IsValid reports whether the wrapped identity is still the session's own.
func (m *MeControllerModel) IsValid() bool {
	if m.me == nil || m.service == nil {
		return false
	}
	own := m.service.Me()
	return own != nil && m.me.ID == own.ID
}

// CanChat is always false, there is no chat with oneself.
func (m *MeControllerModel) CanChat() bool { return false }

// CanEdit reports whether profile editing is enabled.
func (m *MeControllerModel) CanEdit() bool { return m.canEdit }

// SetOnRemoved fires fn when the session's own identity is replaced.
func (m *MeControllerModel) SetOnRemoved(fn func(receiverID string)) {
	if m.me == nil {
		return
	}
	m.onRemoved.set(m.service, m.me.ID, fn)
}

// Save submits nickname and avatar in edit mode and returns the updated
// identity.
func (m *MeControllerModel) Save(ctx context.Context) (model.Receiver, error) {
	if m.mode != model.ModeEdit || m.avatarController == nil {
		m.log.Error("Not allowed to save profile: Invalid mode")
		return nil, nil
	}
	nickname := m.Nickname
	updated, err := m.service.ModifyProfile(ctx, &nickname, m.avatarController.GetAvatar())
	if err != nil {
		return nil, err
	}
	return updated, nil
}
