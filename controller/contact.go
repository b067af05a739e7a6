package controller

import (
	"context"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// ContactControllerModel shows or edits a contact.
type ContactControllerModel struct {
	log     logrus.FieldLogger
	service ContactService
	contact *model.ContactReceiver
	mode    model.ControllerModelMode

	avatarController *AvatarControllerModel
	onRemoved        onRemoved

	subject   string
	FirstName string
	LastName  string
}

// NewContact creates the controller for contact. A missing contact or
// service is logged and yields a controller that is never valid.
func NewContact(opts Options, mode model.ControllerModelMode, contact *model.ContactReceiver) *ContactControllerModel {
	c := &ContactControllerModel{
		log:     opts.logger("ContactControllerModel"),
		service: opts.Service,
		contact: contact,
		mode:    mode,
	}
	if !c.ready() {
		c.log.Error("Missing contact or service")
		return c
	}
	t := opts.translator()

	switch mode {
	case model.ModeView:
		c.subject = contact.DisplayName
	case model.ModeEdit:
		c.subject = editSubject(t, contact.DisplayName)
		c.FirstName = contact.FirstName
		c.LastName = contact.LastName
		c.avatarController = NewAvatarControllerModel(c.log, contact.Avatar)
	default:
		c.log.Errorf("Invalid controller model mode: %s", mode)
	}
	return c
}

func (c *ContactControllerModel) Kind() model.ReceiverType { return model.ReceiverContact }

func (c *ContactControllerModel) Mode() model.ControllerModelMode { return c.mode }

func (c *ContactControllerModel) Subject() string { return c.subject }

// Avatar returns the avatar controller, nil outside of edit mode.
func (c *ContactControllerModel) Avatar() *AvatarControllerModel { return c.avatarController }

func (c *ContactControllerModel) ready() bool {
	return c.contact != nil && c.service != nil
}

// IsValid reports whether the contact is still known.
func (c *ContactControllerModel) IsValid() bool {
	if !c.ready() {
		return false
	}
	_, ok := c.service.Contact(c.contact.ID)
	return ok
}

// CanChat is false for blocked contacts and for the own identity.
func (c *ContactControllerModel) CanChat() bool {
	if !c.ready() || c.contact.IsBlocked {
		return false
	}
	me := c.service.Me()
	return me == nil || me.ID != c.contact.ID
}

func (c *ContactControllerModel) CanEdit() bool {
	return c.ready() && c.contact.Access.CanChangeFirstName
}

func (c *ContactControllerModel) SetOnRemoved(fn func(receiverID string)) {
	if c.contact == nil {
		return
	}
	c.onRemoved.set(c.service, c.contact.ID, fn)
}

// Save submits names and avatar in edit mode.
func (c *ContactControllerModel) Save(ctx context.Context) (model.Receiver, error) {
	if c.mode != model.ModeEdit || c.avatarController == nil {
		c.log.Error("Not allowed to save contact: Invalid mode")
		return nil, nil
	}
	firstName, lastName := c.FirstName, c.LastName
	updated, err := c.service.ModifyContact(ctx, c.contact.ID, &firstName, &lastName, c.avatarController.GetAvatar())
	if err != nil {
		return nil, err
	}
	return updated, nil
}
