// Package controller holds the controller models behind the receiver
// detail pages: one variant per receiver kind sharing a capability set.
package controller

import (
	"context"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// ControllerModel is the capability set shared by all receiver kinds.
type ControllerModel interface {
	Kind() model.ReceiverType
	Mode() model.ControllerModelMode
	Subject() string
	// IsValid re-checks the wrapped receiver against the current session.
	IsValid() bool
	CanChat() bool
	CanEdit() bool
	// Save submits the edited fields. Outside of edit mode it logs an
	// error and returns a nil receiver and a nil error.
	Save(ctx context.Context) (model.Receiver, error)
	// SetOnRemoved registers fn to be called when the wrapped receiver is
	// removed from the session. Passing nil unregisters.
	SetOnRemoved(fn func(receiverID string))
}

// ProfileService is the part of the web client the profile controller
// depends on.
type ProfileService interface {
	Me() *model.ContactReceiver
	Profile() model.Profile
	ModifyProfile(ctx context.Context, nickname *string, avatar []byte) (*model.ContactReceiver, error)
}

// ContactService is the part of the web client the contact controller
// depends on.
type ContactService interface {
	Me() *model.ContactReceiver
	Contact(id string) (*model.ContactReceiver, bool)
	ModifyContact(ctx context.Context, id string, firstName, lastName *string, avatar []byte) (*model.ContactReceiver, error)
}

// GroupService is the part of the web client the group controller
// depends on.
type GroupService interface {
	Me() *model.ContactReceiver
	Group(id string) (*model.GroupReceiver, bool)
	ModifyGroup(ctx context.Context, id string, name *string, members []string, avatar []byte) (*model.GroupReceiver, error)
}

// WebClientService is everything the controllers need.
type WebClientService interface {
	ProfileService
	ContactService
	GroupService
}

// Translator resolves translation keys.
type Translator interface {
	Instant(key string, params map[string]string) string
}

// keyTranslator returns the key itself.
type keyTranslator struct{}

func (keyTranslator) Instant(key string, _ map[string]string) string { return key }

// Options are the collaborators shared by all controller models.
type Options struct {
	Service    WebClientService
	Log        logrus.FieldLogger
	Translator Translator
	// ProfileEditing enables the edit mode of the profile controller.
	ProfileEditing bool
}

func (o Options) logger(component string) logrus.FieldLogger {
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("component", component)
}

func (o Options) translator() Translator {
	if o.Translator == nil {
		return keyTranslator{}
	}
	return o.Translator
}

// New returns the controller model variant for receiver. A receiver of an
// unknown kind is logged and yields nil.
func New(opts Options, mode model.ControllerModelMode, receiver model.Receiver) ControllerModel {
	switch r := receiver.(type) {
	case *model.ContactReceiver:
		if r == nil {
			break
		}
		if r.ReceiverType() == model.ReceiverMe {
			return NewMe(opts, mode, r)
		}
		return NewContact(opts, mode, r)
	case *model.GroupReceiver:
		if r != nil {
			return NewGroup(opts, mode, r)
		}
	}
	opts.logger("ControllerModel").Errorf("Unsupported receiver: %T", receiver)
	return nil
}

// editSubject is the subject of a page editing the named receiver.
func editSubject(t Translator, name string) string {
	return t.Instant("messenger.EDIT_RECEIVER", map[string]string{"receiverName": name})
}
