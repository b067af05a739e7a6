package controller

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// AvatarControllerModel holds a pending avatar change.
type AvatarControllerModel struct {
	mu      sync.Mutex
	log     logrus.FieldLogger
	current []byte
	pending []byte
	changed bool
}

// NewAvatarControllerModel starts from the receiver's current avatar.
func NewAvatarControllerModel(log logrus.FieldLogger, current []byte) *AvatarControllerModel {
	return &AvatarControllerModel{log: log, current: current}
}

// SetAvatar stages a new avatar. An empty image removes the avatar.
func (a *AvatarControllerModel) SetAvatar(image []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if image == nil {
		image = []byte{}
	}
	a.pending = image
	a.changed = true
	a.log.Debugf("Avatar staged (%d bytes)", len(image))
}

// GetAvatar returns the staged avatar, nil when nothing changed.
func (a *AvatarControllerModel) GetAvatar() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.changed {
		return nil
	}
	return a.pending
}

// Current returns the image to display.
func (a *AvatarControllerModel) Current() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.changed {
		return a.pending
	}
	return a.current
}
