// Package webclient holds the receiver state mirrored from the phone and
// applies local modifications to it.
package webclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

const (
	// MaxNicknameLength is the maximum length of a public nickname in bytes.
	MaxNicknameLength = 32
	// MaxGroupNameLength is the maximum length of a group name in bytes.
	MaxGroupNameLength = 256
)

var (
	ErrNoProfile         = errors.New("profile not loaded")
	ErrNicknameTooLong   = fmt.Errorf("nickname exceeds %d bytes", MaxNicknameLength)
	ErrGroupNameTooLong  = fmt.Errorf("group name exceeds %d bytes", MaxGroupNameLength)
	ErrUnknownReceiver   = errors.New("unknown receiver")
	ErrUnknownMember     = errors.New("unknown group member")
	ErrNotAllowed        = errors.New("modification not allowed")
	ErrMissingReceiverID = errors.New("receiver id is required")
	ErrMissingIdentity   = errors.New("profile identity is required")
)

// Store persists the receiver state.
type Store interface {
	LoadProfile(ctx context.Context) (model.Profile, bool, error)
	SaveProfile(ctx context.Context, profile model.Profile) error
	Contacts(ctx context.Context) ([]*model.ContactReceiver, error)
	SaveContact(ctx context.Context, c *model.ContactReceiver) error
	DeleteContact(ctx context.Context, id string) error
	Groups(ctx context.Context) ([]*model.GroupReceiver, error)
	SaveGroup(ctx context.Context, g *model.GroupReceiver) error
	DeleteGroup(ctx context.Context, id string) error
}

// Service is the in-memory receiver state. All getters return copies.
type Service struct {
	sync.RWMutex
	writeMu sync.Mutex // serializes store writes with the in-memory swap

	store Store
	log   logrus.FieldLogger

	profile  model.Profile
	contacts map[string]*model.ContactReceiver
	groups   map[string]*model.GroupReceiver

	listenersMu  sync.Mutex
	nextListener uint64
	listeners    map[uint64]removalListener
}

type removalListener struct {
	receiverID string
	fn         func(receiverID string)
}

// NewService creates an empty service. store may be nil, in which case
// the state only lives in memory.
func NewService(store Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:     store,
		log:       log.WithField("component", "WebClientService"),
		contacts:  map[string]*model.ContactReceiver{},
		groups:    map[string]*model.GroupReceiver{},
		listeners: map[uint64]removalListener{},
	}
}

// OnReceiverRemoved calls fn once receiverID is removed from the session.
// The returned function unregisters fn.
func (s *Service) OnReceiverRemoved(receiverID string, fn func(receiverID string)) (remove func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.nextListener++
	key := s.nextListener
	s.listeners[key] = removalListener{receiverID: receiverID, fn: fn}
	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, key)
		s.listenersMu.Unlock()
	}
}

// notifyRemoved runs the listeners of receiverID outside of all locks.
func (s *Service) notifyRemoved(receiverID string) {
	var fns []func(string)
	s.listenersMu.Lock()
	for key, l := range s.listeners {
		if l.receiverID == receiverID {
			fns = append(fns, l.fn)
			delete(s.listeners, key)
		}
	}
	s.listenersMu.Unlock()

	if len(fns) > 0 {
		s.log.WithField("receiver", receiverID).Debug("Receiver removed")
	}
	for _, fn := range fns {
		fn(receiverID)
	}
}

// Load replaces the in-memory state with the stored one.
func (s *Service) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	profile, _, err := s.store.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	contacts, err := s.store.Contacts(ctx)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	groups, err := s.store.Groups(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	contactMap := make(map[string]*model.ContactReceiver, len(contacts))
	for _, c := range contacts {
		contactMap[c.ID] = c
	}
	groupMap := make(map[string]*model.GroupReceiver, len(groups))
	for _, g := range groups {
		groupMap[g.ID] = g
	}

	s.Lock()
	s.profile = profile
	s.contacts = contactMap
	s.groups = groupMap
	s.Unlock()

	s.log.WithFields(logrus.Fields{
		"contacts": len(contactMap),
		"groups":   len(groupMap),
	}).Info("Loaded receivers from store")
	return nil
}

// Profile returns the user's own profile.
func (s *Service) Profile() model.Profile {
	s.RLock()
	defer s.RUnlock()
	p := s.profile
	p.PublicKey = append([]byte(nil), p.PublicKey...)
	p.Avatar = append([]byte(nil), p.Avatar...)
	return p
}

// Me returns the user's own identity as a receiver, or nil before a
// profile is known.
func (s *Service) Me() *model.ContactReceiver {
	s.RLock()
	defer s.RUnlock()
	return meFromProfile(s.profile)
}

func meFromProfile(p model.Profile) *model.ContactReceiver {
	if p.Identity == "" {
		return nil
	}
	displayName := p.PublicNickname
	if displayName == "" {
		displayName = p.Identity
	}
	var avatar []byte
	if len(p.Avatar) > 0 {
		avatar = append([]byte(nil), p.Avatar...)
	}
	return &model.ContactReceiver{
		ID:             p.Identity,
		Type:           model.ReceiverMe,
		DisplayName:    displayName,
		PublicNickname: p.PublicNickname,
		Avatar:         avatar,
		Access:         model.ContactAccess{CanChangeAvatar: true, CanChangeFirstName: true, CanChangeLastName: true},
	}
}

// Contact returns a copy of the contact with the given identity.
func (s *Service) Contact(id string) (*model.ContactReceiver, bool) {
	s.RLock()
	defer s.RUnlock()
	c, ok := s.contacts[id]
	return c.Clone(), ok
}

// Contacts returns copies of all contacts.
func (s *Service) Contacts() []*model.ContactReceiver {
	s.RLock()
	defer s.RUnlock()
	out := make([]*model.ContactReceiver, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c.Clone())
	}
	return out
}

// Group returns a copy of the group with the given id.
func (s *Service) Group(id string) (*model.GroupReceiver, bool) {
	s.RLock()
	defer s.RUnlock()
	g, ok := s.groups[id]
	return g.Clone(), ok
}

// Groups returns copies of all groups.
func (s *Service) Groups() []*model.GroupReceiver {
	s.RLock()
	defer s.RUnlock()
	out := make([]*model.GroupReceiver, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g.Clone())
	}
	return out
}
