package webclient

import (
	"context"
	"fmt"

	"github.com/sardine-ai/go-webclient/model"
)

// ApplyProfile replaces the profile with the one reported by the phone. A
// changed identity counts as removal of the previous one.
func (s *Service) ApplyProfile(ctx context.Context, profile model.Profile) error {
	if profile.Identity == "" {
		return ErrMissingIdentity
	}
	previous, err := s.applyProfile(ctx, profile)
	if err != nil {
		return err
	}
	if previous != "" && previous != profile.Identity {
		s.notifyRemoved(previous)
	}
	return nil
}

func (s *Service) applyProfile(ctx context.Context, profile model.Profile) (previous string, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	profile.PublicKey = append([]byte(nil), profile.PublicKey...)
	profile.Avatar = append([]byte(nil), profile.Avatar...)
	if err := s.persist(func() error { return s.store.SaveProfile(ctx, profile) }); err != nil {
		return "", fmt.Errorf("save profile: %w", err)
	}

	s.Lock()
	previous = s.profile.Identity
	s.profile = profile
	s.Unlock()
	return previous, nil
}

// ApplyContact adds or replaces a contact reported by the phone.
func (s *Service) ApplyContact(ctx context.Context, c *model.ContactReceiver) error {
	if c == nil || c.ID == "" {
		return ErrMissingReceiverID
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	c = c.Clone()
	if c.Type == "" {
		c.Type = model.ReceiverContact
	}
	if c.DisplayName == "" {
		c.DisplayName = contactDisplayName(c)
	}
	if err := s.persist(func() error { return s.store.SaveContact(ctx, c) }); err != nil {
		return fmt.Errorf("save contact %s: %w", c.ID, err)
	}

	s.Lock()
	s.contacts[c.ID] = c
	s.Unlock()
	return nil
}

// RemoveContact drops a contact and notifies its removal listeners.
// Removing an unknown contact is not an error.
func (s *Service) RemoveContact(ctx context.Context, id string) error {
	removed, err := s.removeContact(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		s.notifyRemoved(id)
	}
	return nil
}

func (s *Service) removeContact(ctx context.Context, id string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist(func() error { return s.store.DeleteContact(ctx, id) }); err != nil {
		return false, fmt.Errorf("delete contact %s: %w", id, err)
	}

	s.Lock()
	_, ok := s.contacts[id]
	delete(s.contacts, id)
	s.Unlock()
	return ok, nil
}

// ApplyGroup adds or replaces a group reported by the phone.
func (s *Service) ApplyGroup(ctx context.Context, g *model.GroupReceiver) error {
	if g == nil || g.ID == "" {
		return ErrMissingReceiverID
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	g = g.Clone()
	if err := s.persist(func() error { return s.store.SaveGroup(ctx, g) }); err != nil {
		return fmt.Errorf("save group %s: %w", g.ID, err)
	}

	s.Lock()
	s.groups[g.ID] = g
	s.Unlock()
	return nil
}

// RemoveGroup drops a group and notifies its removal listeners. Removing
// an unknown group is not an error.
func (s *Service) RemoveGroup(ctx context.Context, id string) error {
	removed, err := s.removeGroup(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		s.notifyRemoved(id)
	}
	return nil
}

func (s *Service) removeGroup(ctx context.Context, id string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist(func() error { return s.store.DeleteGroup(ctx, id) }); err != nil {
		return false, fmt.Errorf("delete group %s: %w", id, err)
	}

	s.Lock()
	_, ok := s.groups[id]
	delete(s.groups, id)
	s.Unlock()
	return ok, nil
}
