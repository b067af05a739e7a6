package webclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// applyAvatar follows the avatar convention of the controllers: nil keeps
// the current avatar, an empty slice removes it.
func applyAvatar(current, avatar []byte) []byte {
	switch {
	case avatar == nil:
		return current
	case len(avatar) == 0:
		return nil
	default:
		return append([]byte(nil), avatar...)
	}
}

// ModifyProfile updates the public nickname and avatar. A nil nickname
// leaves it unchanged.
func (s *Service) ModifyProfile(ctx context.Context, nickname *string, avatar []byte) (*model.ContactReceiver, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated := s.Profile()
	if updated.Identity == "" {
		return nil, ErrNoProfile
	}
	if nickname != nil {
		trimmed := strings.TrimSpace(*nickname)
		if len(trimmed) > MaxNicknameLength {
			return nil, ErrNicknameTooLong
		}
		updated.PublicNickname = trimmed
	}
	updated.Avatar = applyAvatar(updated.Avatar, avatar)

	if err := s.persist(func() error { return s.store.SaveProfile(ctx, updated) }); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.Lock()
	s.profile = updated
	s.Unlock()

	s.log.WithField("nickname", updated.PublicNickname).Debug("Profile modified")
	return meFromProfile(updated), nil
}

// ModifyContact updates the name and avatar of a contact. Nil names are
// left unchanged.
func (s *Service) ModifyContact(ctx context.Context, id string, firstName, lastName *string, avatar []byte) (*model.ContactReceiver, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, ok := s.Contact(id)
	if !ok {
		return nil, fmt.Errorf("contact %s: %w", id, ErrUnknownReceiver)
	}
	if firstName != nil {
		name := strings.TrimSpace(*firstName)
		if name != updated.FirstName && !updated.Access.CanChangeFirstName {
			return nil, fmt.Errorf("contact %s first name: %w", id, ErrNotAllowed)
		}
		updated.FirstName = name
	}
	if lastName != nil {
		name := strings.TrimSpace(*lastName)
		if name != updated.LastName && !updated.Access.CanChangeLastName {
			return nil, fmt.Errorf("contact %s last name: %w", id, ErrNotAllowed)
		}
		updated.LastName = name
	}
	if avatar != nil && !updated.Access.CanChangeAvatar {
		return nil, fmt.Errorf("contact %s avatar: %w", id, ErrNotAllowed)
	}
	updated.Avatar = applyAvatar(updated.Avatar, avatar)
	updated.DisplayName = contactDisplayName(updated)

	if err := s.persist(func() error { return s.store.SaveContact(ctx, updated) }); err != nil {
		return nil, fmt.Errorf("save contact %s: %w", id, err)
	}

	s.Lock()
	s.contacts[id] = updated
	s.Unlock()

	s.log.WithField("contact", id).Debug("Contact modified")
	return updated.Clone(), nil
}

func contactDisplayName(c *model.ContactReceiver) string {
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	if c.PublicNickname != "" {
		return "~" + c.PublicNickname
	}
	return c.ID
}

// ModifyGroup updates the name, members and avatar of a group. A nil name
// or member list is left unchanged.
func (s *Service) ModifyGroup(ctx context.Context, id string, name *string, members []string, avatar []byte) (*model.GroupReceiver, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, ok := s.Group(id)
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, ErrUnknownReceiver)
	}
	if updated.Disabled {
		return nil, fmt.Errorf("group %s is disabled: %w", id, ErrNotAllowed)
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if len(trimmed) > MaxGroupNameLength {
			return nil, ErrGroupNameTooLong
		}
		if trimmed != updated.Name && !updated.Access.CanChangeName {
			return nil, fmt.Errorf("group %s name: %w", id, ErrNotAllowed)
		}
		updated.Name = trimmed
	}
	if members != nil {
		if !updated.Access.CanChangeMembers && !sameMembers(updated.Members, members) {
			return nil, fmt.Errorf("group %s members: %w", id, ErrNotAllowed)
		}
		if err := s.checkMembers(members); err != nil {
			return nil, err
		}
		updated.Members = append([]string(nil), members...)
	}
	if avatar != nil && !updated.Access.CanChangeAvatar {
		return nil, fmt.Errorf("group %s avatar: %w", id, ErrNotAllowed)
	}
	updated.Avatar = applyAvatar(updated.Avatar, avatar)

	if err := s.persist(func() error { return s.store.SaveGroup(ctx, updated) }); err != nil {
		return nil, fmt.Errorf("save group %s: %w", id, err)
	}

	s.Lock()
	s.groups[id] = updated
	s.Unlock()

	s.log.WithFields(logrus.Fields{"group": id, "members": len(updated.Members)}).Debug("Group modified")
	return updated.Clone(), nil
}

func (s *Service) checkMembers(members []string) error {
	s.RLock()
	defer s.RUnlock()
	for _, member := range members {
		if member == s.profile.Identity {
			continue
		}
		if _, ok := s.contacts[member]; !ok {
			return fmt.Errorf("%s: %w", member, ErrUnknownMember)
		}
	}
	return nil
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, m := range a {
		seen[m]++
	}
	for _, m := range b {
		if seen[m] == 0 {
			return false
		}
		seen[m]--
	}
	return true
}

func (s *Service) persist(write func() error) error {
	if s.store == nil {
		return nil
	}
	return write()
}
