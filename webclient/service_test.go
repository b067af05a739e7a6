package webclient

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sardine-ai/go-webclient/controller"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ controller.WebClientService = (*Service)(nil)
	_ controller.RemovalNotifier  = (*Service)(nil)
)

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) *Service {
	t.Helper()
	log, _ := test.NewNullLogger()
	s := NewService(nil, log)
	ctx := context.Background()
	require.NoError(t, s.ApplyProfile(ctx, model.Profile{Identity: "ECHOECHO", PublicNickname: "alice"}))
	require.NoError(t, s.ApplyContact(ctx, &model.ContactReceiver{
		ID:        "BOBBOBBO",
		FirstName: "Bob",
		Access:    model.ContactAccess{CanChangeFirstName: true, CanChangeLastName: true, CanChangeAvatar: true},
	}))
	require.NoError(t, s.ApplyContact(ctx, &model.ContactReceiver{ID: "GATEWAY1", PublicNickname: "bot"}))
	require.NoError(t, s.ApplyGroup(ctx, &model.GroupReceiver{
		ID:            "g1",
		Name:          "Climbers",
		Members:       []string{"ECHOECHO", "BOBBOBBO"},
		Administrator: "ECHOECHO",
		Access:        model.GroupAccess{CanChangeName: true, CanChangeMembers: true, CanChangeAvatar: true},
	}))
	return s
}

func TestMe(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewService(nil, log)
	assert.Nil(t, s.Me(), "no profile yet")

	s = newTestService(t)
	me := s.Me()
	require.NotNil(t, me)
	assert.Equal(t, "ECHOECHO", me.ID)
	assert.Equal(t, model.ReceiverMe, me.ReceiverType())
	assert.Equal(t, "alice", me.DisplayName)
}

func TestModifyProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	me, err := s.ModifyProfile(ctx, strPtr("  Alice W.  "), []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", me.PublicNickname)
	assert.Equal(t, []byte{1, 2}, s.Profile().Avatar)

	// nil keeps, empty removes
	_, err = s.ModifyProfile(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", s.Profile().PublicNickname)
	assert.Equal(t, []byte{1, 2}, s.Profile().Avatar)

	_, err = s.ModifyProfile(ctx, nil, []byte{})
	require.NoError(t, err)
	assert.Empty(t, s.Profile().Avatar)

	_, err = s.ModifyProfile(ctx, strPtr(strings.Repeat("ä", 17)), nil)
	assert.ErrorIs(t, err, ErrNicknameTooLong)
	assert.Equal(t, "Alice W.", s.Profile().PublicNickname)

	_, err = s.ModifyProfile(ctx, strPtr(strings.Repeat("a", MaxNicknameLength)), nil)
	assert.NoError(t, err)
}

func TestModifyProfileWithoutProfile(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewService(nil, log).ModifyProfile(context.Background(), strPtr("x"), nil)
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestModifyContact(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	c, err := s.ModifyContact(ctx, "BOBBOBBO", strPtr("Robert"), strPtr("Builder"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Robert Builder", c.DisplayName)

	_, err = s.ModifyContact(ctx, "NOBODY00", strPtr("x"), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownReceiver)

	_, err = s.ModifyContact(ctx, "GATEWAY1", strPtr("x"), nil, nil)
	assert.ErrorIs(t, err, ErrNotAllowed)

	// unchanged values pass even without access
	_, err = s.ModifyContact(ctx, "GATEWAY1", strPtr(""), strPtr(""), nil)
	assert.NoError(t, err)

	got, ok := s.Contact("GATEWAY1")
	require.True(t, ok)
	assert.Equal(t, "~bot", got.DisplayName)
}

func TestModifyGroup(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	g, err := s.ModifyGroup(ctx, "g1", strPtr("Alpinists"), []string{"ECHOECHO", "BOBBOBBO", "GATEWAY1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alpinists", g.Name)
	assert.Len(t, g.Members, 3)

	_, err = s.ModifyGroup(ctx, "g1", nil, []string{"ECHOECHO", "STRANGER"}, nil)
	assert.ErrorIs(t, err, ErrUnknownMember)

	_, err = s.ModifyGroup(ctx, "g1", strPtr(strings.Repeat("x", MaxGroupNameLength+1)), nil, nil)
	assert.ErrorIs(t, err, ErrGroupNameTooLong)

	_, err = s.ModifyGroup(ctx, "nope", strPtr("x"), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownReceiver)

	require.NoError(t, s.ApplyGroup(ctx, &model.GroupReceiver{ID: "g2", Name: "Old", Disabled: true}))
	_, err = s.ModifyGroup(ctx, "g2", strPtr("New"), nil, nil)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestGettersReturnCopies(t *testing.T) {
	s := newTestService(t)

	g, _ := s.Group("g1")
	g.Members[0] = "MUTATED!"
	again, _ := s.Group("g1")
	assert.Equal(t, "ECHOECHO", again.Members[0])

	c, _ := s.Contact("BOBBOBBO")
	c.FirstName = "Mallory"
	again2, _ := s.Contact("BOBBOBBO")
	assert.Equal(t, "Bob", again2.FirstName)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	require.NoError(t, s.RemoveContact(ctx, "BOBBOBBO"))
	require.NoError(t, s.RemoveGroup(ctx, "g1"))
	require.NoError(t, s.RemoveGroup(ctx, "g1"))
	_, ok := s.Contact("BOBBOBBO")
	assert.False(t, ok)
	assert.Empty(t, s.Groups())
	assert.Len(t, s.Contacts(), 1)
}

func TestApplyValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	assert.ErrorIs(t, s.ApplyProfile(ctx, model.Profile{}), ErrMissingIdentity)
	assert.ErrorIs(t, s.ApplyContact(ctx, nil), ErrMissingReceiverID)
	assert.ErrorIs(t, s.ApplyGroup(ctx, &model.GroupReceiver{}), ErrMissingReceiverID)
}

func TestWriteThroughStore(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(ctx, filepath.Join(t.TempDir(), "webclient.db"))
	require.NoError(t, err)
	defer db.Close()

	log, _ := test.NewNullLogger()
	s := NewService(db, log)
	require.NoError(t, s.ApplyProfile(ctx, model.Profile{Identity: "ECHOECHO"}))
	require.NoError(t, s.ApplyContact(ctx, &model.ContactReceiver{ID: "BOBBOBBO", FirstName: "Bob"}))
	require.NoError(t, s.ApplyGroup(ctx, &model.GroupReceiver{
		ID: "g1", Name: "Climbers", Members: []string{"BOBBOBBO"}, Access: model.GroupAccess{CanChangeName: true},
	}))
	_, err = s.ModifyProfile(ctx, strPtr("alice"), nil)
	require.NoError(t, err)
	_, err = s.ModifyGroup(ctx, "g1", strPtr("Alpinists"), nil, nil)
	require.NoError(t, err)

	reloaded := NewService(db, log)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, "alice", reloaded.Profile().PublicNickname)
	c, ok := reloaded.Contact("BOBBOBBO")
	require.True(t, ok)
	assert.Equal(t, "Bob", c.DisplayName)
	g, ok := reloaded.Group("g1")
	require.True(t, ok)
	assert.Equal(t, "Alpinists", g.Name)
}

func TestControllerAgainstService(t *testing.T) {
	s := newTestService(t)
	log, _ := test.NewNullLogger()

	me := s.Me()
	m := controller.New(controller.Options{Service: s, Log: log, ProfileEditing: true}, model.ModeEdit, me)
	require.NotNil(t, m)
	assert.True(t, m.IsValid())
	assert.False(t, m.CanChat())

	profile, ok := m.(*controller.MeControllerModel)
	require.True(t, ok)
	profile.Nickname = "Alice"
	saved, err := m.Save(context.Background())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Alice", s.Profile().PublicNickname)
}

func TestRemovalNotifiesControllers(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	log, _ := test.NewNullLogger()
	opts := controller.Options{Service: s, Log: log}

	var removed []string
	record := func(id string) { removed = append(removed, id) }

	bob, _ := s.Contact("BOBBOBBO")
	contact := controller.New(opts, model.ModeView, bob)
	require.NotNil(t, contact)
	contact.SetOnRemoved(record)

	group, _ := s.Group("g1")
	groupController := controller.New(opts, model.ModeView, group)
	groupController.SetOnRemoved(record)

	me := controller.New(opts, model.ModeView, s.Me())
	me.SetOnRemoved(record)

	// unknown ids and other receivers do not fire
	require.NoError(t, s.RemoveContact(ctx, "NOBODY00"))
	require.NoError(t, s.RemoveContact(ctx, "GATEWAY1"))
	assert.Empty(t, removed)

	require.NoError(t, s.RemoveContact(ctx, "BOBBOBBO"))
	assert.Equal(t, []string{"BOBBOBBO"}, removed)
	assert.False(t, contact.IsValid())

	groupController.SetOnRemoved(nil)
	require.NoError(t, s.RemoveGroup(ctx, "g1"))
	assert.Equal(t, []string{"BOBBOBBO"}, removed)

	// same identity again is not a removal
	require.NoError(t, s.ApplyProfile(ctx, model.Profile{Identity: "ECHOECHO", PublicNickname: "alice"}))
	assert.Len(t, removed, 1)
	require.NoError(t, s.ApplyProfile(ctx, model.Profile{Identity: "NEWIDENT"}))
	assert.Equal(t, []string{"BOBBOBBO", "ECHOECHO"}, removed)
	assert.False(t, me.IsValid())

	// listeners fire once
	require.NoError(t, s.ApplyContact(ctx, &model.ContactReceiver{ID: "BOBBOBBO"}))
	require.NoError(t, s.RemoveContact(ctx, "BOBBOBBO"))
	assert.Len(t, removed, 2)
}
