package model

// ControllerModelMode is the state of a receiver controller model.
type ControllerModelMode string

const (
	ModeView ControllerModelMode = "view"
	ModeEdit ControllerModelMode = "edit"
)

// Valid reports whether m is one of the known modes.
func (m ControllerModelMode) Valid() bool {
	return m == ModeView || m == ModeEdit
}

// ReceiverType is the kind of an addressable chat participant.
type ReceiverType string

const (
	ReceiverMe      ReceiverType = "me"
	ReceiverContact ReceiverType = "contact"
	ReceiverGroup   ReceiverType = "group"
)

// ContactAccess lists what the user may change on a contact.
type ContactAccess struct {
	CanDelete          bool `json:"canDelete"`
	CanChangeAvatar    bool `json:"canChangeAvatar"`
	CanChangeFirstName bool `json:"canChangeFirstName"`
	CanChangeLastName  bool `json:"canChangeLastName"`
}

// ContactReceiver is a contact known to the phone. The user's own identity
// is represented as a ContactReceiver with Type ReceiverMe.
type ContactReceiver struct {
	ID             string        `json:"id"`
	Type           ReceiverType  `json:"type"`
	DisplayName    string        `json:"displayName"`
	PublicNickname string        `json:"publicNickname,omitempty"`
	FirstName      string        `json:"firstName,omitempty"`
	LastName       string        `json:"lastName,omitempty"`
	Avatar         []byte        `json:"avatar,omitempty"`
	IsBlocked      bool          `json:"isBlocked"`
	Access         ContactAccess `json:"access"`
}

// Clone returns a copy that does not share the avatar buffer.
func (c *ContactReceiver) Clone() *ContactReceiver {
	if c == nil {
		return nil
	}
	out := *c
	out.Avatar = cloneBytes(c.Avatar)
	return &out
}

// GroupAccess lists what the user may change on a group.
type GroupAccess struct {
	CanDelete        bool `json:"canDelete"`
	CanChangeAvatar  bool `json:"canChangeAvatar"`
	CanChangeName    bool `json:"canChangeName"`
	CanChangeMembers bool `json:"canChangeMembers"`
	CanLeave         bool `json:"canLeave"`
	CanSync          bool `json:"canSync"`
}

// GroupReceiver is a group conversation.
type GroupReceiver struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Members       []string    `json:"members"`
	Administrator string      `json:"administrator"`
	Avatar        []byte      `json:"avatar,omitempty"`
	Disabled      bool        `json:"disabled"`
	Access        GroupAccess `json:"access"`
}

// Clone returns a copy that does not share the member list or avatar.
func (g *GroupReceiver) Clone() *GroupReceiver {
	if g == nil {
		return nil
	}
	out := *g
	out.Members = append([]string(nil), g.Members...)
	out.Avatar = cloneBytes(g.Avatar)
	return &out
}

// Profile is the public profile of the user's own identity.
type Profile struct {
	Identity       string `json:"identity"`
	PublicNickname string `json:"publicNickname"`
	PublicKey      []byte `json:"publicKey,omitempty"`
	Avatar         []byte `json:"avatar,omitempty"`
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

// Receiver is any addressable chat participant.
type Receiver interface {
	ReceiverID() string
	ReceiverType() ReceiverType
}

func (c *ContactReceiver) ReceiverID() string { return c.ID }

func (c *ContactReceiver) ReceiverType() ReceiverType {
	if c.Type == "" {
		return ReceiverContact
	}
	return c.Type
}

func (g *GroupReceiver) ReceiverID() string { return g.ID }

func (g *GroupReceiver) ReceiverType() ReceiverType { return ReceiverGroup }
