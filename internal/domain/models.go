package domain

// TavernID is the id of the global public chat group. It is never listed as a guild.
const TavernID = "00000000-0000-4000-A000-000000000000"

// Group types and privacy values as sent by the server.
const (
	GroupTypeGuild = "guild"
	GroupTypeParty = "party"

	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// ChatMessage is a single message of a group chat or of a private inbox thread.
// Timestamps are unix milliseconds.
type ChatMessage struct {
	ID             string `db:"id" json:"id" validate:"required"`
	Text           string `db:"text" json:"text"`
	Timestamp      int64  `db:"timestamp" json:"timestamp"`
	GroupID        string `db:"group_id" json:"group_id,omitempty"`
	UUID           string `db:"uuid" json:"uuid,omitempty"`
	UserID         string `db:"user_id" json:"user_id,omitempty"`
	Username       string `db:"username" json:"username,omitempty"`
	IsInboxMessage bool   `db:"is_inbox_message" json:"is_inbox_message"`
	Sent           bool   `db:"sent" json:"sent"`
	FlagCount      int    `db:"flag_count" json:"flag_count"`

	Likes           []ChatMessageLike `json:"likes,omitempty" validate:"dive"`
	UserStyles      *UserStyles       `json:"user_styles,omitempty"`
	ContributorInfo *ContributorInfo  `json:"contributor,omitempty"`
}

// UserLikesMessage reports whether userID has liked the message.
func (m *ChatMessage) UserLikesMessage(userID string) bool {
	for _, like := range m.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

// ChatMessageLike records that a user liked a message.
type ChatMessageLike struct {
	UserID    string `db:"user_id" json:"user_id" validate:"required"`
	MessageID string `db:"message_id" json:"message_id"`
}

// UserStyles holds the sender's appearance at the time a message was posted.
// It shares its id with the owning chat message.
type UserStyles struct {
	ID            string `db:"id" json:"id"`
	Class         string `db:"class" json:"class,omitempty"`
	CostumeActive bool   `db:"costume_active" json:"costume_active"`
	Background    string `db:"background" json:"background,omitempty"`
}

// ContributorInfo holds the sender's contributor tier. UserID carries the id of
// the owning chat message.
type ContributorInfo struct {
	UserID string `db:"user_id" json:"user_id"`
	Level  int    `db:"level" json:"level"`
	Admin  bool   `db:"admin" json:"admin"`
	Text   string `db:"text" json:"text,omitempty"`
}

// GroupMembership marks a user as member of a group.
type GroupMembership struct {
	UserID  string `db:"user_id" json:"user_id"`
	GroupID string `db:"group_id" json:"group_id" validate:"required"`
}

// CombinedID is the compound identity of the membership.
func (m GroupMembership) CombinedID() string {
	return m.UserID + keySep + m.GroupID
}

// InboxConversation summarises a private message thread between UserID and UUID.
type InboxConversation struct {
	UserID    string `db:"user_id" json:"user_id"`
	UUID      string `db:"uuid" json:"uuid" validate:"required"`
	Username  string `db:"username" json:"username,omitempty"`
	Text      string `db:"text" json:"text,omitempty"`
	Timestamp int64  `db:"timestamp" json:"timestamp"`
}

// CombinedID is the compound identity of the conversation.
func (c InboxConversation) CombinedID() string {
	return c.UserID + keySep + c.UUID
}

// Member is one entry of a group roster.
type Member struct {
	ID          string `db:"id" json:"id" validate:"required"`
	Username    string `db:"username" json:"username,omitempty"`
	DisplayName string `db:"display_name" json:"display_name,omitempty"`
	PartyID     string `db:"party_id" json:"party_id,omitempty"`
	Level       int    `db:"level" json:"level"`
	Class       string `db:"class" json:"class,omitempty"`
}

// Group is a guild, a party or the tavern.
type Group struct {
	ID          string `db:"id" json:"id" validate:"required"`
	Name        string `db:"name" json:"name"`
	Type        string `db:"type" json:"type" validate:"required"`
	Privacy     string `db:"privacy" json:"privacy"`
	MemberCount int    `db:"member_count" json:"member_count"`
	LeaderID    string `db:"leader_id" json:"leader_id,omitempty"`
	Quest       *Quest `json:"quest,omitempty"`
}

// Quest is the quest a party is currently on.
type Quest struct {
	Key    string `db:"quest_key" json:"key"`
	Active bool   `db:"quest_active" json:"active"`
	Leader string `db:"quest_leader" json:"leader,omitempty"`
}

// User is the locally cached profile of a signed-in user.
type User struct {
	ID              string       `db:"id" json:"id" validate:"required"`
	Username        string       `db:"username" json:"username"`
	PartyID         string       `db:"party_id" json:"party_id,omitempty"`
	QuestRSVPNeeded bool         `db:"quest_rsvp_needed" json:"quest_rsvp_needed"`
	Invitations     []Invitation `json:"invitations,omitempty" validate:"dive"`
}

// Invitation is a pending invitation of a user into a group.
type Invitation struct {
	GroupID   string `db:"group_id" json:"group_id" validate:"required"`
	Name      string `db:"name" json:"name,omitempty"`
	InviterID string `db:"inviter_id" json:"inviter_id,omitempty"`
	IsParty   bool   `db:"is_party" json:"is_party"`
}
