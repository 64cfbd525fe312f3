package store

import (
	"errors"
	"fmt"
	"time"

	"local.dev/oshi-engine/internal/models"
)

// ErrMalformedRecord marks a stored record that cannot be turned back into a
// model. Loaders skip such records and keep going.
var ErrMalformedRecord = errors.New("malformed record")

// Records are the wire shape shared by the file store and Firestore.
// Timestamps are epoch seconds; absent optionals are 0 or "".

type CompanionRecord struct {
	ID                    string   `json:"id" firestore:"id"`
	Name                  string   `json:"name" firestore:"name"`
	Gender                string   `json:"gender" firestore:"gender"`
	Personality           string   `json:"personality" firestore:"personality"`
	SpeechCharacteristics string   `json:"speechCharacteristics" firestore:"speechCharacteristics"`
	CallName              string   `json:"callName" firestore:"callName"`
	SpeechStyle           string   `json:"speechStyle" firestore:"speechStyle"`
	Relationship          string   `json:"relationship" firestore:"relationship"`
	World                 string   `json:"world" firestore:"world"`
	NGTopics              []string `json:"ngTopics" firestore:"ngTopics"`
	AvatarKind            string   `json:"avatarKind" firestore:"avatarKind"`
	AvatarValue           string   `json:"avatarValue" firestore:"avatarValue"`
	Intimacy              int      `json:"intimacy" firestore:"intimacy"`
	TotalInteractions     int      `json:"totalInteractions" firestore:"totalInteractions"`
	LastInteractionAt     int64    `json:"lastInteractionAt" firestore:"lastInteractionAt"`
	CreatedAt             int64    `json:"createdAt" firestore:"createdAt"`
}

type ReactionRecord struct {
	ID            string `json:"id" firestore:"id"`
	CompanionID   string `json:"companionId" firestore:"companionId"`
	CompanionName string `json:"companionName" firestore:"companionName"`
	Emoji         string `json:"emoji" firestore:"emoji"`
	CreatedAt     int64  `json:"createdAt" firestore:"createdAt"`
}

type CommentRecord struct {
	ID            string `json:"id" firestore:"id"`
	CompanionID   string `json:"companionId" firestore:"companionId"`
	CompanionName string `json:"companionName" firestore:"companionName"`
	Text          string `json:"text" firestore:"text"`
	CreatedAt     int64  `json:"createdAt" firestore:"createdAt"`
}

type PostRecord struct {
	ID          string           `json:"id" firestore:"id"`
	CompanionID string           `json:"companionId" firestore:"companionId"`
	AuthorName  string           `json:"authorName" firestore:"authorName"`
	Content     string           `json:"content" firestore:"content"`
	Images      []string         `json:"images" firestore:"images"`
	CreatedAt   int64            `json:"createdAt" firestore:"createdAt"`
	IsUserPost  bool             `json:"isUserPost" firestore:"isUserPost"`
	Reactions   []ReactionRecord `json:"reactions" firestore:"reactions"`
	Comments    []CommentRecord  `json:"comments" firestore:"comments"`
	UserLiked   bool             `json:"userLiked" firestore:"userLiked"`
	LikeDelta   int              `json:"likeDelta" firestore:"likeDelta"`
}

type MessageRecord struct {
	ID          string `json:"id" firestore:"id"`
	Content     string `json:"content" firestore:"content"`
	Sender      string `json:"sender" firestore:"sender"`
	CompanionID string `json:"companionId" firestore:"companionId"`
	CreatedAt   int64  `json:"createdAt" firestore:"createdAt"`
	Read        bool   `json:"read" firestore:"read"`
}

type ChatRoomRecord struct {
	CompanionID   string          `json:"companionId" firestore:"companionId"`
	Messages      []MessageRecord `json:"messages" firestore:"messages"`
	LastMessageAt int64           `json:"lastMessageAt" firestore:"lastMessageAt"`
	UnreadCount   int             `json:"unreadCount" firestore:"unreadCount"`
}

func epoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromEpoch(s int64) time.Time {
	if s == 0 {
		return time.Time{}
	}
	return time.Unix(s, 0).UTC()
}

func CompanionToRecord(c models.Companion) CompanionRecord {
	r := CompanionRecord{
		ID:                    c.ID,
		Name:                  c.Name,
		Personality:           string(c.Personality),
		SpeechCharacteristics: c.SpeechCharacteristics,
		CallName:              c.CallName,
		SpeechStyle:           string(c.SpeechStyle),
		Relationship:          string(c.Relationship),
		World:                 string(c.World),
		NGTopics:              append([]string{}, c.NGTopics...),
		AvatarKind:            string(c.Avatar.Kind),
		AvatarValue:           c.Avatar.Value,
		Intimacy:              c.Intimacy,
		TotalInteractions:     c.TotalInteractions,
		CreatedAt:             epoch(c.CreatedAt),
	}
	if c.Gender != nil {
		r.Gender = string(*c.Gender)
	}
	if c.LastInteractionAt != nil {
		r.LastInteractionAt = epoch(*c.LastInteractionAt)
	}
	return r
}

func (r CompanionRecord) Companion() (models.Companion, error) {
	if r.ID == "" || r.Name == "" {
		return models.Companion{}, fmt.Errorf("%w: companion %q missing id or name", ErrMalformedRecord, r.ID)
	}
	avatar := models.Avatar{Kind: models.AvatarKind(r.AvatarKind), Value: r.AvatarValue}
	switch avatar.Kind {
	case models.AvatarColor, models.AvatarImage:
	case "":
		avatar = models.Avatar{}
	default:
		return models.Companion{}, fmt.Errorf("%w: companion %q avatar kind %q", ErrMalformedRecord, r.ID, r.AvatarKind)
	}
	c := models.Companion{
		ID:                    r.ID,
		Name:                  r.Name,
		Personality:           models.Personality(r.Personality),
		SpeechCharacteristics: r.SpeechCharacteristics,
		CallName:              r.CallName,
		SpeechStyle:           models.SpeechStyle(r.SpeechStyle),
		Relationship:          models.Relationship(r.Relationship),
		World:                 models.World(r.World),
		NGTopics:              append([]string{}, r.NGTopics...),
		Avatar:                avatar,
		Intimacy:              models.ClampIntimacy(r.Intimacy),
		TotalInteractions:     max(r.TotalInteractions, 0),
		CreatedAt:             fromEpoch(r.CreatedAt),
	}
	if r.Gender != "" {
		g := models.Gender(r.Gender)
		c.Gender = &g
	}
	if r.LastInteractionAt != 0 {
		t := fromEpoch(r.LastInteractionAt)
		c.LastInteractionAt = &t
	}
	return c, nil
}

func ReactionToRecord(r models.Reaction) ReactionRecord {
	return ReactionRecord{
		ID:            r.ID,
		CompanionID:   r.CompanionID,
		CompanionName: r.CompanionName,
		Emoji:         r.Emoji,
		CreatedAt:     epoch(r.CreatedAt),
	}
}

func (r ReactionRecord) Reaction() models.Reaction {
	return models.Reaction{
		ID:            r.ID,
		CompanionID:   r.CompanionID,
		CompanionName: r.CompanionName,
		Emoji:         r.Emoji,
		CreatedAt:     fromEpoch(r.CreatedAt),
	}
}

func CommentToRecord(c models.Comment) CommentRecord {
	return CommentRecord{
		ID:            c.ID,
		CompanionID:   c.CompanionID,
		CompanionName: c.CompanionName,
		Text:          c.Text,
		CreatedAt:     epoch(c.CreatedAt),
	}
}

func (r CommentRecord) Comment() models.Comment {
	return models.Comment{
		ID:            r.ID,
		CompanionID:   r.CompanionID,
		CompanionName: r.CompanionName,
		Text:          r.Text,
		CreatedAt:     fromEpoch(r.CreatedAt),
	}
}

func PostToRecord(p models.Post) PostRecord {
	r := PostRecord{
		ID:          p.ID,
		CompanionID: p.CompanionID,
		AuthorName:  p.AuthorName,
		Content:     p.Content,
		Images:      append([]string{}, p.Images...),
		CreatedAt:   epoch(p.CreatedAt),
		IsUserPost:  p.IsUserPost,
		Reactions:   make([]ReactionRecord, 0, len(p.Reactions)),
		Comments:    make([]CommentRecord, 0, len(p.Comments)),
		UserLiked:   p.UserLiked,
		LikeDelta:   p.LikeDelta,
	}
	for _, x := range p.Reactions {
		r.Reactions = append(r.Reactions, ReactionToRecord(x))
	}
	for _, x := range p.Comments {
		r.Comments = append(r.Comments, CommentToRecord(x))
	}
	return r
}

func (r PostRecord) Post() (models.Post, error) {
	if r.ID == "" {
		return models.Post{}, fmt.Errorf("%w: post without id", ErrMalformedRecord)
	}
	if !r.IsUserPost && r.CompanionID == "" {
		return models.Post{}, fmt.Errorf("%w: companion post %q without author", ErrMalformedRecord, r.ID)
	}
	p := models.Post{
		ID:          r.ID,
		CompanionID: r.CompanionID,
		AuthorName:  r.AuthorName,
		Content:     r.Content,
		Images:      append([]string{}, r.Images...),
		CreatedAt:   fromEpoch(r.CreatedAt),
		IsUserPost:  r.IsUserPost,
		Reactions:   []models.Reaction{},
		Comments:    []models.Comment{},
		UserLiked:   r.UserLiked,
		LikeDelta:   r.LikeDelta,
	}
	for _, x := range r.Reactions {
		p.AddReaction(x.Reaction())
	}
	for _, x := range r.Comments {
		p.AddComment(x.Comment())
	}
	return p, nil
}

func MessageToRecord(m models.Message) MessageRecord {
	return MessageRecord{
		ID:          m.ID,
		Content:     m.Content,
		Sender:      string(m.Sender),
		CompanionID: m.CompanionID,
		CreatedAt:   epoch(m.CreatedAt),
		Read:        m.Read,
	}
}

func (r MessageRecord) Message() (models.Message, error) {
	s := models.Sender(r.Sender)
	if r.ID == "" || (s != models.SenderUser && s != models.SenderCompanion) {
		return models.Message{}, fmt.Errorf("%w: message %q sender %q", ErrMalformedRecord, r.ID, r.Sender)
	}
	return models.Message{
		ID:          r.ID,
		Content:     r.Content,
		Sender:      s,
		CompanionID: r.CompanionID,
		CreatedAt:   fromEpoch(r.CreatedAt),
		Read:        r.Read,
	}, nil
}

func ChatRoomToRecord(room models.ChatRoom) ChatRoomRecord {
	r := ChatRoomRecord{
		CompanionID:   room.CompanionID,
		Messages:      make([]MessageRecord, 0, len(room.Messages)),
		LastMessageAt: epoch(room.LastMessageAt),
		UnreadCount:   room.UnreadCount,
	}
	for _, m := range room.Messages {
		r.Messages = append(r.Messages, MessageToRecord(m))
	}
	return r
}

// ChatRoom decodes the room, dropping individual malformed messages. The
// cached fields are recomputed from the messages that survive.
func (r ChatRoomRecord) ChatRoom() (models.ChatRoom, error) {
	if r.CompanionID == "" {
		return models.ChatRoom{}, fmt.Errorf("%w: chat room without companion", ErrMalformedRecord)
	}
	room := models.NewChatRoom(r.CompanionID)
	for _, mr := range r.Messages {
		m, err := mr.Message()
		if err != nil {
			continue
		}
		room.Messages = append(room.Messages, m)
	}
	room.Normalize()
	return room, nil
}
