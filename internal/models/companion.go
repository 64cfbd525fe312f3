package models

import (
	"strings"
	"time"
)

const (
	MinIntimacy = 0
	MaxIntimacy = 100
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderOther:
		return true
	}
	return false
}

// Personality is one of the known personalities or free text.
type Personality string

const (
	PersonalityCheerful   Personality = "cheerful"
	PersonalityCool       Personality = "cool"
	PersonalityGentle     Personality = "gentle"
	PersonalityTsundere   Personality = "tsundere"
	PersonalityMysterious Personality = "mysterious"
)

type SpeechStyle string

const (
	StyleCasual    SpeechStyle = "casual"
	StyleFormal    SpeechStyle = "formal"
	StyleSweet     SpeechStyle = "sweet"
	StyleDialect   SpeechStyle = "dialect"
	StyleCharacter SpeechStyle = "character"
)

type Relationship string

const (
	RelationshipLover      Relationship = "lover"
	RelationshipBestFriend Relationship = "best-friend"
	RelationshipFanIdol    Relationship = "fan-and-idol"
)

func (r Relationship) Valid() bool {
	switch r {
	case RelationshipLover, RelationshipBestFriend, RelationshipFanIdol:
		return true
	}
	return false
}

type World string

const (
	WorldModern  World = "modern"
	WorldIdol    World = "idol"
	WorldFantasy World = "fantasy"
	WorldSchool  World = "school"
	WorldOffice  World = "office"
)

type AvatarKind string

const (
	AvatarColor AvatarKind = "color"
	AvatarImage AvatarKind = "image"
)

// Avatar is either a color token or an image URL, never both.
type Avatar struct {
	Kind  AvatarKind `json:"kind"`
	Value string     `json:"value"`
}

func ColorAvatar(token string) Avatar { return Avatar{Kind: AvatarColor, Value: token} }
func ImageAvatar(url string) Avatar   { return Avatar{Kind: AvatarImage, Value: url} }

// Valid reports whether the avatar kind is known. The zero Avatar is valid.
func (a Avatar) Valid() bool {
	switch a.Kind {
	case "", AvatarColor, AvatarImage:
		return true
	}
	return false
}

// ImageURL returns the avatar URL when the avatar is an image.
func (a Avatar) ImageURL() (string, bool) {
	if a.Kind != AvatarImage || a.Value == "" {
		return "", false
	}
	return a.Value, true
}

// CompanionSpec carries the user-chosen attributes of a new companion.
type CompanionSpec struct {
	Name                  string       `json:"name"`
	Gender                *Gender      `json:"gender,omitempty"`
	Personality           Personality  `json:"personality"`
	SpeechCharacteristics string       `json:"speechCharacteristics"`
	CallName              string       `json:"callName"`
	SpeechStyle           SpeechStyle  `json:"speechStyle"`
	Relationship          Relationship `json:"relationship"`
	World                 World        `json:"world"`
	NGTopics              []string     `json:"ngTopics"`
	Avatar                Avatar       `json:"avatar"`
}

type Companion struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Gender                *Gender      `json:"gender,omitempty"`
	Personality           Personality  `json:"personality"`
	SpeechCharacteristics string       `json:"speechCharacteristics"`
	CallName              string       `json:"callName"`
	SpeechStyle           SpeechStyle  `json:"speechStyle"`
	Relationship          Relationship `json:"relationship"`
	World                 World        `json:"world"`
	// NGTopics is stored for prompt building only; nothing filters on it.
	NGTopics          []string   `json:"ngTopics"`
	Avatar            Avatar     `json:"avatar"`
	Intimacy          int        `json:"intimacy"`
	TotalInteractions int        `json:"totalInteractions"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// NewCompanion builds a companion with zero intimacy from spec.
func NewCompanion(id string, spec CompanionSpec, now time.Time) Companion {
	return Companion{
		ID:                    id,
		Name:                  strings.TrimSpace(spec.Name),
		Gender:                spec.Gender,
		Personality:           spec.Personality,
		SpeechCharacteristics: spec.SpeechCharacteristics,
		CallName:              spec.CallName,
		SpeechStyle:           spec.SpeechStyle,
		Relationship:          spec.Relationship,
		World:                 spec.World,
		NGTopics:              append([]string(nil), spec.NGTopics...),
		Avatar:                spec.Avatar,
		CreatedAt:             now,
	}
}

// IncreaseIntimacy applies delta clamped to [MinIntimacy, MaxIntimacy] and
// counts one interaction. It returns the change actually applied.
func (c *Companion) IncreaseIntimacy(delta int, at time.Time) int {
	before := c.Intimacy
	c.Intimacy = ClampIntimacy(c.Intimacy + delta)
	c.TotalInteractions++
	c.LastInteractionAt = &at
	return c.Intimacy - before
}

func ClampIntimacy(v int) int {
	if v < MinIntimacy {
		return MinIntimacy
	}
	if v > MaxIntimacy {
		return MaxIntimacy
	}
	return v
}
