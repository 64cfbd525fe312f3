package models

import "time"

// Reaction is a companion's emoji on a post. Name is a snapshot taken at
// creation and is not updated when the companion is renamed.
type Reaction struct {
	ID            string    `json:"id"`
	CompanionID   string    `json:"companionId"`
	CompanionName string    `json:"companionName"`
	Emoji         string    `json:"emoji"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Comment struct {
	ID            string    `json:"id"`
	CompanionID   string    `json:"companionId"`
	CompanionName string    `json:"companionName"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Post struct {
	ID string `json:"id"`
	// CompanionID is empty for posts written by the user.
	CompanionID string     `json:"companionId,omitempty"`
	AuthorName  string     `json:"authorName"`
	Content     string     `json:"content"`
	Images      []string   `json:"images"`
	CreatedAt   time.Time  `json:"createdAt"`
	IsUserPost  bool       `json:"isUserPost"`
	Reactions   []Reaction `json:"reactions"`
	Comments    []Comment  `json:"comments"`

	// Like state of the user on a companion post. LikeDelta is the intimacy
	// change applied when the like was added, reversed exactly on unlike.
	UserLiked bool `json:"userLiked"`
	LikeDelta int  `json:"likeDelta"`
}

func (p *Post) HasReactionFrom(companionID string) bool {
	for _, r := range p.Reactions {
		if r.CompanionID == companionID {
			return true
		}
	}
	return false
}

// AddReaction appends r unless its companion already reacted.
func (p *Post) AddReaction(r Reaction) bool {
	if p.HasReactionFrom(r.CompanionID) {
		return false
	}
	p.Reactions = append(p.Reactions, r)
	return true
}

func (p *Post) AddComment(c Comment) {
	for _, ex := range p.Comments {
		if ex.ID == c.ID {
			return
		}
	}
	p.Comments = append(p.Comments, c)
}

func (p Post) AuthoredBy(companionID string) bool {
	return !p.IsUserPost && p.CompanionID == companionID
}

// PostPatch is a partial post update. Applying it merges into the stored
// post instead of overwriting it.
type PostPatch struct {
	AddReactions []Reaction `json:"addReactions,omitempty"`
	AddComments  []Comment  `json:"addComments,omitempty"`
	UserLiked    *bool      `json:"userLiked,omitempty"`
	LikeDelta    *int       `json:"likeDelta,omitempty"`
}

func (pp PostPatch) IsEmpty() bool {
	return len(pp.AddReactions) == 0 && len(pp.AddComments) == 0 && pp.UserLiked == nil && pp.LikeDelta == nil
}

func (p *Post) Apply(patch PostPatch) {
	for _, r := range patch.AddReactions {
		p.AddReaction(r)
	}
	for _, c := range patch.AddComments {
		p.AddComment(c)
	}
	if patch.UserLiked != nil {
		p.UserLiked = *patch.UserLiked
	}
	if patch.LikeDelta != nil {
		p.LikeDelta = *patch.LikeDelta
	}
}
