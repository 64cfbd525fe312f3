package engine

import (
	"context"
	"slices"
	"strings"

	"local.dev/oshi-engine/internal/generator"
	"local.dev/oshi-engine/internal/models"
	"local.dev/oshi-engine/internal/mood"
)

var emojiByMood = map[mood.Mood][]string{
	mood.Happy:    {"😊", "🎉", "❤️"},
	mood.Tired:    {"🍵", "😴", "🫂"},
	mood.Sad:      {"🫂", "🤍", "🌧️"},
	mood.Excited:  {"🔥", "✨", "🙌"},
	mood.Stressed: {"💪", "🍀", "🫶"},
	mood.Normal:   {"👍", "❤️", "✨"},
}

func (e *Engine) emojiLocked(m mood.Mood) string {
	set, ok := emojiByMood[m]
	if !ok {
		set = emojiByMood[mood.Normal]
	}
	return set[e.rng.Intn(len(set))]
}

// CreateUserPost puts a new user post at the top of the feed. Every
// companion reacts to it after a short delay.
func (e *Engine) CreateUserPost(ctx context.Context, content string, images []string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(images) == 0 {
		return models.Post{}, ErrEmptyPost
	}

	e.mu.Lock()
	p := models.Post{
		ID:         e.newID(),
		AuthorName: e.userName,
		Content:    content,
		Images:     slices.Clone(images),
		CreatedAt:  e.now(),
		IsUserPost: true,
		Reactions:  []models.Reaction{},
		Comments:   []models.Comment{},
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	e.posts = append([]models.Post{p}, e.posts...)
	e.sched.After(e.delay(ReactionDelay), func() { e.reactToPost(p.ID) })
	e.mu.Unlock()

	return clonePost(p), syncErr(e.store.SavePost(ctx, p))
}

// UploadPostImage stores an image for a user post and returns its URL.
func (e *Engine) UploadPostImage(ctx context.Context, image []byte) (string, error) {
	if e.blob == nil {
		return "", ErrNoBlobStore
	}
	return e.blob.Upload(ctx, image, "posts")
}

// reactToPost adds one reaction per companion that has not reacted yet and
// rolls, per companion, whether a comment follows.
func (e *Engine) reactToPost(postID string) {
	e.mu.Lock()
	p := e.postLocked(postID)
	if p == nil {
		e.mu.Unlock()
		return
	}
	m := e.mood.Classify(p.Content)
	var added []models.Reaction
	for _, c := range e.companions {
		r := models.Reaction{
			ID:            e.newID(),
			CompanionID:   c.ID,
			CompanionName: c.Name,
			Emoji:         e.emojiLocked(m),
			CreatedAt:     e.now(),
		}
		if !p.AddReaction(r) {
			continue
		}
		added = append(added, r)
		e.notifyLocked(models.NotificationReaction, c, r.Emoji, p.ID)

		if e.rng.Float64() < CommentProbability {
			companionID := c.ID
			e.sched.After(e.delay(CommentDelay), func() { e.deliverComment(postID, companionID, m) })
		}
	}
	e.mu.Unlock()

	if len(added) == 0 {
		return
	}
	reactionsAdded.Add(float64(len(added)))
	e.logSync("react", e.store.UpdatePost(background(), postID, models.PostPatch{AddReactions: added}), "post", postID)
}

func (e *Engine) deliverComment(postID, companionID string, m mood.Mood) {
	e.mu.Lock()
	c, _ := e.companionLocked(companionID)
	p := e.postLocked(postID)
	if c == nil || p == nil {
		e.mu.Unlock()
		return
	}
	author := cloneCompanion(*c)
	content := p.Content
	e.mu.Unlock()

	text := e.gen.Generate(background(), generator.KindComment, author, generator.Context{PostContent: content, Mood: m})

	e.mu.Lock()
	c, _ = e.companionLocked(companionID)
	p = e.postLocked(postID)
	if c == nil || p == nil {
		e.mu.Unlock()
		return
	}
	comment := models.Comment{
		ID:            e.newID(),
		CompanionID:   c.ID,
		CompanionName: c.Name,
		Text:          text,
		CreatedAt:     e.now(),
	}
	p.AddComment(comment)
	c.IncreaseIntimacy(CommentIncrement, comment.CreatedAt)
	e.notifyLocked(models.NotificationComment, *c, text, postID)
	updated := cloneCompanion(*c)
	e.mu.Unlock()

	commentsAdded.Inc()
	ctx := background()
	e.logSync("comment", e.store.UpdatePost(ctx, postID, models.PostPatch{AddComments: []models.Comment{comment}}), "post", postID)
	e.logSync("save_companion", e.companionWrite(companionID, func() error {
		return e.store.SaveCompanion(ctx, updated)
	}), "companion", companionID)
}

// CreateCompanionPost has the companion write a post about its day.
func (e *Engine) CreateCompanionPost(ctx context.Context, companionID string) (models.Post, error) {
	e.mu.Lock()
	c, _ := e.companionLocked(companionID)
	if c == nil {
		e.mu.Unlock()
		return models.Post{}, ErrCompanionNotFound
	}
	author := cloneCompanion(*c)
	e.mu.Unlock()

	text := e.gen.Generate(ctx, generator.KindAutonomousPost, author, generator.Context{})

	e.mu.Lock()
	c, _ = e.companionLocked(companionID)
	if c == nil {
		e.mu.Unlock()
		return models.Post{}, ErrCompanionNotFound
	}
	p := models.Post{
		ID:          e.newID(),
		CompanionID: c.ID,
		AuthorName:  c.Name,
		Content:     text,
		Images:      []string{},
		CreatedAt:   e.now(),
		Reactions:   []models.Reaction{},
		Comments:    []models.Comment{},
	}
	e.posts = append([]models.Post{p}, e.posts...)
	e.notifyLocked(models.NotificationCompanionPost, *c, text, p.ID)
	e.mu.Unlock()

	e.logger.Debug("companion posted", "companion", companionID, "post", p.ID)
	return clonePost(p), e.companionWrite(companionID, func() error {
		return syncErr(e.store.SavePost(ctx, p))
	})
}

// PostAutonomously picks a random companion and has it post. It reports
// false on an empty roster.
func (e *Engine) PostAutonomously(ctx context.Context) (models.Post, bool, error) {
	e.mu.Lock()
	if len(e.companions) == 0 {
		e.mu.Unlock()
		return models.Post{}, false, nil
	}
	id := e.companions[e.rng.Intn(len(e.companions))].ID
	e.mu.Unlock()

	p, err := e.CreateCompanionPost(ctx, id)
	if err != nil && p.ID == "" {
		return models.Post{}, false, err
	}
	return p, true, err
}

// ToggleUserReactionOnCompanionPost likes or unlikes a companion's post.
// A like raises the author's intimacy; the unlike takes back exactly what
// the like gave.
func (e *Engine) ToggleUserReactionOnCompanionPost(ctx context.Context, postID string) (models.Post, error) {
	e.mu.Lock()
	p := e.postLocked(postID)
	if p == nil {
		e.mu.Unlock()
		return models.Post{}, ErrPostNotFound
	}
	if p.IsUserPost {
		e.mu.Unlock()
		return models.Post{}, ErrNotCompanionPost
	}
	c, _ := e.companionLocked(p.CompanionID)
	if c == nil {
		e.mu.Unlock()
		return models.Post{}, ErrCompanionNotFound
	}
	now := e.now()
	if p.UserLiked {
		c.IncreaseIntimacy(-p.LikeDelta, now)
		p.UserLiked, p.LikeDelta = false, 0
	} else {
		p.LikeDelta = c.IncreaseIntimacy(LikeIncrement, now)
		p.UserLiked = true
	}
	out := clonePost(*p)
	author := cloneCompanion(*c)
	e.mu.Unlock()

	return out, e.companionWrite(author.ID, func() error {
		return syncErr(
			e.store.UpdatePost(ctx, postID, models.PostPatch{UserLiked: &out.UserLiked, LikeDelta: &out.LikeDelta}),
			e.store.SaveCompanion(ctx, author),
		)
	})
}

// ===== feed queries =====

type FeedFilter struct {
	UserOnly      bool
	CompanionOnly bool
	// CompanionID limits the feed to one companion's posts.
	CompanionID string
}

func (f FeedFilter) match(p models.Post) bool {
	switch {
	case f.CompanionID != "":
		return p.AuthoredBy(f.CompanionID)
	case f.UserOnly:
		return p.IsUserPost
	case f.CompanionOnly:
		return !p.IsUserPost
	}
	return true
}

// Feed returns posts newest first.
func (e *Engine) Feed(f FeedFilter) []models.Post {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Post, 0, len(e.posts))
	for _, p := range e.posts {
		if f.match(p) {
			out = append(out, clonePost(p))
		}
	}
	return out
}

func (e *Engine) Post(id string) (models.Post, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.postLocked(id)
	if p == nil {
		return models.Post{}, false
	}
	return clonePost(*p), true
}
