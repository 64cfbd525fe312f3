package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/samber/lo"
	"google.golang.org/api/iterator"

	"local.dev/oshi-engine/internal/models"
)

// Firestore keeps one user's data under users/{uid}/companions, posts and
// chatRooms.
type Firestore struct {
	client *firestore.Client
	uid    string
	logger *slog.Logger
}

func NewFirestore(client *firestore.Client, uid string, logger *slog.Logger) *Firestore {
	return &Firestore{client: client, uid: uid, logger: logger.With("component", "store.Firestore", "uid", uid)}
}

func (f *Firestore) collection(name string) *firestore.CollectionRef {
	return f.client.Collection("users").Doc(f.uid).Collection(name)
}

func (f *Firestore) companions() *firestore.CollectionRef { return f.collection("companions") }
func (f *Firestore) posts() *firestore.CollectionRef      { return f.collection("posts") }
func (f *Firestore) rooms() *firestore.CollectionRef      { return f.collection("chatRooms") }

// loadAll decodes every document of the query, skipping malformed ones.
func loadAll[R any, M any](ctx context.Context, f *Firestore, q firestore.Query, decode func(R) (M, error)) ([]M, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []M{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var rec R
		if err := doc.DataTo(&rec); err != nil {
			f.logger.Warn("skipping malformed document", "path", doc.Ref.Path, "error", err)
			continue
		}
		m, err := decode(rec)
		if err != nil {
			f.logger.Warn("skipping malformed document", "path", doc.Ref.Path, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ===== companions =====

func (f *Firestore) SaveCompanion(ctx context.Context, c models.Companion) error {
	_, err := f.companions().Doc(c.ID).Set(ctx, CompanionToRecord(c))
	return err
}

func (f *Firestore) LoadCompanions(ctx context.Context) ([]models.Companion, error) {
	return loadAll(ctx, f, f.companions().OrderBy("createdAt", firestore.Asc), CompanionRecord.Companion)
}

// DeleteCompanion removes the companion, its chat room and every post it
// authored in one transaction.
func (f *Firestore) DeleteCompanion(ctx context.Context, id string) error {
	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		authored, err := tx.Documents(f.posts().Where("companionId", "==", id)).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range authored {
			if v, _ := doc.DataAt("isUserPost"); isUser(v) {
				continue
			}
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		if err := tx.Delete(f.rooms().Doc(id)); err != nil {
			return err
		}
		return tx.Delete(f.companions().Doc(id))
	})
}

// ===== posts =====

func (f *Firestore) SavePost(ctx context.Context, p models.Post) error {
	_, err := f.posts().Doc(p.ID).Set(ctx, PostToRecord(p))
	return err
}

func (f *Firestore) LoadPosts(ctx context.Context, limit int) ([]models.Post, error) {
	q := f.posts().OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return loadAll(ctx, f, q, PostRecord.Post)
}

// UpdatePost sends only the changed fields. Added reactions and comments use
// array unions so concurrent landings merge on the server.
func (f *Firestore) UpdatePost(ctx context.Context, postID string, patch models.PostPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	var updates []firestore.Update
	if len(patch.AddReactions) > 0 {
		recs := lo.Map(patch.AddReactions, func(r models.Reaction, _ int) any { return ReactionToRecord(r) })
		updates = append(updates, firestore.Update{Path: "reactions", Value: firestore.ArrayUnion(recs...)})
	}
	if len(patch.AddComments) > 0 {
		recs := lo.Map(patch.AddComments, func(c models.Comment, _ int) any { return CommentToRecord(c) })
		updates = append(updates, firestore.Update{Path: "comments", Value: firestore.ArrayUnion(recs...)})
	}
	if patch.UserLiked != nil {
		updates = append(updates, firestore.Update{Path: "userLiked", Value: *patch.UserLiked})
	}
	if patch.LikeDelta != nil {
		updates = append(updates, firestore.Update{Path: "likeDelta", Value: *patch.LikeDelta})
	}
	_, err := f.posts().Doc(postID).Update(ctx, updates)
	return err
}

// ===== chat rooms =====

func (f *Firestore) SaveChatRoom(ctx context.Context, room models.ChatRoom) error {
	_, err := f.rooms().Doc(room.CompanionID).Set(ctx, ChatRoomToRecord(room))
	return err
}

func (f *Firestore) LoadChatRooms(ctx context.Context) ([]models.ChatRoom, error) {
	return loadAll(ctx, f, f.rooms().Query, ChatRoomRecord.ChatRoom)
}

// modifyRoom reads, changes and writes one room inside a transaction. A
// missing room starts empty.
func (f *Firestore) modifyRoom(ctx context.Context, companionID string, fn func(*models.ChatRoom)) error {
	ref := f.rooms().Doc(companionID)
	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		room := models.NewChatRoom(companionID)
		doc, err := tx.Get(ref)
		switch {
		case err == nil:
			var rec ChatRoomRecord
			if err := doc.DataTo(&rec); err != nil {
				return fmt.Errorf("chat room %s: %w: %w", companionID, ErrMalformedRecord, err)
			}
			if room, err = rec.ChatRoom(); err != nil {
				return err
			}
		case doc != nil && !doc.Exists():
		default:
			return err
		}
		fn(&room)
		return tx.Set(ref, ChatRoomToRecord(room))
	})
}

func (f *Firestore) AppendMessage(ctx context.Context, companionID string, m models.Message) error {
	return f.modifyRoom(ctx, companionID, func(room *models.ChatRoom) {
		if lo.ContainsBy(room.Messages, func(ex models.Message) bool { return ex.ID == m.ID }) {
			return
		}
		room.AddMessage(m)
	})
}

func (f *Firestore) MarkRoomRead(ctx context.Context, companionID string) error {
	return f.modifyRoom(ctx, companionID, func(room *models.ChatRoom) { room.MarkAllRead() })
}

func isUser(v any) bool {
	b, _ := v.(bool)
	return b
}
