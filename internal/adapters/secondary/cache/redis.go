package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

const viewTTL = 60 * time.Second // filet de sécurité si une invalidation se perd

// RedisFeedCache matérialise les vues de timeline :
//
//	feed:home:<viewerID>     → home feed sérialisé
//	feed:profile:<username>  → vue profil sérialisée
//
// L'invalidation ciblée remplace le revalidatePath("/") global de l'original.
type RedisFeedCache struct {
	client *redis.Client
}

func NewRedisFeedCache(client *redis.Client) ports.FeedCache {
	return &RedisFeedCache{client: client}
}

// DTO de cache : on ne pollue pas le domaine avec des tags JSON.
type cachedPost struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Username    *string   `json:"username"`
	Name        *string   `json:"name"`
	Image       *string   `json:"image"`
	LikeUserIDs []string  `json:"like_user_ids"`
	ReplyCount  int       `json:"reply_count"`
}

func (c *RedisFeedCache) GetHome(ctx context.Context, viewerID string) ([]*domain.TimelinePost, error) {
	return c.get(ctx, homeKey(viewerID))
}

func (c *RedisFeedCache) SetHome(ctx context.Context, viewerID string, posts []*domain.TimelinePost) error {
	return c.set(ctx, homeKey(viewerID), posts)
}

func (c *RedisFeedCache) GetProfile(ctx context.Context, username string) ([]*domain.TimelinePost, error) {
	return c.get(ctx, profileKey(username))
}

func (c *RedisFeedCache) SetProfile(ctx context.Context, username string, posts []*domain.TimelinePost) error {
	return c.set(ctx, profileKey(username), posts)
}

// DropHome supprime les vues home d'un paquet de viewers en un seul
// aller-retour (pipeline), façon fan-out.
func (c *RedisFeedCache) DropHome(ctx context.Context, viewerIDs []string) error {
	if len(viewerIDs) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, id := range viewerIDs {
		pipe.Del(ctx, homeKey(id))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisFeedCache) DropProfile(ctx context.Context, username string) error {
	return c.client.Del(ctx, profileKey(username)).Err()
}

// --- HELPERS ---

func homeKey(viewerID string) string {
	return fmt.Sprintf("feed:home:%s", viewerID)
}

func profileKey(username string) string {
	return fmt.Sprintf("feed:profile:%s", username)
}

// get renvoie (nil, nil) sur un miss : le caller recalcule.
func (c *RedisFeedCache) get(ctx context.Context, key string) ([]*domain.TimelinePost, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}

	var dtos []cachedPost
	if err := json.Unmarshal(data, &dtos); err != nil {
		// Entrée corrompue : on la jette et on laisse le caller recalculer
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}

	timeline := make([]*domain.TimelinePost, len(dtos))
	for i, d := range dtos {
		timeline[i] = &domain.TimelinePost{
			Post: domain.Post{
				ID:        d.ID,
				AuthorID:  d.AuthorID,
				Content:   d.Content,
				CreatedAt: d.CreatedAt,
			},
			Author: domain.User{
				ID:       d.AuthorID,
				Username: d.Username,
				Name:     d.Name,
				Image:    d.Image,
			},
			LikeUserIDs: d.LikeUserIDs,
			ReplyCount:  d.ReplyCount,
		}
	}
	return timeline, nil
}

func (c *RedisFeedCache) set(ctx context.Context, key string, posts []*domain.TimelinePost) error {
	dtos := make([]cachedPost, len(posts))
	for i, t := range posts {
		dtos[i] = cachedPost{
			ID:          t.Post.ID,
			AuthorID:    t.Post.AuthorID,
			Content:     t.Post.Content,
			CreatedAt:   t.Post.CreatedAt,
			Username:    t.Author.Username,
			Name:        t.Author.Name,
			Image:       t.Author.Image,
			LikeUserIDs: t.LikeUserIDs,
			ReplyCount:  t.ReplyCount,
		}
	}

	data, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	return c.client.Set(ctx, key, data, viewTTL).Err()
}
